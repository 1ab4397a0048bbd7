package loader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/liuxd6825/remap/lib/fsext"
)

// Input is a map given on the command line.
type Input struct {
	// Name is the path of the map, "-" for the standard input.
	Name string
	Data []byte
}

// ReadInput reads the map src, relative to pwd. "-" reads the standard input. Compressed maps
// are decompressed based on their extension.
func ReadInput(fs afero.Fs, pwd, src string, stdin io.Reader) (*Input, error) {
	if src == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading the standard input: %w", err)
		}
		return &Input{Name: src, Data: data}, nil
	}

	name := fsext.Abs(pwd, filepath.FromSlash(src))
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, err
	}
	data, err = decompress(name, data)
	if err != nil {
		return nil, err
	}
	return &Input{Name: name, Data: data}, nil
}
