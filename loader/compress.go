package loader

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// decompress returns data decompressed according to the extension of name.
func decompress(name string, data []byte) ([]byte, error) {
	var r io.Reader
	switch path.Ext(name) {
	case ".gz":
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case ".br":
		r = brotli.NewReader(bytes.NewReader(data))
	default:
		return data, nil
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	return out, nil
}
