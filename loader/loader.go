// Package loader finds the source maps of the sources referenced by a map, so that
// lib/remapping can trace through them.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-sourcemap/sourcemap"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/fsext"
	"github.com/liuxd6825/remap/lib/remapping"
	"github.com/liuxd6825/remap/lib/srcmap"
)

// mapExtensions are tried, in order, next to a source without a sourceMappingURL comment.
var mapExtensions = []string{".map", ".map.gz", ".map.br"} //nolint:gochecknoglobals

// File loads source maps from a file system. For every source it looks for a sourceMappingURL
// comment in the source itself (inline data URLs included) and then for a map file next to
// it. Sources with a scheme other than file are never loaded.
type File struct {
	fs     afero.Fs
	root   string
	logger logrus.FieldLogger

	readContent bool
	validate    bool
}

// FileOption configures a File loader.
type FileOption func(*File)

// WithReadContent makes the loader return the content of original sources that don't have it
// embedded in the map referencing them.
func WithReadContent(enabled bool) FileOption {
	return func(f *File) {
		f.readContent = enabled
	}
}

// WithValidation makes the loader check the maps it finds with an independent parser before
// using them. Maps failing the check are ignored.
func WithValidation(enabled bool) FileOption {
	return func(f *File) {
		f.validate = enabled
	}
}

// NewFile returns a File loader reading from fs. Relative sources are resolved against root.
func NewFile(fs afero.Fs, root string, logger logrus.FieldLogger, opts ...FileOption) *File {
	f := &File{fs: fs, root: root, logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load implements remapping.Loader.
func (f *File) Load(source string, ctx remapping.LoaderContext) (*remapping.LoadResult, error) {
	logger := f.logger.WithFields(logrus.Fields{"source": source, "depth": ctx.Depth})
	filename, ok := f.filename(source)
	if !ok {
		logger.Debug("Not a local file, skipping")
		return nil, nil //nolint:nilnil
	}

	code, err := afero.ReadFile(f.fs, filename)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	exists := err == nil

	data, mapName, err := f.findMap(filename, code)
	if err != nil {
		// a broken reference shouldn't make the whole remapping fail
		logger.WithError(err).Warnf("Couldn't load source map for %s", source)
	}
	if data != nil {
		d, err := f.check(mapName, data)
		if err == nil {
			logger.WithField("map", mapName).Debug("Loaded source map")
			return &remapping.LoadResult{Map: d}, nil
		}
		logger.WithError(err).Warnf("Couldn't load source map for %s", source)
	}

	if f.readContent && exists && !ctx.Content.Valid {
		logger.Debug("Read original source content")
		return &remapping.LoadResult{Content: null.StringFrom(string(code))}, nil
	}
	return nil, nil //nolint:nilnil
}

// filename returns the path of source on the file system, if it's a local file.
func (f *File) filename(source string) (string, bool) {
	if source == "" {
		return "", false
	}
	if u, err := url.Parse(source); err == nil && len(u.Scheme) > 1 {
		if u.Scheme != "file" {
			return "", false
		}
		source = u.Path
	}
	return fsext.Abs(f.root, filepath.FromSlash(source)), true
}

// findMap returns the map of the file with the given name and code, and where it was found.
// A nil map without an error means the file doesn't have one.
func (f *File) findMap(filename string, code []byte) ([]byte, string, error) {
	if mapURL, ok := findSourceMappingURL(code); ok {
		if strings.HasPrefix(mapURL, "data:") {
			data, err := decodeDataURL(mapURL)
			return data, filename + " (inline)", err
		}
		u, err := url.Parse(mapURL)
		if err != nil {
			return nil, mapURL, fmt.Errorf("invalid sourceMappingURL %q: %w", mapURL, err)
		}
		if u.Scheme != "" && u.Scheme != "file" {
			return nil, mapURL, fmt.Errorf("unsupported sourceMappingURL %q", mapURL)
		}
		mapPath := filepath.FromSlash(u.Path)
		if !path.IsAbs(u.Path) {
			mapPath = filepath.Join(filepath.Dir(filename), mapPath)
		}
		data, err := f.readMap(mapPath)
		return data, mapPath, err
	}

	for _, ext := range mapExtensions {
		data, err := f.readMap(filename + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return data, filename + ext, err
	}
	return nil, "", nil
}

func (f *File) readMap(name string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, name)
	if err != nil {
		return nil, err
	}
	return decompress(name, data)
}

// check parses the map, and if validation is on, also makes sure an independent consumer agrees
// it's a valid map.
func (f *File) check(name string, data []byte) (*srcmap.Decoded, error) {
	d, err := srcmap.Parse(data)
	if err != nil {
		return nil, err
	}
	// the other parser only understands encoded mappings
	if f.validate && gjson.GetBytes(data, "mappings").Type == gjson.String {
		if _, err := sourcemap.Parse(name, data); err != nil {
			return nil, err
		}
	}
	return d, nil
}
