// Package fsext provides extended file system functions
package fsext

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Fs represents a file system
type Fs = afero.Fs

// FilePathSeparator is the FilePathSeparator to be used within a file system
const FilePathSeparator = afero.FilePathSeparator

// Abs returns an absolute representation of path. A relative path is joined with root, which
// is assumed to be a directory.
//
// Paths always start with a separator, even on windows where `\users\noname\...` is treated as
// absolute on the current drive.
func Abs(root, path string) string {
	if path == "" {
		path = "."
	}
	if path[0] != '/' && path[0] != '\\' && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	if path[0:1] != FilePathSeparator {
		path = FilePathSeparator + path
	}

	return path
}

// CacheOnReadFs is wrapper around afero.CacheOnReadFs with the ability to return the filesystem
// that is used as cache
type CacheOnReadFs struct {
	afero.Fs
	cache afero.Fs
}

// NewCacheOnReadFs returns a new CacheOnReadFs
func NewCacheOnReadFs(base, layer afero.Fs, cacheTime time.Duration) afero.Fs {
	return CacheOnReadFs{
		Fs:    afero.NewCacheOnReadFs(base, layer, cacheTime),
		cache: layer,
	}
}

// GetCachingFs returns the afero.Fs being used for cache
func (c CacheOnReadFs) GetCachingFs() afero.Fs {
	return c.cache
}
