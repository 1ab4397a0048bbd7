package loader

import (
	"github.com/spf13/afero"

	"github.com/liuxd6825/remap/lib/fsext"
)

// CreateFilesystem returns a read only view of osfs that keeps in memory every file read from
// it, so maps shared by several inputs are only read from disk once.
func CreateFilesystem(osfs afero.Fs) afero.Fs {
	return fsext.NewCacheOnReadFs(afero.NewReadOnlyFs(osfs), afero.NewMemMapFs(), 0)
}
