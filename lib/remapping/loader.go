package remapping

import (
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/srcmap"
)

// LoaderContext describes the source being loaded. Source, Content and Ignore hold the values
// that will be used unless the loader overrides them.
type LoaderContext struct {
	// Importer is the path of the map that references the source, empty for the root map.
	Importer string
	// Depth is 1 for the sources of the root map and grows by one for every loaded map.
	Depth   int
	Source  string
	Content null.String
	Ignore  bool
}

// LoadResult is what a Loader found for a source. Valid fields override the defaults from the
// LoaderContext whether or not a Map is returned.
type LoadResult struct {
	// Map is the source map of the source, nil if the source is an original file.
	Map     srcmap.Input
	Source  null.String
	Content null.String
	Ignore  null.Bool
}

// Loader finds the source map of a source, if it has one. Returning a nil result (or one
// without a Map) makes the source a leaf of the tree.
type Loader interface {
	Load(source string, ctx LoaderContext) (*LoadResult, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(source string, ctx LoaderContext) (*LoadResult, error)

// Load implements Loader.
func (f LoaderFunc) Load(source string, ctx LoaderContext) (*LoadResult, error) {
	return f(source, ctx)
}

// NoopLoader treats every source as an original file.
var NoopLoader Loader = LoaderFunc(func(string, LoaderContext) (*LoadResult, error) { //nolint:gochecknoglobals
	return nil, nil //nolint:nilnil
})
