// Package remapping composes chains of source maps. Given the map of the last transformation
// of a file and a Loader able to find the maps of its sources, it traces every mapping back to
// the original files and produces a single map going straight from the output to them.
package remapping

import (
	"github.com/liuxd6825/remap/lib/srcmap"
)

// Remap builds the source tree of input, traces it and returns the resulting map.
func Remap(input []srcmap.Input, loader Loader, opts Options, treeOpts ...TreeOption) (*SourceMap, error) {
	tree, err := BuildTree(input, loader, treeOpts...)
	if err != nil {
		return nil, err
	}
	return NewSourceMap(TraceMappings(tree), opts), nil
}
