package remapping

import (
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
)

// TraceMappings traces every segment of the root map down to its original source and returns
// the result. Segments without a source, or that can't be traced all the way, are dropped.
func TraceMappings(tree *MapSource) *Builder {
	root := tree.Map
	b := NewBuilder(root.File)
	b.grow(len(root.Mappings))

	for i, line := range root.Mappings {
		for _, seg := range line {
			if !seg.HasSource() {
				continue
			}
			var name string
			if seg.HasName() {
				name = root.Names[seg[mappings.NameIndex]]
			}
			child := tree.Children[seg[mappings.SourceIndex]]
			traced, st := child.originalPositionFor(seg[mappings.SourceLine], seg[mappings.SourceColumn], name)
			if st != found {
				continue
			}

			source := traced.source
			b.AddSegment(i, seg[mappings.Column], null.StringFrom(source.Path),
				traced.line, traced.column, null.StringFrom(traced.name))
			if source.Content.Valid {
				b.SetSourceContent(source.Path, source.Content)
			}
			if source.Ignore {
				b.SetIgnore(source.Path, true)
			}
		}
	}
	return b
}
