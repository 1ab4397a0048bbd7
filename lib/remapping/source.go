package remapping

import (
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
	"github.com/liuxd6825/remap/lib/srcmap"
)

// Source is a node of the tree traced by TraceMappings: either an *OriginalSource or a
// *MapSource.
type Source interface {
	originalPositionFor(line, column int, name string) (position, status)
}

// OriginalSource is a leaf of the tree, a file that wasn't produced by any known transformation.
type OriginalSource struct {
	Path    string
	Content null.String
	Ignore  bool
}

// MapSource is a transformation step. Children[i] is the source for Map.Sources[i].
type MapSource struct {
	Map      *srcmap.TraceMap
	Children []Source
}

type status int

const (
	found status = iota
	notFound
	sourceless
)

type position struct {
	source *OriginalSource
	line   int
	column int
	name   string
}

func (s *OriginalSource) originalPositionFor(line, column int, name string) (position, status) {
	return position{source: s, line: line, column: column, name: name}, found
}

func (s *MapSource) originalPositionFor(line, column int, name string) (position, status) {
	seg, ok := s.Map.TraceSegment(line, column)
	if !ok {
		return position{}, notFound
	}
	if !seg.HasSource() {
		return position{}, sourceless
	}
	if seg.HasName() {
		name = s.Map.Names[seg[mappings.NameIndex]]
	}
	return s.Children[seg[mappings.SourceIndex]].originalPositionFor(
		seg[mappings.SourceLine], seg[mappings.SourceColumn], name)
}
