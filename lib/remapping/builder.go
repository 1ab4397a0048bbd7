package remapping

import (
	"sort"

	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
)

// setArray is an insertion ordered set of strings.
type setArray struct {
	indexes map[string]int
	array   []string
}

func (s *setArray) put(key string) int {
	if index, ok := s.indexes[key]; ok {
		return index
	}
	if s.indexes == nil {
		s.indexes = make(map[string]int)
	}
	index := len(s.array)
	s.indexes[key] = index
	s.array = append(s.array, key)
	return index
}

// Builder accumulates the segments of a new source map. Sources and names are deduplicated, so
// the same string always gets the same index.
type Builder struct {
	file     null.String
	sources  setArray
	names    setArray
	content  map[int]null.String
	ignored  map[int]struct{}
	mappings mappings.Mappings
}

// NewBuilder returns an empty Builder for a map of the given generated file.
func NewBuilder(file null.String) *Builder {
	return &Builder{
		file:    file,
		content: make(map[int]null.String),
		ignored: make(map[int]struct{}),
	}
}

// AddSegment adds a segment at the 0-based generated line and column. An invalid source adds a
// generated only segment, the other arguments are then ignored. Empty names are not recorded.
func (b *Builder) AddSegment(genLine, genColumn int, source null.String, line, column int, name null.String) {
	var seg mappings.Segment
	switch {
	case !source.Valid:
		seg = mappings.Segment{genColumn}
	case name.Valid && name.String != "":
		seg = mappings.Segment{genColumn, b.sources.put(source.String), line, column, b.names.put(name.String)}
	default:
		seg = mappings.Segment{genColumn, b.sources.put(source.String), line, column}
	}

	b.grow(genLine + 1)
	segments := b.mappings[genLine]
	index := sort.Search(len(segments), func(i int) bool { return segments[i][mappings.Column] > genColumn })
	segments = append(segments, nil)
	copy(segments[index+1:], segments[index:])
	segments[index] = seg
	b.mappings[genLine] = segments
}

// SetSourceContent records the content of source. Later calls for the same source win.
func (b *Builder) SetSourceContent(source string, content null.String) {
	b.content[b.sources.put(source)] = content
}

// SetIgnore adds source to the ignore list when ignore is true. Once ignored, a source stays
// ignored: false only registers the source.
func (b *Builder) SetIgnore(source string, ignore bool) {
	index := b.sources.put(source)
	if ignore {
		b.ignored[index] = struct{}{}
	}
}

// File returns the generated file the map is for.
func (b *Builder) File() null.String {
	return b.file
}

// Sources returns the sources in the order they were first seen.
func (b *Builder) Sources() []string {
	return append([]string{}, b.sources.array...)
}

// Names returns the names in the order they were first seen.
func (b *Builder) Names() []string {
	return append([]string{}, b.names.array...)
}

// SourcesContent returns the content of every source, aligned with Sources.
func (b *Builder) SourcesContent() []null.String {
	content := make([]null.String, len(b.sources.array))
	for i, c := range b.content {
		content[i] = c
	}
	return content
}

// IgnoreList returns the sorted indexes of the ignored sources.
func (b *Builder) IgnoreList() []int {
	list := make([]int, 0, len(b.ignored))
	for i := range b.ignored {
		list = append(list, i)
	}
	sort.Ints(list)
	return list
}

// Mappings returns the accumulated segments. The result is shared with the Builder.
func (b *Builder) Mappings() mappings.Mappings {
	return b.mappings
}

func (b *Builder) grow(lines int) {
	for len(b.mappings) < lines {
		b.mappings = append(b.mappings, nil)
	}
}
