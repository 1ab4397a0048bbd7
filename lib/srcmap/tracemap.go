package srcmap

import (
	"errors"

	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
)

// Bias decides which segment a lookup picks when there is no exact match for a column.
type Bias int

const (
	// GreatestLowerBound picks the closest segment to the left of the needle.
	GreatestLowerBound Bias = 1
	// LeastUpperBound picks the closest segment to the right of the needle.
	LeastUpperBound Bias = -1
)

var (
	// ErrInvalidLine is returned for needles with a line below 1.
	ErrInvalidLine = errors.New("line must be greater than 0 (lines start at line 1)")
	// ErrInvalidColumn is returned for needles with a negative column.
	ErrInvalidColumn = errors.New("column must be greater than or equal to 0 (columns start at column 0)")
)

// Needle is a position in the generated file. Line is 1-based, Column 0-based.
type Needle struct {
	Line   int
	Column int
	Bias   Bias
}

// SourceNeedle is a position in one of the original sources. Line is 1-based, Column 0-based.
type SourceNeedle struct {
	Source string
	Line   int
	Column int
	Bias   Bias
}

// OriginalMapping is the result of OriginalPositionFor. All fields are invalid when nothing
// was found.
type OriginalMapping struct {
	Source null.String `json:"source"`
	Line   null.Int    `json:"line"`
	Column null.Int    `json:"column"`
	Name   null.String `json:"name"`
}

// GeneratedMapping is a position in the generated file. Line is 1-based.
type GeneratedMapping struct {
	Line   null.Int `json:"line"`
	Column null.Int `json:"column"`
}

// Mapping is what EachMapping reports for every segment. Lines are 1-based.
type Mapping struct {
	GeneratedLine   int
	GeneratedColumn int
	Source          null.String
	OriginalLine    null.Int
	OriginalColumn  null.Int
	Name            null.String
}

// TraceMap answers position queries against a decoded map. It remembers the last lookup so
// that the usual access pattern (increasing columns on the same line) doesn't pay for a full
// binary search every time, which also means a TraceMap must not be used concurrently.
type TraceMap struct {
	*Decoded
	// ResolvedSources are the sources resolved against SourceRoot and the map URL.
	ResolvedSources []string

	memo          memo
	bySources     []map[int]mappings.Line
	bySourceMemos []memo
}

// NewTraceMap returns a TraceMap for d. mapURL is the location of the map itself and is only
// used to resolve the sources; it can be empty.
func NewTraceMap(d *Decoded, mapURL string) *TraceMap {
	from := Resolve(d.SourceRoot, StripFilename(mapURL))
	resolved := make([]string, len(d.Sources))
	for i, s := range d.Sources {
		resolved[i] = Resolve(s, from)
	}
	return &TraceMap{Decoded: d, ResolvedSources: resolved, memo: newMemo()}
}

// TraceSegment returns the segment covering the 0-based generated line and column, that is
// the last segment on that line starting at or before column.
func (tm *TraceMap) TraceSegment(line, column int) (mappings.Segment, bool) {
	if line < 0 || line >= len(tm.Mappings) {
		return nil, false
	}
	segments := tm.Mappings[line]
	index := traceSegmentInternal(segments, &tm.memo, line, column, GreatestLowerBound)
	if index == -1 {
		return nil, false
	}
	return segments[index], true
}

// OriginalPositionFor finds the original position of a generated position.
func (tm *TraceMap) OriginalPositionFor(needle Needle) (OriginalMapping, error) {
	line := needle.Line - 1
	if line < 0 {
		return OriginalMapping{}, ErrInvalidLine
	}
	if needle.Column < 0 {
		return OriginalMapping{}, ErrInvalidColumn
	}
	if line >= len(tm.Mappings) {
		return OriginalMapping{}, nil
	}
	segments := tm.Mappings[line]
	index := traceSegmentInternal(segments, &tm.memo, line, needle.Column, biasOrDefault(needle.Bias))
	if index == -1 {
		return OriginalMapping{}, nil
	}
	seg := segments[index]
	if !seg.HasSource() {
		return OriginalMapping{}, nil
	}
	result := OriginalMapping{
		Source: null.StringFrom(tm.ResolvedSources[seg[mappings.SourceIndex]]),
		Line:   null.IntFrom(int64(seg[mappings.SourceLine] + 1)),
		Column: null.IntFrom(int64(seg[mappings.SourceColumn])),
	}
	if seg.HasName() {
		result.Name = null.StringFrom(tm.Names[seg[mappings.NameIndex]])
	}
	return result, nil
}

// GeneratedPositionFor finds the generated position of an original position.
func (tm *TraceMap) GeneratedPositionFor(needle SourceNeedle) (GeneratedMapping, error) {
	bias := biasOrDefault(needle.Bias)
	segments, memo, line, err := tm.reverseLookup(needle)
	if err != nil || segments == nil {
		return GeneratedMapping{}, err
	}
	index := traceSegmentInternal(segments, memo, line, needle.Column, bias)
	if index == -1 {
		return GeneratedMapping{}, nil
	}
	return generatedMapping(segments[index]), nil
}

// AllGeneratedPositionsFor finds every generated position of an original position. Without an
// exact match the closest column in the direction of the bias is used, which defaults to
// LeastUpperBound here.
func (tm *TraceMap) AllGeneratedPositionsFor(needle SourceNeedle) ([]GeneratedMapping, error) {
	bias := needle.Bias
	if bias == 0 {
		bias = LeastUpperBound
	}
	segments, memo, line, err := tm.reverseLookup(needle)
	if err != nil || segments == nil {
		return nil, err
	}

	index, found := memoizedBinarySearch(segments, needle.Column, memo, line)
	if found {
		index = lowerBound(segments, needle.Column, index)
	} else if bias == LeastUpperBound {
		index++
	}
	if index == -1 || index == len(segments) {
		return nil, nil
	}
	matched := segments[index][0]
	if !found {
		index = lowerBound(segments, matched, index)
	}
	last := upperBound(segments, matched, index)

	result := make([]GeneratedMapping, 0, last-index+1)
	for ; index <= last; index++ {
		result = append(result, generatedMapping(segments[index]))
	}
	return result, nil
}

// EachMapping calls fn for every segment, in generated order.
func (tm *TraceMap) EachMapping(fn func(Mapping)) {
	for i, line := range tm.Mappings {
		for _, seg := range line {
			m := Mapping{GeneratedLine: i + 1, GeneratedColumn: seg[mappings.Column]}
			if seg.HasSource() {
				m.Source = null.StringFrom(tm.ResolvedSources[seg[mappings.SourceIndex]])
				m.OriginalLine = null.IntFrom(int64(seg[mappings.SourceLine] + 1))
				m.OriginalColumn = null.IntFrom(int64(seg[mappings.SourceColumn]))
			}
			if seg.HasName() {
				m.Name = null.StringFrom(tm.Names[seg[mappings.NameIndex]])
			}
			fn(m)
		}
	}
}

// SourceContentFor returns the embedded content of source, which can be given either as it
// appears in the map or resolved.
func (tm *TraceMap) SourceContentFor(source string) null.String {
	index := tm.sourceIndex(source)
	if index == -1 {
		return null.String{}
	}
	return tm.SourcesContent[index]
}

// IsSourceIgnored reports whether source is in the ignore list.
func (tm *TraceMap) IsSourceIgnored(source string) bool {
	index := tm.sourceIndex(source)
	return index != -1 && tm.IsIgnored(index)
}

func (tm *TraceMap) sourceIndex(source string) int {
	for i, s := range tm.Sources {
		if s == source {
			return i
		}
	}
	for i, s := range tm.ResolvedSources {
		if s == source {
			return i
		}
	}
	return -1
}

func (tm *TraceMap) reverseLookup(needle SourceNeedle) (mappings.Line, *memo, int, error) {
	line := needle.Line - 1
	if line < 0 {
		return nil, nil, 0, ErrInvalidLine
	}
	if needle.Column < 0 {
		return nil, nil, 0, ErrInvalidColumn
	}
	index := tm.sourceIndex(needle.Source)
	if index == -1 {
		return nil, nil, 0, nil
	}
	if tm.bySources == nil {
		tm.buildBySources()
	}
	return tm.bySources[index][line], &tm.bySourceMemos[index], line, nil
}

// buildBySources builds the reverse index: for every source and original line, the segments
// [originalColumn, generatedLine, generatedColumn] sorted by original column.
func (tm *TraceMap) buildBySources() {
	tm.bySources = make([]map[int]mappings.Line, len(tm.Sources))
	tm.bySourceMemos = make([]memo, len(tm.Sources))
	for i := range tm.bySources {
		tm.bySources[i] = make(map[int]mappings.Line)
		tm.bySourceMemos[i] = newMemo()
	}
	for i, line := range tm.Mappings {
		for _, seg := range line {
			if !seg.HasSource() {
				continue
			}
			sourceIndex, sourceLine, sourceColumn := seg[mappings.SourceIndex], seg[mappings.SourceLine], seg[mappings.SourceColumn]
			original := tm.bySources[sourceIndex][sourceLine]
			m := &tm.bySourceMemos[sourceIndex]
			index, _ := memoizedBinarySearch(original, sourceColumn, m, sourceLine)
			index = upperBound(original, sourceColumn, index) + 1
			m.lastIndex = index
			tm.bySources[sourceIndex][sourceLine] = insert(original, index, mappings.Segment{sourceColumn, i, seg[mappings.Column]})
		}
	}
	// the memos were only needed while building
	for i := range tm.bySourceMemos {
		tm.bySourceMemos[i] = newMemo()
	}
}

func generatedMapping(seg mappings.Segment) GeneratedMapping {
	return GeneratedMapping{Line: null.IntFrom(int64(seg[1] + 1)), Column: null.IntFrom(int64(seg[2]))}
}

func biasOrDefault(b Bias) Bias {
	if b == 0 {
		return GreatestLowerBound
	}
	return b
}

func insert(line mappings.Line, index int, seg mappings.Segment) mappings.Line {
	line = append(line, nil)
	copy(line[index+1:], line[index:])
	line[index] = seg
	return line
}
