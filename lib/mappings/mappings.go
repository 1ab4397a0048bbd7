// Package mappings implements the "mappings" field of a version 3 source map: the VLQ base64
// codec and the decoded per-line segment table it represents.
package mappings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Indexes of the fields of a Segment.
const (
	Column = iota
	SourceIndex
	SourceLine
	SourceColumn
	NameIndex
)

// ErrInvalidCharacter is returned when an encoded mappings string contains a character which is
// not part of the base64 alphabet or one of the separators.
var ErrInvalidCharacter = errors.New("invalid character in mappings")

// ErrValueOverflow is returned when a VLQ value doesn't fit in 32 bits.
var ErrValueOverflow = errors.New("mappings value overflow")

// Segment is a single decoded mapping. It has either 1 field (generated column only, a
// "sourceless" segment), 4 fields (plus source index, original line and original column) or 5
// fields (plus name index). All values are 0-based.
type Segment []int

// HasSource reports whether the segment points into a source.
func (s Segment) HasSource() bool {
	return len(s) >= 4
}

// HasName reports whether the segment carries a name index.
func (s Segment) HasName() bool {
	return len(s) >= 5
}

// Line is the list of segments of one generated line, ordered by generated column.
type Line []Segment

// Mappings is the decoded form of the "mappings" field, one Line per generated line.
type Mappings []Line

const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

//nolint:gochecknoglobals
var charToInteger = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(chars); i++ {
		table[chars[i]] = int8(i)
	}
	return table
}()

// Decode decodes a VLQ base64 encoded mappings string. Segments which don't have 1, 4 or 5
// fields are dropped, but the values they carried still count towards the relative offsets of
// the following segments.
func Decode(encoded string) (Mappings, error) {
	var (
		decoded = make(Mappings, 0, strings.Count(encoded, ";")+1)
		line    Line
		segment [5]int
		j       int
		value   int64
		shift   uint
	)
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		switch c {
		case ',':
			line = segmentify(line, segment, j)
			j = 0
		case ';':
			line = segmentify(line, segment, j)
			j = 0
			decoded = append(decoded, line)
			line = nil
			segment[Column] = 0
		default:
			integer := charToInteger[c]
			if integer < 0 {
				return nil, fmt.Errorf("%w %q at offset %d", ErrInvalidCharacter, c, i)
			}
			value += int64(integer&31) << shift
			if integer&32 != 0 {
				shift += 5
				if shift > 30 {
					return nil, fmt.Errorf("%w at offset %d", ErrValueOverflow, i)
				}
				continue
			}
			delta := int(value >> 1)
			if value&1 != 0 {
				delta = -delta
			}
			if j < len(segment) {
				segment[j] += delta
			}
			j++
			value, shift = 0, 0
		}
	}
	if shift != 0 {
		return nil, fmt.Errorf("%w: unterminated value at end of mappings", ErrInvalidCharacter)
	}
	line = segmentify(line, segment, j)
	return append(decoded, line), nil
}

func segmentify(line Line, segment [5]int, fields int) Line {
	switch fields {
	case 1, 4, 5:
		return append(line, append(Segment(nil), segment[:fields]...))
	default:
		return line
	}
}

// Encode encodes decoded mappings into the VLQ base64 string form. Only the first 1, 4 or 5
// fields of each segment are encoded.
func Encode(decoded Mappings) string {
	var (
		sb                                        strings.Builder
		sourceIndex, sourceLine, sourceColumn, ni int
	)
	for i, line := range decoded {
		if i > 0 {
			sb.WriteByte(';')
		}
		genColumn, written := 0, 0
		for _, seg := range line {
			if len(seg) == 0 {
				continue
			}
			if written > 0 {
				sb.WriteByte(',')
			}
			written++
			encodeInteger(&sb, seg[Column]-genColumn)
			genColumn = seg[Column]
			if !seg.HasSource() {
				continue
			}
			encodeInteger(&sb, seg[SourceIndex]-sourceIndex)
			encodeInteger(&sb, seg[SourceLine]-sourceLine)
			encodeInteger(&sb, seg[SourceColumn]-sourceColumn)
			sourceIndex, sourceLine, sourceColumn = seg[SourceIndex], seg[SourceLine], seg[SourceColumn]
			if seg.HasName() {
				encodeInteger(&sb, seg[NameIndex]-ni)
				ni = seg[NameIndex]
			}
		}
	}
	return sb.String()
}

func encodeInteger(sb *strings.Builder, num int) {
	var n uint64
	if num < 0 {
		n = uint64(-num)<<1 | 1
	} else {
		n = uint64(num) << 1
	}
	for {
		clamped := n & 31
		n >>= 5
		if n > 0 {
			clamped |= 32
		}
		sb.WriteByte(chars[clamped])
		if n == 0 {
			return
		}
	}
}

// Sort makes sure every line is ordered by generated column. The sort is stable, so segments
// sharing a column keep their relative order. If owned is false, lines which need sorting are
// copied instead of being sorted in place.
func Sort(m Mappings, owned bool) Mappings {
	copied := owned
	for i, line := range m {
		if isSorted(line) {
			continue
		}
		if !copied {
			m = append(Mappings(nil), m...)
			copied = true
		}
		if !owned {
			line = append(Line(nil), line...)
		}
		sort.SliceStable(line, func(a, b int) bool { return line[a][Column] < line[b][Column] })
		m[i] = line
	}
	return m
}

func isSorted(line Line) bool {
	for j := 1; j < len(line); j++ {
		if line[j][Column] < line[j-1][Column] {
			return false
		}
	}
	return true
}
