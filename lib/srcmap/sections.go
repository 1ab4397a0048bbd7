package srcmap

import (
	"fmt"
	"math"

	"github.com/liuxd6825/remap/lib/mappings"
)

// flatten joins the sections of an index map into a single decoded map. Every section is cut
// off at the offset of the next one.
func flatten(sm *SourceMap) (*Decoded, error) {
	out := &Decoded{Version: Version, File: sm.File}
	if err := addSections(out, sm.Sections, 0, 0, math.MaxInt, math.MaxInt); err != nil {
		return nil, err
	}
	out.Mappings = mappings.Sort(out.Mappings, true)
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func addSections(out *Decoded, sections []Section, lineOffset, columnOffset, stopLine, stopColumn int) error {
	for i, section := range sections {
		sl, sc := stopLine, stopColumn
		if i+1 < len(sections) {
			next := sections[i+1].Offset
			sl = min(stopLine, lineOffset+next.Line)
			if sl == stopLine {
				sc = min(stopColumn, columnOffset+next.Column)
			} else if sl < stopLine {
				sc = columnOffset + next.Column
			}
		}
		err := addSection(out, section, lineOffset+section.Offset.Line, columnOffset+section.Offset.Column, sl, sc)
		if err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}
	return nil
}

func addSection(out *Decoded, section Section, lineOffset, columnOffset, stopLine, stopColumn int) error {
	if section.Map == nil {
		if section.URL != "" {
			return fmt.Errorf("%w: sections referencing a url (%q) are not supported", ErrInvalidMapping, section.URL)
		}
		return fmt.Errorf("%w: section without a map", ErrInvalidMapping)
	}
	if len(section.Map.Sections) > 0 {
		return addSections(out, section.Map.Sections, lineOffset, columnOffset, stopLine, stopColumn)
	}

	d, err := section.Map.Decode()
	if err != nil {
		return err
	}
	sourcesOffset, namesOffset := len(out.Sources), len(out.Names)
	from := Resolve(d.SourceRoot, "")
	for i, s := range d.Sources {
		out.Sources = append(out.Sources, Resolve(s, from))
		out.SourcesContent = append(out.SourcesContent, d.SourcesContent[i])
	}
	out.Names = append(out.Names, d.Names...)
	for _, i := range d.IgnoreList {
		out.IgnoreList = append(out.IgnoreList, i+sourcesOffset)
	}

	for i, line := range d.Mappings {
		lineI := lineOffset + i
		if lineI > stopLine {
			return nil
		}
		for len(out.Mappings) <= lineI {
			out.Mappings = append(out.Mappings, nil)
		}
		cOffset := 0
		if i == 0 {
			cOffset = columnOffset
		}
		for _, seg := range line {
			column := cOffset + seg[mappings.Column]
			if lineI == stopLine && column >= stopColumn {
				return nil
			}
			var shifted mappings.Segment
			switch {
			case !seg.HasSource():
				shifted = mappings.Segment{column}
			case seg.HasName():
				shifted = mappings.Segment{
					column, sourcesOffset + seg[mappings.SourceIndex], seg[mappings.SourceLine],
					seg[mappings.SourceColumn], namesOffset + seg[mappings.NameIndex],
				}
			default:
				shifted = mappings.Segment{
					column, sourcesOffset + seg[mappings.SourceIndex], seg[mappings.SourceLine], seg[mappings.SourceColumn],
				}
			}
			out.Mappings[lineI] = append(out.Mappings[lineI], shifted)
		}
	}
	return nil
}
