// Package srcmap contains the Source Map v3 model: the serialized (wire) form, the decoded form
// used for tracing and the helpers needed to get from one to the other.
package srcmap

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
)

var (
	// ErrInvalidJSON is returned when the serialized map is not valid JSON.
	ErrInvalidJSON = errors.New("source map is not valid JSON")
	// ErrUnsupportedVersion is returned for maps declaring a version other than 3.
	ErrUnsupportedVersion = errors.New("unsupported source map version")
	// ErrInvalidMapping is returned when the map is structurally broken, e.g. the mappings are
	// missing or a segment points outside of the sources or names.
	ErrInvalidMapping = errors.New("invalid source map")
)

// Version is the only supported source map version.
const Version = 3

// SourceMap is the serialized form of a version 3 source map, as found on disk.
type SourceMap struct {
	Version           int             `json:"version"`
	File              null.String     `json:"file"`
	SourceRoot        string          `json:"sourceRoot,omitempty"`
	Sources           []null.String   `json:"sources"`
	SourcesContent    []null.String   `json:"sourcesContent,omitempty"`
	Names             []string        `json:"names"`
	Mappings          json.RawMessage `json:"mappings,omitempty"`
	IgnoreList        []int           `json:"ignoreList,omitempty"`
	XGoogleIgnoreList []int           `json:"x_google_ignoreList,omitempty"`
	Sections          []Section       `json:"sections,omitempty"`
}

// Section is one part of an index map.
type Section struct {
	Offset Offset     `json:"offset"`
	Map    *SourceMap `json:"map,omitempty"`
	URL    string     `json:"url,omitempty"`
}

// Offset is the generated position at which a Section starts.
type Offset struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Decoded is a source map with its mappings decoded and sorted, ready to be traced.
type Decoded struct {
	Version    int
	File       null.String
	SourceRoot string
	Sources    []string
	// SourcesContent always has the same length as Sources; missing entries are invalid.
	SourcesContent []null.String
	Names          []string
	Mappings       mappings.Mappings
	IgnoreList     []int
}

// Input is anything that can be turned into a Decoded map.
type Input interface {
	Decode() (*Decoded, error)
}

// Raw is a serialized source map in its JSON form.
type Raw []byte

// Decode implements Input.
func (r Raw) Decode() (*Decoded, error) {
	return Parse(r)
}

// Parse parses a JSON source map (regular or index map) and decodes it.
func Parse(data []byte) (*Decoded, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	if root := gjson.ParseBytes(data); !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object but got %s", ErrInvalidMapping, root.Type)
	}
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMapping, err)
	}
	return sm.Decode()
}

// Decode implements Input.
func (sm *SourceMap) Decode() (*Decoded, error) {
	if sm.Version != 0 && sm.Version != Version {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedVersion, sm.Version)
	}
	if len(sm.Sections) > 0 {
		return flatten(sm)
	}

	m, err := decodeMappings(sm.Mappings)
	if err != nil {
		return nil, err
	}
	sources := make([]string, len(sm.Sources))
	for i, s := range sm.Sources {
		sources[i] = s.String
	}
	ignoreList := sm.IgnoreList
	if ignoreList == nil {
		ignoreList = sm.XGoogleIgnoreList
	}
	d := &Decoded{
		Version:        Version,
		File:           sm.File,
		SourceRoot:     sm.SourceRoot,
		Sources:        sources,
		SourcesContent: alignContent(sm.SourcesContent, len(sources)),
		Names:          append([]string(nil), sm.Names...),
		Mappings:       m,
		IgnoreList:     filterIgnoreList(ignoreList, len(sources)),
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Decode implements Input. It returns a validated copy of d with its lines sorted; d itself is
// never modified.
func (d *Decoded) Decode() (*Decoded, error) {
	c := *d
	if c.Version == 0 {
		c.Version = Version
	}
	if c.Version != Version {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedVersion, c.Version)
	}
	c.SourcesContent = alignContent(d.SourcesContent, len(d.Sources))
	c.IgnoreList = filterIgnoreList(d.IgnoreList, len(d.Sources))
	c.Mappings = mappings.Sort(d.Mappings, false)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// IsIgnored reports whether the source with the given index is in the ignore list.
func (d *Decoded) IsIgnored(index int) bool {
	for _, i := range d.IgnoreList {
		if i == index {
			return true
		}
	}
	return false
}

// Encode returns the serialized form of d with VLQ encoded mappings.
func (d *Decoded) Encode() *SourceMap {
	sources := make([]null.String, len(d.Sources))
	for i, s := range d.Sources {
		sources[i] = null.StringFrom(s)
	}
	encoded, _ := json.Marshal(mappings.Encode(d.Mappings)) //nolint:errchkjson
	return &SourceMap{
		Version:        Version,
		File:           d.File,
		SourceRoot:     d.SourceRoot,
		Sources:        sources,
		SourcesContent: d.SourcesContent,
		Names:          d.Names,
		Mappings:       encoded,
		IgnoreList:     d.IgnoreList,
	}
}

func decodeMappings(raw json.RawMessage) (mappings.Mappings, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf(`%w: missing "mappings"`, ErrInvalidMapping)
	}
	value := gjson.ParseBytes(raw)
	switch {
	case value.Type == gjson.String:
		m, err := mappings.Decode(value.Str)
		if err != nil {
			return nil, err
		}
		return mappings.Sort(m, true), nil
	case value.IsArray():
		var m mappings.Mappings
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf(`%w: decoded "mappings": %w`, ErrInvalidMapping, err)
		}
		return mappings.Sort(m, true), nil
	default:
		return nil, fmt.Errorf(`%w: "mappings" must be a string or an array, got %s`, ErrInvalidMapping, value.Type)
	}
}

func (d *Decoded) validate() error {
	for i, line := range d.Mappings {
		for j, seg := range line {
			if err := d.validateSegment(seg); err != nil {
				return fmt.Errorf("%w: segment %d of line %d: %s", ErrInvalidMapping, j, i, err.Error())
			}
		}
	}
	return nil
}

func (d *Decoded) validateSegment(seg mappings.Segment) error {
	switch len(seg) {
	case 1, 4, 5:
	default:
		return fmt.Errorf("has %d fields", len(seg))
	}
	if seg[mappings.Column] < 0 {
		return errors.New("negative generated column")
	}
	if !seg.HasSource() {
		return nil
	}
	if seg[mappings.SourceIndex] < 0 || seg[mappings.SourceIndex] >= len(d.Sources) {
		return fmt.Errorf("source index %d out of range", seg[mappings.SourceIndex])
	}
	if seg[mappings.SourceLine] < 0 || seg[mappings.SourceColumn] < 0 {
		return errors.New("negative original position")
	}
	if seg.HasName() && (seg[mappings.NameIndex] < 0 || seg[mappings.NameIndex] >= len(d.Names)) {
		return fmt.Errorf("name index %d out of range", seg[mappings.NameIndex])
	}
	return nil
}

func alignContent(content []null.String, n int) []null.String {
	aligned := make([]null.String, n)
	copy(aligned, content)
	return aligned
}

func filterIgnoreList(list []int, n int) []int {
	var filtered []int
	for _, i := range list {
		if i >= 0 && i < n {
			filtered = append(filtered, i)
		}
	}
	return filtered
}
