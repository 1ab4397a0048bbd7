package remapping

import (
	"github.com/mailru/easyjson/jwriter"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
	"github.com/liuxd6825/remap/lib/srcmap"
)

// Options control how the remapped map is rendered.
type Options struct {
	// DecodedMappings renders "mappings" as arrays of segments instead of a VLQ string.
	DecodedMappings bool `json:"decodedMappings"`
	// ExcludeContent leaves "sourcesContent" out.
	ExcludeContent bool `json:"excludeContent"`
}

// SourceMap is a remapped version 3 source map. It marshals to JSON with the fields in the
// usual order and can be used as an srcmap.Input again.
type SourceMap struct {
	File           null.String
	SourceRoot     string
	Sources        []string
	SourcesContent []null.String
	Names          []string
	Mappings       mappings.Mappings
	IgnoreList     []int

	opts Options
}

// NewSourceMap snapshots the state of b.
func NewSourceMap(b *Builder, opts Options) *SourceMap {
	sm := &SourceMap{
		File:       b.File(),
		Sources:    b.Sources(),
		Names:      b.Names(),
		Mappings:   b.Mappings(),
		IgnoreList: b.IgnoreList(),
		opts:       opts,
	}
	if !opts.ExcludeContent {
		sm.SourcesContent = b.SourcesContent()
	}
	return sm
}

// Options returns the rendering options of sm.
func (sm *SourceMap) Options() Options {
	return sm.opts
}

// Decode implements srcmap.Input.
func (sm *SourceMap) Decode() (*srcmap.Decoded, error) {
	return (&srcmap.Decoded{
		Version:        srcmap.Version,
		File:           sm.File,
		SourceRoot:     sm.SourceRoot,
		Sources:        sm.Sources,
		SourcesContent: sm.SourcesContent,
		Names:          sm.Names,
		Mappings:       sm.Mappings,
		IgnoreList:     sm.IgnoreList,
	}).Decode()
}

// MarshalEasyJSON writes sm to w.
func (sm *SourceMap) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"version":`)
	w.Int(srcmap.Version)
	if sm.File.Valid {
		w.RawString(`,"file":`)
		w.String(sm.File.String)
	}

	w.RawString(`,"mappings":`)
	if sm.opts.DecodedMappings {
		writeDecodedMappings(w, sm.Mappings)
	} else {
		w.String(mappings.Encode(sm.Mappings))
	}

	w.RawString(`,"names":`)
	writeStrings(w, sm.Names)
	if sm.SourceRoot != "" {
		w.RawString(`,"sourceRoot":`)
		w.String(sm.SourceRoot)
	}
	w.RawString(`,"sources":`)
	writeStrings(w, sm.Sources)

	if !sm.opts.ExcludeContent {
		w.RawString(`,"sourcesContent":`)
		w.RawByte('[')
		for i, c := range sm.SourcesContent {
			if i > 0 {
				w.RawByte(',')
			}
			if c.Valid {
				w.String(c.String)
			} else {
				w.RawString("null")
			}
		}
		w.RawByte(']')
	}

	w.RawString(`,"ignoreList":[`)
	for i, index := range sm.IgnoreList {
		if i > 0 {
			w.RawByte(',')
		}
		w.Int(index)
	}
	w.RawString("]}")
}

// MarshalJSON implements json.Marshaler.
func (sm *SourceMap) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	sm.MarshalEasyJSON(&w)
	return w.BuildBytes()
}

// String returns the JSON form of sm. MarshalEasyJSON never records a writer error, so the
// buffer is read directly.
func (sm *SourceMap) String() string {
	w := jwriter.Writer{}
	sm.MarshalEasyJSON(&w)
	return string(w.Buffer.BuildBytes())
}

func writeStrings(w *jwriter.Writer, values []string) {
	w.RawByte('[')
	for i, v := range values {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(v)
	}
	w.RawByte(']')
}

func writeDecodedMappings(w *jwriter.Writer, m mappings.Mappings) {
	w.RawByte('[')
	for i, line := range m {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawByte('[')
		for j, seg := range line {
			if j > 0 {
				w.RawByte(',')
			}
			w.RawByte('[')
			for k, v := range seg {
				if k > 0 {
					w.RawByte(',')
				}
				w.Int(v)
			}
			w.RawByte(']')
		}
		w.RawByte(']')
	}
	w.RawByte(']')
}
