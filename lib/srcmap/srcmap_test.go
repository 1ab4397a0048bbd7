package srcmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("encoded", func(t *testing.T) {
		t.Parallel()
		d, err := Parse([]byte(`{
			"version": 3,
			"file": "out.js",
			"sourceRoot": "src",
			"sources": ["a.js", "b.js"],
			"sourcesContent": ["let a"],
			"names": ["foo"],
			"mappings": "AAAAA;ACCA"
		}`))
		require.NoError(t, err)
		assert.Equal(t, Version, d.Version)
		assert.Equal(t, null.StringFrom("out.js"), d.File)
		assert.Equal(t, "src", d.SourceRoot)
		assert.Equal(t, []string{"a.js", "b.js"}, d.Sources)
		assert.Equal(t, []null.String{null.StringFrom("let a"), {}}, d.SourcesContent)
		assert.Equal(t, []string{"foo"}, d.Names)
		assert.Equal(t, mappings.Mappings{
			{{0, 0, 0, 0, 0}},
			{{0, 1, 1, 0}},
		}, d.Mappings)
	})

	t.Run("decoded", func(t *testing.T) {
		t.Parallel()
		d, err := Parse([]byte(`{"version":3,"sources":["a.js"],"names":[],"mappings":[[[5,0,0,0],[1,0,0,1]]]}`))
		require.NoError(t, err)
		assert.Equal(t, mappings.Mappings{{{1, 0, 0, 1}, {5, 0, 0, 0}}}, d.Mappings)
	})

	t.Run("ignore list alias", func(t *testing.T) {
		t.Parallel()
		d, err := Parse([]byte(`{"version":3,"sources":["a.js","b.js"],"names":[],"mappings":"","x_google_ignoreList":[1,7]}`))
		require.NoError(t, err)
		assert.Equal(t, []int{1}, d.IgnoreList)
		assert.True(t, d.IsIgnored(1))
		assert.False(t, d.IsIgnored(0))
	})

	t.Run("null source", func(t *testing.T) {
		t.Parallel()
		d, err := Parse([]byte(`{"version":3,"sources":[null],"names":[],"mappings":"AAAA"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{""}, d.Sources)
	})
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		data string
		err  error
	}{
		{name: "not json", data: `{"version":`, err: ErrInvalidJSON},
		{name: "not an object", data: `[]`, err: ErrInvalidMapping},
		{name: "version", data: `{"version":2,"sources":[],"names":[],"mappings":""}`, err: ErrUnsupportedVersion},
		{name: "no mappings", data: `{"version":3,"sources":[],"names":[]}`, err: ErrInvalidMapping},
		{name: "mappings type", data: `{"version":3,"sources":[],"names":[],"mappings":1}`, err: ErrInvalidMapping},
		{name: "source index", data: `{"version":3,"sources":["a.js"],"names":[],"mappings":"ACAA"}`, err: ErrInvalidMapping},
		{name: "name index", data: `{"version":3,"sources":["a.js"],"names":[],"mappings":"AAAAA"}`, err: ErrInvalidMapping},
		{name: "vlq", data: `{"version":3,"sources":["a.js"],"names":[],"mappings":"A$"}`, err: mappings.ErrInvalidCharacter},
		{name: "field count", data: `{"version":3,"sources":["a.js"],"names":[],"mappings":[[[0,0]]]}`, err: ErrInvalidMapping},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.data))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecodedDecode(t *testing.T) {
	t.Parallel()
	original := &Decoded{
		Sources:    []string{"a.js"},
		Names:      []string{},
		Mappings:   mappings.Mappings{{{4, 0, 0, 4}, {0, 0, 0, 0}}},
		IgnoreList: []int{0, 3},
	}
	d, err := original.Decode()
	require.NoError(t, err)

	assert.Equal(t, Version, d.Version)
	assert.Equal(t, mappings.Mappings{{{0, 0, 0, 0}, {4, 0, 0, 4}}}, d.Mappings)
	assert.Equal(t, []int{0}, d.IgnoreList)
	assert.Len(t, d.SourcesContent, 1)
	// the input is left alone
	assert.Equal(t, mappings.Segment{4, 0, 0, 4}, original.Mappings[0][0])
	assert.Equal(t, 0, original.Version)

	_, err = (&Decoded{Mappings: mappings.Mappings{{{0, 0, 0, 0}}}}).Decode()
	require.ErrorIs(t, err, ErrInvalidMapping)
}

func TestEncode(t *testing.T) {
	t.Parallel()
	d, err := Parse([]byte(`{"version":3,"file":"out.js","sources":["a.js"],"sourcesContent":[null],"names":["x"],"mappings":"AAAAA,EAAE;;C"}`))
	require.NoError(t, err)

	sm := d.Encode()
	assert.Equal(t, `"AAAAA,EAAE;;C"`, string(sm.Mappings))
	assert.Equal(t, []null.String{null.StringFrom("a.js")}, sm.Sources)

	again, err := sm.Decode()
	require.NoError(t, err)
	assert.Equal(t, d, again)
}
