package remapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
)

func testBuilder() *Builder {
	b := NewBuilder(null.StringFrom("out.js"))
	b.AddSegment(0, 0, null.StringFrom("a.js"), 0, 5, null.StringFrom("foo"))
	b.AddSegment(1, 2, null.StringFrom(`b "quoted".js`), 3, 0, null.String{})
	b.SetSourceContent("a.js", null.StringFrom("let foo\n"))
	b.SetIgnore(`b "quoted".js`, true)
	return b
}

func TestSourceMapJSON(t *testing.T) {
	t.Parallel()

	t.Run("encoded", func(t *testing.T) {
		t.Parallel()
		sm := NewSourceMap(testBuilder(), Options{})
		assert.Equal(t,
			`{"version":3,"file":"out.js","mappings":"AAKAA;ECGL","names":["foo"],`+
				`"sources":["a.js","b \"quoted\".js"],"sourcesContent":["let foo\n",null],"ignoreList":[1]}`,
			sm.String())
	})

	t.Run("decoded", func(t *testing.T) {
		t.Parallel()
		sm := NewSourceMap(testBuilder(), Options{DecodedMappings: true, ExcludeContent: true})
		assert.Equal(t,
			`{"version":3,"file":"out.js","mappings":[[[0,0,0,5,0]],[[2,1,3,0]]],"names":["foo"],`+
				`"sources":["a.js","b \"quoted\".js"],"ignoreList":[1]}`,
			sm.String())
		assert.Nil(t, sm.SourcesContent)
	})

	t.Run("source root and no file", func(t *testing.T) {
		t.Parallel()
		sm := NewSourceMap(NewBuilder(null.String{}), Options{})
		sm.SourceRoot = "https://example.com/"
		assert.Equal(t,
			`{"version":3,"mappings":"","names":[],"sourceRoot":"https://example.com/","sources":[],`+
				`"sourcesContent":[],"ignoreList":[]}`,
			sm.String())
	})

	t.Run("String matches MarshalJSON", func(t *testing.T) {
		t.Parallel()
		for _, opts := range []Options{{}, {DecodedMappings: true, ExcludeContent: true}} {
			sm := NewSourceMap(testBuilder(), opts)
			b, err := sm.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, string(b), sm.String())
		}
	})

	t.Run("json.Marshal", func(t *testing.T) {
		t.Parallel()
		sm := NewSourceMap(testBuilder(), Options{})
		b, err := json.Marshal(map[string]any{"map": sm})
		require.NoError(t, err)
		assert.JSONEq(t, `{"map":`+sm.String()+`}`, string(b))
	})
}

func TestSourceMapDecode(t *testing.T) {
	t.Parallel()
	sm := NewSourceMap(testBuilder(), Options{ExcludeContent: true})
	d, err := sm.Decode()
	require.NoError(t, err)

	assert.Equal(t, null.StringFrom("out.js"), d.File)
	assert.Equal(t, mappings.Mappings{{{0, 0, 0, 5, 0}}, {{2, 1, 3, 0}}}, d.Mappings)
	assert.Equal(t, []null.String{{}, {}}, d.SourcesContent)
	assert.Equal(t, []int{1}, d.IgnoreList)
}
