package loader

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/url"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/mappings"
	"github.com/liuxd6825/remap/lib/remapping"
	"github.com/liuxd6825/remap/lib/srcmap"
	"github.com/liuxd6825/remap/lib/testutils"
)

const testMap = `{"version":3,"sources":["orig.js"],"names":[],"mappings":"AAAA"}`

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotlied(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFileLoadMaps(t *testing.T) {
	t.Parallel()
	inline := "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(testMap))
	files := map[string][]byte{
		"/project/dist/next.js":             []byte("next()"),
		"/project/dist/next.js.map":         []byte(testMap),
		"/project/dist/comment.js":          []byte("comment()\n//# sourceMappingURL=maps/comment.js.map\n"),
		"/project/dist/maps/comment.js.map": []byte(testMap),
		"/project/dist/old.js":              []byte("old()\n//@ sourceMappingURL=old.map"),
		"/project/dist/old.map":             []byte(testMap),
		"/project/dist/inline.js":           []byte("inline()\n//# sourceMappingURL=" + inline),
		"/project/dist/escaped.js":          []byte("escaped()\n//# sourceMappingURL=data:application/json," + url.PathEscape(testMap)),
		"/project/dist/style.css":           []byte("a{}\n/*# sourceMappingURL=style.css.map */"),
		"/project/dist/style.css.map":       []byte(testMap),
		"/project/dist/gz.js.map.gz":        gzipped(t, testMap),
		"/project/dist/br.js.map.br":        brotlied(t, testMap),
		"/project/dist/absolute.js":         []byte("//# sourceMappingURL=/maps/absolute.js.map"),
		"/maps/absolute.js.map":             []byte(testMap),
	}
	testCases := []string{
		"next.js", "comment.js", "old.js", "inline.js", "escaped.js", "style.css", "gz.js", "br.js",
		"absolute.js", "/project/dist/next.js", "file:///project/dist/next.js", "./nested/../next.js",
	}
	for _, source := range testCases {
		t.Run(source, func(t *testing.T) {
			t.Parallel()
			l := NewFile(testutils.MemFS(t, files), "/project/dist", testutils.NewLogger(t), WithValidation(true))
			result, err := l.Load(source, remapping.LoaderContext{Source: source, Depth: 1})
			require.NoError(t, err)
			require.NotNil(t, result)
			require.NotNil(t, result.Map)

			d, err := result.Map.Decode()
			require.NoError(t, err)
			assert.Equal(t, []string{"orig.js"}, d.Sources)
			assert.Equal(t, mappings.Mappings{{{0, 0, 0, 0}}}, d.Mappings)
		})
	}
}

func TestFileLoadWithoutMap(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"/project/orig.js":       []byte("let x = 1"),
		"/project/broken.js":     []byte("broken()\n//# sourceMappingURL=broken.js.map"),
		"/project/broken.js.map": []byte(`{"version":3,"sources":[],"names":[],"mappings":"AAAA"}`),
		"/project/missing.js":    []byte("missing()\n//# sourceMappingURL=missing.js.map"),
		"/project/remote.js":     []byte("remote()\n//# sourceMappingURL=https://example.com/remote.js.map"),
	}

	t.Run("no content", func(t *testing.T) {
		t.Parallel()
		l := NewFile(testutils.MemFS(t, files), "/project", testutils.NewLogger(t))
		for _, source := range []string{"orig.js", "nonexistent.js", "https://example.com/a.js", "webpack:///a.js", ""} {
			result, err := l.Load(source, remapping.LoaderContext{Source: source})
			require.NoError(t, err, source)
			assert.Nil(t, result, source)
		}
	})

	t.Run("content", func(t *testing.T) {
		t.Parallel()
		l := NewFile(testutils.MemFS(t, files), "/project", testutils.NewLogger(t), WithReadContent(true))
		result, err := l.Load("orig.js", remapping.LoaderContext{Source: "orig.js"})
		require.NoError(t, err)
		assert.Equal(t, &remapping.LoadResult{Content: null.StringFrom("let x = 1")}, result)

		// embedded content is kept
		result, err = l.Load("orig.js", remapping.LoaderContext{Source: "orig.js", Content: null.StringFrom("embedded")})
		require.NoError(t, err)
		assert.Nil(t, result)

		result, err = l.Load("nonexistent.js", remapping.LoaderContext{Source: "nonexistent.js"})
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	for _, source := range []string{"broken.js", "missing.js", "remote.js"} {
		t.Run(source, func(t *testing.T) {
			t.Parallel()
			logger, hook := testutils.NewLoggerWithHook(t, logrus.WarnLevel)
			l := NewFile(testutils.MemFS(t, files), "/project", logger)

			result, err := l.Load(source, remapping.LoaderContext{Source: source})
			require.NoError(t, err)
			assert.Nil(t, result)
			assert.True(t, testutils.LogContains(hook.Drain(), logrus.WarnLevel, "Couldn't load source map for "+source))
		})
	}
}

type countingLoader struct {
	calls int
	err   error
}

func (c *countingLoader) Load(source string, _ remapping.LoaderContext) (*remapping.LoadResult, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &remapping.LoadResult{Source: null.StringFrom(source + "?")}, nil
}

func TestCached(t *testing.T) {
	t.Parallel()
	inner := &countingLoader{}
	c, err := NewCached(inner, 2)
	require.NoError(t, err)

	for _, source := range []string{"a.js", "b.js", "a.js", "a.js", "c.js", "b.js"} {
		result, err := c.Load(source, remapping.LoaderContext{})
		require.NoError(t, err)
		assert.Equal(t, null.StringFrom(source+"?"), result.Source)
	}
	// b.js was evicted by c.js
	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 2, c.Len())

	errBroken := errors.New("broken")
	failing, err := NewCached(&countingLoader{err: errBroken}, 2)
	require.NoError(t, err)
	_, err = failing.Load("a.js", remapping.LoaderContext{})
	require.ErrorIs(t, err, errBroken)
	assert.Zero(t, failing.Len())

	_, err = NewCached(inner, 0)
	require.Error(t, err)
}

func TestIgnoring(t *testing.T) {
	t.Parallel()
	withMap := remapping.LoaderFunc(func(source string, _ remapping.LoaderContext) (*remapping.LoadResult, error) {
		if source == "node_modules/lib/index.js" {
			return &remapping.LoadResult{Map: srcmap.Raw(testMap)}, nil
		}
		return nil, nil //nolint:nilnil
	})
	ig, err := NewIgnoring(withMap, []string{"**/node_modules/**", "vendor/*.js"})
	require.NoError(t, err)

	result, err := ig.Load("vendor/a.js", remapping.LoaderContext{})
	require.NoError(t, err)
	assert.Equal(t, &remapping.LoadResult{Ignore: null.BoolFrom(true)}, result)

	result, err = ig.Load("node_modules/lib/index.js", remapping.LoaderContext{})
	require.NoError(t, err)
	assert.NotNil(t, result.Map)
	assert.Equal(t, null.BoolFrom(true), result.Ignore)

	result, err = ig.Load("src/a.js", remapping.LoaderContext{})
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.True(t, ig.Match("lib/node_modules/x/y.js"))
	assert.False(t, ig.Match("vendor/nested/a.js"))

	_, err = NewIgnoring(withMap, []string{"[a-"})
	require.Error(t, err)
}

func TestRemapWithFileLoader(t *testing.T) {
	t.Parallel()
	fs := testutils.MemFS(t, map[string][]byte{
		"/project/src/mid.js":     []byte("mid()\n//# sourceMappingURL=mid.js.map\n"),
		"/project/src/mid.js.map": []byte(
			`{"version":3,"sources":["orig.js"],"names":["x"],"mappings":"AAAA;AACA,IAAIA"}`),
		"/project/src/orig.js": []byte("let x = 1\nlet y = x"),
	})
	l := NewFile(fs, "/project/dist", testutils.NewLogger(t), WithReadContent(true), WithValidation(true))
	ig, err := NewIgnoring(l, []string{"**/orig.js"})
	require.NoError(t, err)
	cached, err := NewCached(ig, 16)
	require.NoError(t, err)

	sm, err := remapping.Remap([]srcmap.Input{srcmap.Raw(
		`{"version":3,"file":"out.js","sources":["../src/mid.js"],"names":[],"mappings":"AACA,EAAIA"}`,
	)}, cached, remapping.Options{})
	require.Error(t, err, "the name index points nowhere")
	assert.Nil(t, sm)

	sm, err = remapping.Remap([]srcmap.Input{srcmap.Raw(
		`{"version":3,"file":"out.js","sources":["../src/mid.js"],"names":[],"mappings":"AACA,EAAI"}`,
	)}, cached, remapping.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"../src/orig.js"}, sm.Sources)
	assert.Equal(t, []null.String{null.StringFrom("let x = 1\nlet y = x")}, sm.SourcesContent)
	assert.Equal(t, []int{0}, sm.IgnoreList)
	assert.Equal(t, []string{"x"}, sm.Names)
	assert.Equal(t, mappings.Mappings{{{0, 0, 1, 0}, {2, 0, 1, 4, 0}}}, sm.Mappings)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedKeepsEmbeddedContent(t *testing.T) {
	t.Parallel()
	fs := testutils.MemFS(t, map[string][]byte{
		"/project/b.js":     []byte("b()\n//# sourceMappingURL=b.js.map\n"),
		"/project/b.js.map": []byte(`{"version":3,"sources":["shared.js"],"names":[],"mappings":"AAAA"}`),
		"/project/a.js":     []byte("a()\n//# sourceMappingURL=a.js.map\n"),
		"/project/a.js.map": []byte(
			`{"version":3,"sources":["shared.js"],"sourcesContent":["EMBEDDED"],"names":[],"mappings":"AAAA"}`),
		"/project/shared.js": []byte("DISK"),
	})
	root := srcmap.Raw(`{"version":3,"file":"out.js","sources":["b.js","a.js"],"names":[],"mappings":"AAAA,CACA"}`)

	file := NewFile(fs, "/project", testutils.NewLogger(t), WithReadContent(true))
	uncached, err := remapping.Remap([]srcmap.Input{root}, file, remapping.Options{})
	require.NoError(t, err)

	cached, err := NewCached(NewFile(fs, "/project", testutils.NewLogger(t), WithReadContent(true)), 16)
	require.NoError(t, err)
	sm, err := remapping.Remap([]srcmap.Input{root}, cached, remapping.Options{})
	require.NoError(t, err)

	assert.Equal(t, []null.String{null.StringFrom("EMBEDDED")}, uncached.SourcesContent)
	assert.Equal(t, uncached.String(), sm.String())
	// shared.js was looked up once with and once without embedded content
	assert.Equal(t, 4, cached.Len())
}
