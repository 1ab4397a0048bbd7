package console

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buffer is an OSFileW that is never a terminal.
type buffer struct {
	bytes.Buffer
}

func (b *buffer) Fd() uintptr {
	return ^uintptr(0)
}

func TestConsoleNotTTY(t *testing.T) {
	t.Parallel()
	stdout, stderr := &buffer{}, &buffer{}
	c := New(stdout, stderr, true, "xterm")

	assert.False(t, c.IsTTY)
	assert.Equal(t, "plain", c.ApplyTheme("plain"))
	assert.Equal(t, "a.js:1:2", c.Source("a.js:1:2"))
	assert.Equal(t, "-", c.Missing("-"))
	assert.Equal(t, strings.Repeat("─", defaultTermWidth), c.Rule())

	width, err := c.TermWidth()
	require.NoError(t, err)
	assert.Equal(t, defaultTermWidth, width)

	c.Printf("%s:%d\n", "a.js", 1)
	require.NoError(t, c.PrintYAML(map[string]any{"sources": []string{"a.js"}}))
	assert.Equal(t, "a.js:1\nsources:\n    - a.js\n", stdout.String())

	c.DisableTheme()
	assert.Equal(t, "plain", c.ApplyTheme("plain"))

	c.GetLogger().Warn("careful")
	assert.Contains(t, stderr.String(), "careful")
}

func TestConsoleWriterTTY(t *testing.T) {
	t.Parallel()
	var out buffer
	w := &consoleWriter{out: &out, isTTY: true, mutex: new(sync.Mutex)}

	n, err := w.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\x1b[0K\nb\x1b[0K\n", out.String())
}
