package errext

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/remap/errext/exitcodes"
)

func TestExitCode(t *testing.T) {
	t.Parallel()
	assert.Nil(t, WithExitCodeIfNone(nil, exitcodes.RemapFailed))

	errBase := errors.New("base")
	err := WithExitCodeIfNone(errBase, exitcodes.InvalidInput)
	require.ErrorIs(t, err, errBase)
	assert.Equal(t, exitcodes.InvalidInput, ExitCode(err, exitcodes.RemapFailed))

	// the first code sticks, even through wrapping
	wrapped := WithExitCodeIfNone(fmt.Errorf("wrapped: %w", err), exitcodes.OutputFailed)
	assert.Equal(t, exitcodes.InvalidInput, ExitCode(wrapped, exitcodes.RemapFailed))
	assert.Equal(t, "wrapped: base", wrapped.Error())

	assert.Equal(t, exitcodes.RemapFailed, ExitCode(errBase, exitcodes.RemapFailed))
	assert.Equal(t, exitcodes.ExternalAbort, ExitCode(&InterruptError{Reason: "stop"}, exitcodes.RemapFailed))
}

func TestHint(t *testing.T) {
	t.Parallel()
	assert.Nil(t, WithHint(nil, "hint"))

	err := WithHint(errors.New("base"), "inner")
	err = WithHint(fmt.Errorf("outer: %w", err), "outer")

	var herr HasHint
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "outer (inner)", herr.Hint())
}

func TestFormat(t *testing.T) {
	t.Parallel()
	msg, fields := Format(nil)
	assert.Empty(t, msg)
	assert.Nil(t, fields)

	err := WithExitCodeIfNone(WithHint(errors.New("broken map"), "check the input"), exitcodes.InvalidInput)
	msg, fields = Format(err)
	assert.Equal(t, "broken map", msg)
	assert.Equal(t, map[string]interface{}{"hint": "check the input", "exit_code": 100}, fields)

	assert.True(t, IsInterruptError(fmt.Errorf("x: %w", &InterruptError{Reason: "interrupted"})))
	assert.False(t, IsInterruptError(err))
	assert.False(t, IsInterruptError(nil))
}
