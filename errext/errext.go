// Package errext contains extensions for normal Go errors: exit codes and user hints that
// survive wrapping and are picked up by the command line.
package errext

import (
	"errors"

	"github.com/liuxd6825/remap/errext/exitcodes"
)

// HasExitCode is a wrapper around an error with an attached exit code. Values should be
// between 0 and 125.
type HasExitCode interface {
	error
	ExitCode() exitcodes.ExitCode
}

// HasHint is a wrapper around an error with an attached human readable hint, usually a
// suggestion on how to fix it.
type HasHint interface {
	error
	Hint() string
}

// WithExitCodeIfNone attaches an exit code to err, unless it's nil or already has one.
func WithExitCodeIfNone(err error, exitCode exitcodes.ExitCode) error {
	if err == nil {
		return nil
	}
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		return err
	}
	return withExitCode{err, exitCode}
}

// ExitCode returns the exit code attached to err, or def if there isn't one.
func ExitCode(err error, def exitcodes.ExitCode) exitcodes.ExitCode {
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		return ecerr.ExitCode()
	}
	return def
}

// WithHint attaches a hint to err, unless it's nil. If err already had a hint the result is
// "new hint (old hint)".
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return withHint{err, hint}
}

type withExitCode struct {
	error
	exitCode exitcodes.ExitCode
}

var _ HasExitCode = withExitCode{}

func (we withExitCode) Unwrap() error {
	return we.error
}

func (we withExitCode) ExitCode() exitcodes.ExitCode {
	return we.exitCode
}

type withHint struct {
	error
	hint string
}

var _ HasHint = withHint{}

func (wh withHint) Unwrap() error {
	return wh.error
}

func (wh withHint) Hint() string {
	hint := wh.hint
	var oldhint HasHint
	if errors.As(wh.error, &oldhint) {
		hint = hint + " (" + oldhint.Hint() + ")"
	}
	return hint
}
