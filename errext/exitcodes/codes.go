// Package exitcodes contains the constants representing possible remap exit error codes.
package exitcodes

// ExitCode is just a type representing a process exit code for remap
type ExitCode uint8

// list of exit codes used by remap
const (
	InvalidInput  ExitCode = 100 // an input map couldn't be read or decoded
	RemapFailed   ExitCode = 101
	OutputFailed  ExitCode = 102
	InvalidConfig ExitCode = 104
	ExternalAbort ExitCode = 105
	GoPanic       ExitCode = 108
)
