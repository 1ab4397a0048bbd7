package loader

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/remap/lib/remapping"
)

// Ignoring adds the sources matching any of a list of glob patterns to the ignore list, on top
// of what another loader returns.
type Ignoring struct {
	loader   remapping.Loader
	patterns []string
}

// NewIgnoring wraps loader. The patterns use the doublestar syntax (`**/node_modules/**`).
func NewIgnoring(loader remapping.Loader, patterns []string) (*Ignoring, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return &Ignoring{loader: loader, patterns: patterns}, nil
}

// Load implements remapping.Loader.
func (ig *Ignoring) Load(source string, ctx remapping.LoaderContext) (*remapping.LoadResult, error) {
	result, err := ig.loader.Load(source, ctx)
	if err != nil || !ig.Match(source) {
		return result, err
	}
	if result == nil {
		return &remapping.LoadResult{Ignore: null.BoolFrom(true)}, nil
	}
	r := *result
	r.Ignore = null.BoolFrom(true)
	return &r, nil
}

// Match reports whether source matches one of the patterns.
func (ig *Ignoring) Match(source string) bool {
	for _, p := range ig.patterns {
		// the patterns were validated already
		if ok, _ := doublestar.Match(p, source); ok {
			return true
		}
	}
	return false
}
