package loader

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/liuxd6825/remap/lib/remapping"
)

// Cached remembers what another loader returned for the most recently used sources. It is safe
// for concurrent use as long as the wrapped loader is.
//
// Results are keyed by the source and by whether the context already carries content and the
// ignore flag, so the wrapped loader may depend on those but not on the importer or depth.
type Cached struct {
	loader remapping.Loader
	cache  *lru.Cache[cacheKey, *remapping.LoadResult]
}

type cacheKey struct {
	source     string
	hasContent bool
	ignore     bool
}

// NewCached wraps loader with a cache of the given size.
func NewCached(loader remapping.Loader, size int) (*Cached, error) {
	cache, err := lru.New[cacheKey, *remapping.LoadResult](size)
	if err != nil {
		return nil, fmt.Errorf("creating the source map cache: %w", err)
	}
	return &Cached{loader: loader, cache: cache}, nil
}

// Load implements remapping.Loader. Errors are not cached.
func (c *Cached) Load(source string, ctx remapping.LoaderContext) (*remapping.LoadResult, error) {
	key := cacheKey{source: source, hasContent: ctx.Content.Valid, ignore: ctx.Ignore}
	if result, ok := c.cache.Get(key); ok {
		return result, nil
	}
	result, err := c.loader.Load(source, ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, result)
	return result, nil
}

// Len returns the number of cached results.
func (c *Cached) Len() int {
	return c.cache.Len()
}
