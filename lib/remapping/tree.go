package remapping

import (
	"errors"
	"fmt"

	"github.com/liuxd6825/remap/lib/srcmap"
)

// DefaultMaxDepth is how deep loaded maps can nest unless WithMaxDepth says otherwise.
const DefaultMaxDepth = 64

var (
	// ErrTransformationMapSources is returned when a transformation map (any map but the last
	// one given to BuildTree) doesn't have exactly one source.
	ErrTransformationMapSources = errors.New("must have exactly one source file")
	// ErrMaxDepthExceeded is returned when loaded maps nest deeper than allowed, usually
	// because a loader keeps returning a map that references itself.
	ErrMaxDepthExceeded = errors.New("maximum source map depth exceeded")
	// ErrNoInput is returned when BuildTree is called without maps.
	ErrNoInput = errors.New("no source map given")
)

type treeOptions struct {
	maxDepth int
}

// TreeOption configures BuildTree.
type TreeOption func(*treeOptions)

// WithMaxDepth limits how deep loaded maps can nest. 0 disables the limit.
func WithMaxDepth(n int) TreeOption {
	return func(o *treeOptions) {
		o.maxDepth = n
	}
}

// BuildTree builds the tree of sources for the given maps. The sources of the last map are
// looked up with the loader, recursively. Every map before it describes a single file
// transformation applied on top of the next one, so input[0] ends up as the root of the tree.
func BuildTree(input []srcmap.Input, loader Loader, opts ...TreeOption) (*MapSource, error) {
	if len(input) == 0 {
		return nil, ErrNoInput
	}
	o := treeOptions{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if loader == nil {
		loader = NoopLoader
	}

	maps := make([]*srcmap.Decoded, len(input))
	for i, in := range input {
		d, err := in.Decode()
		if err != nil {
			return nil, err
		}
		maps[i] = d
	}
	last := len(maps) - 1
	for i, d := range maps[:last] {
		if len(d.Sources) != 1 {
			return nil, fmt.Errorf("transformation map %d %w, got %d; "+
				"did you specify these with the most recent transformation maps first?",
				i, ErrTransformationMapSources, len(d.Sources))
		}
	}

	b := treeBuilder{loader: loader, maxDepth: o.maxDepth}
	tree, err := b.build(srcmap.NewTraceMap(maps[last], ""), "", 0)
	if err != nil {
		return nil, err
	}
	for i := last - 1; i >= 0; i-- {
		tree = &MapSource{Map: srcmap.NewTraceMap(maps[i], ""), Children: []Source{tree}}
	}
	return tree, nil
}

type treeBuilder struct {
	loader   Loader
	maxDepth int
}

func (b treeBuilder) build(tm *srcmap.TraceMap, importer string, depth int) (*MapSource, error) {
	depth++
	if b.maxDepth > 0 && depth > b.maxDepth && len(tm.Sources) > 0 {
		return nil, fmt.Errorf("%w: %s is nested %d levels deep", ErrMaxDepthExceeded, importer, depth-1)
	}

	children := make([]Source, len(tm.ResolvedSources))
	for i, source := range tm.ResolvedSources {
		ctx := LoaderContext{
			Importer: importer,
			Depth:    depth,
			Source:   source,
			Content:  tm.SourcesContent[i],
			Ignore:   tm.IsIgnored(i),
		}
		result, err := b.loader.Load(source, ctx)
		if err != nil {
			return nil, fmt.Errorf("loading the source map of %s: %w", source, err)
		}
		if result != nil {
			if result.Source.Valid {
				ctx.Source = result.Source.String
			}
			if result.Content.Valid {
				ctx.Content = result.Content
			}
			if result.Ignore.Valid {
				ctx.Ignore = result.Ignore.Bool
			}
		}
		if result == nil || result.Map == nil {
			children[i] = &OriginalSource{Path: ctx.Source, Content: ctx.Content, Ignore: ctx.Ignore}
			continue
		}

		d, err := result.Map.Decode()
		if err != nil {
			return nil, fmt.Errorf("decoding the source map of %s: %w", ctx.Source, err)
		}
		child, err := b.build(srcmap.NewTraceMap(d, ctx.Source), ctx.Source, depth)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return &MapSource{Map: tm, Children: children}, nil
}
