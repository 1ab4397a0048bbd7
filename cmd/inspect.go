package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/liuxd6825/remap/cmd/state"
	"github.com/liuxd6825/remap/errext"
	"github.com/liuxd6825/remap/errext/exitcodes"
	"github.com/liuxd6825/remap/lib/mappings"
	"github.com/liuxd6825/remap/lib/srcmap"
	"github.com/liuxd6825/remap/loader"
)

const inspectConcurrency = 8

// cmdInspect handles the `remap inspect` sub-command
type cmdInspect struct {
	gs    *state.GlobalState
	query string
}

type mapSummary struct {
	Map        string          `yaml:"map"`
	File       string          `yaml:"file,omitempty"`
	SourceRoot string          `yaml:"sourceRoot,omitempty"`
	Lines      int             `yaml:"lines"`
	Segments   int             `yaml:"segments"`
	Names      int             `yaml:"names"`
	Sources    []sourceSummary `yaml:"sources"`
	Query      []any           `yaml:"query,omitempty"`
}

type sourceSummary struct {
	Path     string `yaml:"path"`
	Segments int    `yaml:"segments"`
	Content  bool   `yaml:"content"`
	Ignored  bool   `yaml:"ignored,omitempty"`
}

func (c *cmdInspect) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&c.query, "query", "q", "", "JSONPath expression evaluated against every map, e.g. '$.sources[0]'")
	return flags
}

func (c *cmdInspect) run(_ *cobra.Command, args []string) error {
	var query jp.Expr
	if c.query != "" {
		var err error
		if query, err = jp.ParseString(c.query); err != nil {
			return errext.WithExitCodeIfNone(fmt.Errorf("invalid JSONPath %q: %w", c.query, err), exitcodes.InvalidInput)
		}
	}

	inputs, err := readInputs(c.gs, args)
	if err != nil {
		return err
	}

	summaries := make([]*mapSummary, len(inputs))
	g, ctx := errgroup.WithContext(c.gs.Ctx)
	g.SetLimit(inspectConcurrency)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := summarize(in, query)
			if err != nil {
				return errext.WithExitCodeIfNone(fmt.Errorf("inspecting %s: %w", in.Name, err), exitcodes.InvalidInput)
			}
			summaries[i] = s
			return nil
		})
	}
	err = g.Wait()
	// the group context is also canceled when one of the maps fails, so only the parent one
	// tells about interrupts
	if c.gs.Ctx.Err() != nil {
		return &errext.InterruptError{Reason: "inspect was interrupted"}
	}
	if err != nil {
		return err
	}

	if len(summaries) == 1 {
		return c.gs.Console.PrintYAML(summaries[0])
	}
	return c.gs.Console.PrintYAML(summaries)
}

// summarize decodes in and counts what it contains.
func summarize(in *loader.Input, query jp.Expr) (*mapSummary, error) {
	d, err := srcmap.Parse(in.Data)
	if err != nil {
		return nil, err
	}
	tm := srcmap.NewTraceMap(d, in.Name)

	s := &mapSummary{
		Map:        in.Name,
		File:       d.File.String,
		SourceRoot: d.SourceRoot,
		Lines:      len(d.Mappings),
		Names:      len(d.Names),
		Sources:    make([]sourceSummary, len(d.Sources)),
	}
	for i, source := range tm.ResolvedSources {
		s.Sources[i] = sourceSummary{
			Path:    source,
			Content: d.SourcesContent[i].Valid,
			Ignored: d.IsIgnored(i),
		}
	}
	for _, line := range d.Mappings {
		s.Segments += len(line)
		for _, seg := range line {
			if seg.HasSource() {
				s.Sources[seg[mappings.SourceIndex]].Segments++
			}
		}
	}

	if query != nil {
		data, err := oj.Parse(in.Data)
		if err != nil {
			return nil, err
		}
		s.Query = query.Get(data)
	}
	return s, nil
}

func getCmdInspect(gs *state.GlobalState) *cobra.Command {
	c := &cmdInspect{gs: gs}

	exampleText := getExampleText(gs, `
  # Summarize a source map
  {{.}} inspect dist/bundle.js.map

  # Print the sources of several maps
  {{.}} inspect -q '$.sources' dist/*.map`[1:])

	cmd := &cobra.Command{
		Use:     "inspect [flags] map...",
		Short:   "Summarize source maps",
		Long:    `Summarize source maps: their sources, names and how many segments point where.`,
		Example: exampleText,
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.run,
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(c.flagSet())
	return cmd
}
