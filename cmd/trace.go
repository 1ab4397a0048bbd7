package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/liuxd6825/remap/cmd/state"
	"github.com/liuxd6825/remap/errext"
	"github.com/liuxd6825/remap/errext/exitcodes"
	"github.com/liuxd6825/remap/lib/srcmap"
)

// cmdTrace handles the `remap trace` sub-command
type cmdTrace struct {
	gs        *state.GlobalState
	positions []string
	generated []string
	bias      string
	all       bool
}

func (c *cmdTrace) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringArrayVarP(&c.positions, "position", "p", nil,
		"generated position to trace back, as line:column, can be repeated")
	flags.StringArrayVarP(&c.generated, "generated", "g", nil,
		"original position to find in the generated file, as source:line:column, can be repeated")
	flags.StringVar(&c.bias, "bias", "glb",
		"segment picked without an exact match: 'glb' (closest to the left) or 'lub' (closest to the right)")
	flags.BoolVar(&c.all, "all", false, "list every generated position of the --generated positions")
	flags.AddFlagSet(configFlagSet())
	return flags
}

func (c *cmdTrace) run(cmd *cobra.Command, args []string) error {
	if len(c.positions) == 0 && len(c.generated) == 0 {
		return errext.WithHint(
			errext.WithExitCodeIfNone(errors.New("nothing to trace"), exitcodes.InvalidInput),
			"pass at least one --position or --generated",
		)
	}
	bias, err := parseBias(c.bias)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidInput)
	}

	conf, err := loadConfig(c.gs, cmd.Flags())
	if err != nil {
		return err
	}
	inputs, err := readInputs(c.gs, args)
	if err != nil {
		return err
	}
	sm, err := remapInputs(c.gs, conf, inputs)
	if err != nil {
		return err
	}
	d, err := sm.Decode()
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.RemapFailed)
	}
	tm := srcmap.NewTraceMap(d, "")

	for _, p := range c.positions {
		if err := c.traceOriginal(tm, p, bias); err != nil {
			return err
		}
	}
	for _, p := range c.generated {
		if err := c.traceGenerated(tm, p, bias); err != nil {
			return err
		}
	}
	return nil
}

func (c *cmdTrace) traceOriginal(tm *srcmap.TraceMap, position string, bias srcmap.Bias) error {
	line, column, err := parsePosition(position)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidInput)
	}
	m, err := tm.OriginalPositionFor(srcmap.Needle{Line: line, Column: column, Bias: bias})
	if err != nil {
		return errext.WithExitCodeIfNone(fmt.Errorf("%s: %w", position, err), exitcodes.InvalidInput)
	}

	con := c.gs.Console
	if !m.Source.Valid {
		con.Printf("%s -> %s\n", position, con.Missing("-"))
		return nil
	}
	result := con.Source(fmt.Sprintf("%s:%d:%d", m.Source.String, m.Line.Int64, m.Column.Int64))
	if m.Name.Valid {
		result += " " + m.Name.String
	}
	con.Printf("%s -> %s\n", position, result)
	return nil
}

func (c *cmdTrace) traceGenerated(tm *srcmap.TraceMap, position string, bias srcmap.Bias) error {
	source, line, column, err := parseSourcePosition(position)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidInput)
	}
	needle := srcmap.SourceNeedle{Source: source, Line: line, Column: column, Bias: bias}

	var found []srcmap.GeneratedMapping
	if c.all {
		found, err = tm.AllGeneratedPositionsFor(needle)
	} else {
		var m srcmap.GeneratedMapping
		m, err = tm.GeneratedPositionFor(needle)
		if m.Line.Valid {
			found = append(found, m)
		}
	}
	if err != nil {
		return errext.WithExitCodeIfNone(fmt.Errorf("%s: %w", position, err), exitcodes.InvalidInput)
	}

	con := c.gs.Console
	if len(found) == 0 {
		con.Printf("%s -> %s\n", position, con.Missing("-"))
		return nil
	}
	results := make([]string, len(found))
	for i, m := range found {
		results[i] = con.Source(fmt.Sprintf("%d:%d", m.Line.Int64, m.Column.Int64))
	}
	con.Printf("%s -> %s\n", position, strings.Join(results, ", "))
	return nil
}

func parseBias(s string) (srcmap.Bias, error) {
	switch strings.ToLower(s) {
	case "glb", "":
		return srcmap.GreatestLowerBound, nil
	case "lub":
		return srcmap.LeastUpperBound, nil
	default:
		return 0, fmt.Errorf("invalid bias %q, expected 'glb' or 'lub'", s)
	}
}

// parsePosition parses a line:column position.
func parsePosition(s string) (int, int, error) {
	l, col, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q, expected line:column", s)
	}
	line, err := strconv.Atoi(l)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid line in position %q: %w", s, err)
	}
	column, err := strconv.Atoi(col)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column in position %q: %w", s, err)
	}
	return line, column, nil
}

// parseSourcePosition parses a source:line:column position. The source may contain colons.
func parseSourcePosition(s string) (string, int, int, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return "", 0, 0, fmt.Errorf("invalid position %q, expected source:line:column", s)
	}
	j := strings.LastIndex(s[:i], ":")
	if j <= 0 {
		return "", 0, 0, fmt.Errorf("invalid position %q, expected source:line:column", s)
	}
	line, column, err := parsePosition(s[j+1:])
	if err != nil {
		return "", 0, 0, err
	}
	return s[:j], line, column, nil
}

func getCmdTrace(gs *state.GlobalState) *cobra.Command {
	c := &cmdTrace{gs: gs}

	exampleText := getExampleText(gs, `
  # Find where line 1, column 120 of a minified bundle comes from
  {{.}} trace dist/bundle.min.js.map -p 1:120

  # Find where line 12 of an original source ended up
  {{.}} trace dist/bundle.min.js.map -g src/app.ts:12:0 --all`[1:])

	cmd := &cobra.Command{
		Use:   "trace [flags] map...",
		Short: "Look up positions through composed source maps",
		Long: `Look up positions through composed source maps.

The maps are composed like the remap command does. Lines are 1-based and columns
0-based, the way browsers and node report them in stack traces.`,
		Example: exampleText,
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.run,
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(c.flagSet())
	return cmd
}
