package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/liuxd6825/remap/cmd/state"
	"github.com/liuxd6825/remap/errext"
	"github.com/liuxd6825/remap/errext/exitcodes"
	"github.com/liuxd6825/remap/lib/fsext"
)

// cmdRemap handles the `remap remap` sub-command
type cmdRemap struct {
	gs     *state.GlobalState
	output string
}

func (c *cmdRemap) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVarP(&c.output, "output", "o", "", "write the map to this file instead of stdout")
	flags.AddFlagSet(configFlagSet())
	return flags
}

func (c *cmdRemap) run(cmd *cobra.Command, args []string) error {
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

	data, err := sm.MarshalJSON()
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.OutputFailed)
	}
	data = append(data, '\n')

	if c.output == "" || c.output == "-" {
		if _, err := c.gs.Console.Stdout.Write(data); err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.OutputFailed)
		}
		return nil
	}

	pwd, err := c.gs.Getwd()
	if err != nil {
		return err
	}
	path := fsext.Abs(pwd, c.output)
	if err := afero.WriteFile(c.gs.FS, path, data, 0o644); err != nil { //nolint:gosec
		return errext.WithExitCodeIfNone(fmt.Errorf("writing %s: %w", path, err), exitcodes.OutputFailed)
	}
	c.gs.Logger.WithFields(map[string]interface{}{
		"output":  path,
		"sources": len(sm.Sources),
	}).Debug("Wrote the remapped source map")
	return nil
}

func getCmdRemap(gs *state.GlobalState) *cobra.Command {
	c := &cmdRemap{gs: gs}

	exampleText := getExampleText(gs, `
  # Compose the map of a minified bundle with the maps of the files it was built from
  {{.}} remap dist/bundle.min.js.map -o out.map

  # Compose two transformations of a single file, the last one first
  {{.}} remap app.min.js.map app.js.map

  # Read the map from stdin and drop the original sources from the output
  cat bundle.js.map | {{.}} remap --exclude-content -`[1:])

	cmd := &cobra.Command{
		Use:   "remap [flags] map...",
		Short: "Compose source maps into a single one",
		Long: `Compose source maps into a single one.

The sources of the last map are looked up relative to its directory (or --root):
a source with a sourceMappingURL comment, or with a .map file next to it, is
traced through that map, recursively. Every other map given before the last one
describes one more transformation of a single file, the most recent first.`,
		Example: exampleText,
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.run,
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(c.flagSet())
	return cmd
}
