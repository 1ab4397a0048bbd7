package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/liuxd6825/remap/cmd/state"
	"github.com/liuxd6825/remap/errext"
	"github.com/liuxd6825/remap/errext/exitcodes"
	"github.com/liuxd6825/remap/lib/remapping"
	"github.com/liuxd6825/remap/lib/srcmap"
	"github.com/liuxd6825/remap/loader"
)

// readInputs reads the maps given on the command line. At most one of them can be the
// standard input.
func readInputs(gs *state.GlobalState, args []string) ([]*loader.Input, error) {
	pwd, err := gs.Getwd()
	if err != nil {
		return nil, err
	}
	stdinUsed := false
	inputs := make([]*loader.Input, len(args))
	for i, arg := range args {
		if arg == "-" {
			if stdinUsed {
				return nil, errext.WithExitCodeIfNone(
					errors.New("the standard input can only be read once"), exitcodes.InvalidInput)
			}
			stdinUsed = true
		}
		in, err := loader.ReadInput(gs.FS, pwd, arg, gs.Stdin)
		if err != nil {
			return nil, errext.WithExitCodeIfNone(fmt.Errorf("reading %s: %w", arg, err), exitcodes.InvalidInput)
		}
		gs.Logger.WithField("map", in.Name).Debugf("Read %d bytes", len(in.Data))
		inputs[i] = in
	}
	return inputs, nil
}

// remapInputs composes the inputs into a single map, loading the maps of their sources as
// configured.
func remapInputs(gs *state.GlobalState, conf Config, inputs []*loader.Input) (*remapping.SourceMap, error) {
	pwd, err := gs.Getwd()
	if err != nil {
		return nil, err
	}
	l, err := conf.newLoader(gs, conf.rootFor(pwd, inputs))
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	maps := make([]srcmap.Input, len(inputs))
	names := make([]string, len(inputs))
	for i, in := range inputs {
		maps[i] = srcmap.Raw(in.Data)
		names[i] = in.Name
	}

	sm, err := remapping.Remap(maps, l, conf.remapOptions(), conf.treeOptions()...)
	if err != nil {
		err = fmt.Errorf("remapping %s: %w", strings.Join(names, ", "), err)
		switch {
		case errors.Is(err, remapping.ErrTransformationMapSources):
			err = errext.WithHint(err, "pass the map of the last transformation first")
		case errors.Is(err, remapping.ErrMaxDepthExceeded):
			err = errext.WithHint(err, "raise --max-depth or set it to 0 to disable the limit")
		}
		return nil, errext.WithExitCodeIfNone(err, exitcodes.RemapFailed)
	}
	return sm, nil
}

func getExampleText(gs *state.GlobalState, tpl string) string {
	var exampleText bytes.Buffer
	exampleTemplate := template.Must(template.New("").Parse(tpl))

	if err := exampleTemplate.Execute(&exampleText, gs.BinaryName); err != nil {
		gs.Logger.WithError(err).Error("Error during help example generation")
	}

	return exampleText.String()
}
