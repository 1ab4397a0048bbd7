// Package main is the entry point of the remap binary.
package main

import (
	"context"

	"github.com/liuxd6825/remap/cmd"
	"github.com/liuxd6825/remap/cmd/state"
)

func main() {
	gs := state.NewGlobalState(context.Background())
	cmd.ExecuteWithGlobalState(gs)
}
