package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vknys/ingot/internal/cli"
	"github.com/vknys/ingot/pkg/ingot"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(ingot.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(ingot.ExitCodeForError(err))
	}
}
