package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			if internal.IsVerbose() {
				fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			} else {
				fmt.Fprintln(os.Stderr, "Run with --verbose for stack trace")
			}
			os.Exit(internal.ExitError)
		}
	}()

	app := newCLI()
	if err := app.Execute(context.Background(), os.Args[1:]); err != nil {
		os.Exit(internal.HandleError(app.root, err))
	}
	os.Exit(internal.ExitSuccess)
}
