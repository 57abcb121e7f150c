// Command uilint lints React components in JavaScript and TypeScript
// sources.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:]))
}

// run executes the CLI and maps the outcome to an exit code: 0 when clean,
// 1 when problems were reported, 2 on usage or runtime errors.
func run(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errProblems):
		return 1
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "uilint: %v\n", err)
		return 2
	}
}
