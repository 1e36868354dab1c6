// Command stackdiff compares the npm dependency trees of two versions of a
// package and prints where they diverge.
//
//	stackdiff compare express 4.17.1 4.18.2
//	stackdiff serve --addr :8080
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackdiff/internal/cli"
	errs "github.com/matzehuels/stackdiff/pkg/errors"
)

// Exit codes.
const (
	exitFailure     = 1
	exitUsage       = 2   // bad package name, version or output format
	exitInterrupted = 130 // comparison or server stopped by SIGINT/SIGTERM
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err == nil {
		return
	}
	code := exitCode(err)
	if code != exitInterrupted {
		fmt.Fprintf(os.Stderr, "stackdiff: %v\n", err)
	}
	stop()
	os.Exit(code)
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log every registry request, cache decision and lookup failure")

	// --verbose is only known after parsing, so the crawl hooks are
	// installed here rather than when the CLI is built.
	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.SetVerbose(verbose)
		if preRun != nil {
			return preRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidPackage, errs.ErrCodeInvalidVersion, errs.ErrCodeInvalidFormat:
		return exitUsage
	default:
		return exitFailure
	}
}
