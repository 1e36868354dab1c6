package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackdiff/pkg/crawl"
	errs "github.com/matzehuels/stackdiff/pkg/errors"
	"github.com/matzehuels/stackdiff/pkg/render/nodelink"
)

// Output formats for compare.
const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// compareOpts holds the command-line flags for the compare command.
type compareOpts struct {
	stack         stackOpts
	format        string        // text, json, dot or svg
	output        string        // output file; stdout when empty
	onlyDifferent bool          // hide subtrees without differences
	timeout       time.Duration // stop waiting and print the partial tree
}

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	opts := compareOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "compare <package> <first> <second>",
		Short: "Compare the dependency trees of two package versions",
		Long: `Compare crawls the dependency trees of two versions of an npm package in
parallel and prints where they diverge.

Versions may be exact versions, ranges or dist-tags; the registry resolves
them. Pass "" for a version to treat the package as absent on that side.`,
		Example: `  stackdiff compare express 4.17.0 4.18.2
  stackdiff compare react ^17 latest --only-different
  stackdiff compare webpack 4.0.0 5.0.0 --format svg -o webpack.svg`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			if err := validateComparison(args[0], args[1], args[2]); err != nil {
				return err
			}
			cfg, err := c.resolveConfig(cmd, &opts.stack)
			if err != nil {
				return err
			}
			crawler, _ := c.newStack(cfg)
			return runCompare(cmd.Context(), crawler, cmd.OutOrStdout(), args[0], args[1], args[2], &opts)
		},
	}

	addStackFlags(cmd, &opts.stack)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&opts.onlyDifferent, "only-different", false, "hide dependencies that are the same on both sides")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up after this long and print the partial tree (0 = no limit)")

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatDOT, formatSVG:
		return nil
	}
	return errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q (want text, json, dot or svg)", format)
}

// validateComparison rejects unsafe input and warns about names the public
// registry would not accept for new packages.
func validateComparison(module, first, second string) error {
	if err := errs.ValidatePackageName(module); err != nil {
		return err
	}
	if err := errs.ValidateNpmPackageName(module); err != nil {
		printWarning("%s", errs.UserMessage(err))
	}
	if first == "" && second == "" {
		return errs.New(errs.ErrCodeInvalidVersion, "at least one version is required")
	}
	if err := errs.ValidateVersionSpec(first); err != nil {
		return err
	}
	return errs.ValidateVersionSpec(second)
}

// runCompare crawls both trees and writes the result. A timeout or interrupt
// cancels the crawl; on timeout the partial tree is still written.
func runCompare(ctx context.Context, crawler *crawl.Crawler, stdout io.Writer, module, first, second string, opts *compareOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	crawlCtx := ctx
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	sess := crawler.Start(crawlCtx, module, first, second)
	var spinner *Spinner
	if isTerminal(statusOut) {
		spinner = newSpinner(ctx, statusOut, func() string {
			st := sess.Stats()
			return fmt.Sprintf("Comparing %s: %d dependencies, %d lookups", module, st.Nodes, st.Lookups)
		})
		spinner.Start()
	}

	<-sess.Done()
	if spinner != nil {
		spinner.Stop()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := sess.Snapshot()
	if crawlCtx.Err() != nil {
		printWarning("Timed out after %s; the tree is incomplete", opts.timeout)
	}
	prog.done(fmt.Sprintf("Compared %d dependencies", snap.Stats.Nodes))
	printStats(snap.Stats)
	if n := snap.Stats.Failures; n > 0 {
		printError("%d lookup%s failed; affected subtrees are incomplete", n, plural(n))
	}

	return writeOutput(ctx, stdout, snap, opts)
}

func writeOutput(ctx context.Context, w io.Writer, snap *crawl.Snapshot, opts *compareOpts) (err error) {
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	if err := render(ctx, w, snap, opts); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

func render(ctx context.Context, w io.Writer, snap *crawl.Snapshot, opts *compareOpts) error {
	if opts.onlyDifferent && snap.Root != nil && opts.format != formatText {
		snap.Root = snap.Root.Filter(true)
	}

	switch opts.format {
	case formatText:
		return writeTree(w, snap, opts.onlyDifferent)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case formatDOT:
		_, err := io.WriteString(w, nodelink.ToDOT(snap, nodelink.Options{}))
		return err
	case formatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(snap, nodelink.Options{}))
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		_, err = w.Write(svg)
		return err
	}
	return validateFormat(opts.format)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
