// Command frontc runs the compiler front end over source files and prints
// what each stage produces.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"gofront/pkg/compiler"
	"gofront/pkg/diag"
)

type config struct {
	verbose   bool
	maxErrors int
	maxDepth  int
	jobs      int
}

func newRootCmd() *cobra.Command {
	cfg := &config{}
	root := &cobra.Command{
		Use:   "frontc",
		Short: "frontc: lexer, parser and name resolver",
		Long: `frontc runs the front end of the compiler.

Commands:
  tokens   Print the token stream of a file
  parse    Print the syntax tree of a file
  resolve  Resolve files and print their trees and storage
  repl     Compile declarations interactively
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.IntVar(&cfg.maxErrors, "max-errors", 0, "stop after this many resolution errors (0 means no limit)")
	flags.IntVar(&cfg.maxDepth, "max-depth", 0, "maximum parser nesting depth (0 means the default)")
	flags.IntVarP(&cfg.jobs, "jobs", "j", 0, "files resolved at once (0 means GOMAXPROCS)")

	root.AddCommand(newTokensCmd(), newParseCmd(cfg), newResolveCmd(cfg), newReplCmd(cfg))
	return root
}

// logger logs to w at warning level, or debug level with --verbose.
func (c *config) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// options turns the flags into compiler options logging to w.
func (c *config) options(w io.Writer) []compiler.Option {
	opts := []compiler.Option{
		compiler.WithLogger(c.logger(w)),
		compiler.WithMaxErrors(c.maxErrors),
		compiler.WithMaxDepth(c.maxDepth),
	}
	if c.jobs > 0 {
		opts = append(opts, compiler.WithConcurrency(c.jobs))
	}
	return opts
}

// report prints err with one line per diagnostic.
func report(w io.Writer, err error) {
	errs := diag.All(err)
	if len(errs) <= 1 {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintf(w, "%d errors:\n", len(errs))
	for _, e := range errs {
		fmt.Fprintln(w, " ", e)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		report(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
