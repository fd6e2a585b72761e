package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/vito/lam/pkg/ioctx"
	"github.com/vito/lam/pkg/lam"
)

// Config holds the application configuration
type Config struct {
	Debug bool
	Eval  string
	File  string
}

var logLevel = new(slog.LevelVar)

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "lam [flags] [file]",
		Short: "Interpreter for a tiny untyped lambda calculus",
		Long: `lam runs programs written in a small lambda calculus with numbers,
arithmetic, anonymous recursion, and five built-in effects: ascii, print,
input, time, and sleep.`,
		Example: `  # Run a program
  lam hello.lam

  # Run a program given on the command line
  lam -e '(λprint. print) 42'

  # Start interactive REPL
  lam

  # Run with debug logging enabled
  lam --debug hello.lam`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg.Debug)

			switch {
			case cfg.Eval != "":
				if len(args) > 0 {
					return fmt.Errorf("cannot use -e together with a file argument")
				}
				return runEval(cmd.Context(), cfg)
			case len(args) == 1:
				cfg.File = args[0]
				return lam.RunFile(cmd.Context(), cfg.File, cfg.Debug)
			default:
				return runREPL(cmd.Context(), cfg)
			}
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&cfg.Eval, "eval", "e", "", "Run the given source instead of a file")

	rootCmd.AddCommand(fmtCmd())
	rootCmd.AddCommand(checkCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	ctx = ioctx.StdinToContext(ctx, os.Stdin)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprint(w, renderError(w, err))
		}),
	); err != nil {
		stop()
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	logLevel.Set(slog.LevelInfo)
	if debug {
		logLevel.Set(slog.LevelDebug)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func runEval(ctx context.Context, cfg Config) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	config, err := lam.ConfigFor(cwd)
	if err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	return lam.RunSource(ctx, "<eval>", cfg.Eval, config, cfg.Debug)
}

// renderError shows source errors with the offending line highlighted, and
// without colors when w is not a terminal.
func renderError(w io.Writer, err error) string {
	var sourceErr *lam.SourceError
	if !errors.As(err, &sourceErr) {
		return err.Error() + "\n"
	}
	msg := sourceErr.FormatWithHighlighting()
	if !isTerminal(w) {
		msg = ansi.Strip(msg)
	}
	return msg
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
