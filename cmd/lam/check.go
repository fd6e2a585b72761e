package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/lam/pkg/lam"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [path...]",
		Short: "Report lexical and syntax errors without running anything",
		Example: `  # Check every program in a directory
  lam check ./examples`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args)
			if err != nil {
				return err
			}

			errs := checkFiles(cmd.Context(), files)
			for _, err := range errs {
				if err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), renderError(cmd.ErrOrStderr(), err))
				}
			}
			if err := errors.Join(errs...); err != nil {
				return fmt.Errorf("%d of %d files have errors", countErrors(errs), len(files))
			}
			return nil
		},
	}
}

// checkFiles parses every file concurrently. The result has one entry per
// file, nil for those that parsed cleanly.
func checkFiles(ctx context.Context, files []string) []error {
	errs := make([]error, len(files))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = checkFile(file)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return []error{err}
	}
	return errs
}

func checkFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := lam.Parse(path, string(source)); err != nil {
		return lam.NewEvalContext(path, string(source)).CreateSourceError(err)
	}
	return nil
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
