package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vito/lam/pkg/lam"
)

// sourceExt is the extension picked up when a directory is given.
const sourceExt = ".lam"

func fmtCmd() *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [flags] [path...]",
		Short: "Format lam source files",
		Long: `Format lam source files according to the canonical style.

By default, fmt prints the formatted source to stdout.
Use -w to write the result back to the source file.
Use -l to list files that would be changed.

The abstraction symbol is taken from the [format] section of lam.toml.`,
		Example: `  # Format a file and print to stdout
  lam fmt hello.lam

  # Format a file in place
  lam fmt -w hello.lam

  # List files that need formatting
  lam fmt -l ./examples`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args)
			if err != nil {
				return err
			}
			for _, file := range files {
				if err := formatFile(cmd, file, write, list); err != nil {
					return fmt.Errorf("formatting %s: %w", file, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write result to source file instead of stdout")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files that would be formatted")

	return cmd
}

func formatFile(cmd *cobra.Command, path string, write, list bool) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	config, err := lam.ConfigFor(filepath.Dir(path))
	if err != nil {
		return err
	}

	formatted, err := lam.FormatFile(path, source, config.Format)
	if err != nil {
		return lam.NewEvalContext(path, string(source)).CreateSourceError(err)
	}

	changed := string(source) != formatted
	out := cmd.OutOrStdout()

	if list && !write {
		if changed {
			fmt.Fprintln(out, path)
		}
		return nil
	}

	if write {
		if changed {
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return err
			}
			if list {
				fmt.Fprintln(out, path)
			}
		}
		return nil
	}

	fmt.Fprint(out, formatted)
	return nil
}

// collectFiles expands directories into the source files directly inside
// them.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), sourceExt) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}
