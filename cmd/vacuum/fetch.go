package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brensch/vacuum/puzzle"
)

func newFetchCmd(a *app) *cobra.Command {
	fc := puzzle.DefaultFetcherConfig()
	var saveDir string

	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Download puzzles from an HTML page and solve them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			puzzles, err := puzzle.NewFetcher(fc).Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(puzzles) == 0 {
				return fmt.Errorf("no puzzles matching %q at %s", fc.Selector, args[0])
			}
			a.logger.Info("fetched puzzles", "url", args[0], "count", len(puzzles))

			if saveDir != "" {
				if err := savePuzzles(saveDir, puzzles); err != nil {
					return err
				}
			}
			return a.solveAndReport(cmd.Context(), cmd.OutOrStdout(), puzzles)
		},
	}
	cmd.Flags().StringVar(&fc.Selector, "selector", fc.Selector, "CSS selector of puzzle elements")
	cmd.Flags().DurationVar(&fc.Timeout, "timeout", fc.Timeout, "HTTP timeout")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "Also write each puzzle to NAME.txt in this directory")
	return cmd
}

func savePuzzles(dir string, puzzles []puzzle.Puzzle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	for _, p := range puzzles {
		path := filepath.Join(dir, p.Name+".txt")
		if err := os.WriteFile(path, []byte(strings.Join(p.Rows, "\n")+"\n"), 0o644); err != nil {
			return fmt.Errorf("save puzzle %s: %w", p.Name, err)
		}
	}
	return nil
}
