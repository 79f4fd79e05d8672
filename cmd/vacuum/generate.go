package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brensch/vacuum/puzzle"
)

func newGenerateCmd(a *app) *cobra.Command {
	var cfg puzzle.GenerateConfig
	var out string
	var solve bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := puzzle.Generate(cfg)
			if err != nil {
				return err
			}
			grid := strings.Join(p.Rows, "\n") + "\n"

			if out != "" {
				if err := os.WriteFile(out, []byte(grid), 0o644); err != nil {
					return fmt.Errorf("write puzzle: %w", err)
				}
				a.logger.Info("puzzle written", "name", p.Name, "path", out)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), grid)
			}

			if !solve {
				return nil
			}
			return a.solveAndReport(cmd.Context(), cmd.OutOrStdout(), []puzzle.Puzzle{p})
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&cfg.Width, "width", 5, "Grid width")
	flags.IntVar(&cfg.Height, "height", 5, "Grid height")
	flags.IntVar(&cfg.Dirt, "dirt", 4, "Number of dirty cells")
	flags.IntVar(&cfg.Walls, "walls", 0, "Number of walls")
	flags.Int64Var(&cfg.Seed, "seed", 0, "Random seed (0 derives one from the size)")
	flags.StringVar(&out, "out", "", "Write the grid to this file instead of stdout")
	flags.BoolVar(&solve, "solve", false, "Solve the generated puzzle")
	return cmd
}
