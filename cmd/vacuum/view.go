package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brensch/vacuum/puzzle"
	"github.com/brensch/vacuum/tui"
)

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Solve a puzzle and replay the solution interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := puzzle.LoadFile(args[0])
			if err != nil {
				return err
			}
			outcomes, err := a.solveAll(cmd.Context(), []puzzle.Puzzle{p})
			if err != nil {
				return err
			}
			o := outcomes[0]

			title := fmt.Sprintf("%s  (%s)", o.name, a.cfg.Search.Heuristic)
			if !o.res.Solved {
				title += "  not solvable"
			}
			return tui.Run(title, o.frames)
		},
	}
}
