package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/puzzle"
	"github.com/brensch/vacuum/replay"
	"github.com/brensch/vacuum/search"
	"github.com/brensch/vacuum/store"
)

// outcome is the solved form of one puzzle.
type outcome struct {
	name   string
	res    search.Result
	frames []replay.Frame
}

func newSolveCmd(a *app) *cobra.Command {
	var parquetDir string
	var jobs int

	cmd := &cobra.Command{
		Use:   "solve FILE...",
		Short: "Solve puzzle files and print each solution step by step",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("parquet-dir") {
				a.cfg.Output.ParquetDir = parquetDir
			}
			if cmd.Flags().Changed("jobs") {
				a.cfg.Search.Jobs = jobs
			}

			puzzles := make([]puzzle.Puzzle, 0, len(args))
			for _, path := range args {
				p, err := puzzle.LoadFile(path)
				if err != nil {
					return err
				}
				puzzles = append(puzzles, p)
			}
			return a.solveAndReport(cmd.Context(), cmd.OutOrStdout(), puzzles)
		},
	}
	cmd.Flags().StringVar(&parquetDir, "parquet-dir", "", "Archive solutions as parquet batches in this directory")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "Puzzles solved in parallel (default from config)")
	return cmd
}

// solveAll solves puzzles concurrently. Results keep the input order.
func (a *app) solveAll(ctx context.Context, puzzles []puzzle.Puzzle) ([]outcome, error) {
	solver, err := a.solver()
	if err != nil {
		return nil, err
	}

	out := make([]outcome, len(puzzles))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Search.Jobs))
	for i, p := range puzzles {
		g.Go(func() error {
			start, err := p.State()
			if err != nil {
				return err
			}

			solveCtx := ctx
			if a.cfg.Search.Timeout > 0 {
				var cancel context.CancelFunc
				solveCtx, cancel = context.WithTimeout(ctx, a.cfg.Search.Timeout)
				defer cancel()
			}
			res, err := solver.Solve(solveCtx, start)
			if err != nil {
				return fmt.Errorf("puzzle %s: %w", p.Name, err)
			}
			frames, err := replay.Frames(start, res.Moves)
			if err != nil {
				return fmt.Errorf("puzzle %s: %w", p.Name, err)
			}

			a.logger.Info("puzzle solved",
				"puzzle", p.Name,
				"solved", res.Solved,
				"moves", len(res.Moves),
				"cost", res.Cost,
				"generated", res.Generated,
				"duration", res.Duration,
			)
			out[i] = outcome{name: p.Name, res: res, frames: frames}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// solveAndReport prints every outcome and archives them when configured.
func (a *app) solveAndReport(ctx context.Context, w io.Writer, puzzles []puzzle.Puzzle) error {
	outcomes, err := a.solveAll(ctx, puzzles)
	if err != nil {
		return err
	}

	for i, o := range outcomes {
		if len(outcomes) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== %s ==\n", o.name)
		}
		if err := replay.Print(w, o.frames, o.res); err != nil {
			return err
		}
	}

	if a.cfg.Output.ParquetDir == "" {
		return nil
	}
	return a.archive(outcomes)
}

func (a *app) archive(outcomes []outcome) error {
	h, err := game.ParseHeuristic(a.cfg.Search.Heuristic)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	var rows []store.StepRow
	for _, o := range outcomes {
		rows = append(rows, store.RowsFor(runID, o.name, h, o.res, o.frames)...)
	}
	path, err := store.WriteBatchAtomic(a.cfg.Output.ParquetDir, rows)
	if err != nil {
		return err
	}
	a.logger.Info("archived solutions", "run_id", runID, "rows", len(rows), "path", path)
	return nil
}
