package search

import (
	"context"
	"strings"
	"testing"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustState(t testing.TB, rows ...string) *game.State {
	t.Helper()
	s, err := game.NewState(rows, 1)
	require.NoError(t, err)
	return s
}

func moveNames(moves []rules.Move) string {
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	return strings.Join(names, ",")
}

// checkSolution replays the moves and confirms they clear the board at the
// reported cost.
func checkSolution(t *testing.T, start *game.State, res Result) {
	t.Helper()
	final, cost, err := rules.ApplyAll(start, res.Moves)
	require.NoError(t, err)
	assert.True(t, final.IsGoal(), "final state still dirty:\n%s", final)
	assert.Equal(t, res.Cost, cost)
	assert.Equal(t, res.FinalWeight, final.Weight())
}

func TestSolve_AlreadyClean(t *testing.T) {
	start := mustState(t, "@..", ".#.")
	require.True(t, start.IsGoal())

	res, err := New(DefaultConfig()).Solve(context.Background(), start)
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.Empty(t, res.Moves)
	assert.NotNil(t, res.Moves)
	assert.Equal(t, 0, res.Cost)
	assert.Equal(t, 1, res.Generated)
	assert.Equal(t, 1, res.Expanded)
}

func TestSolve_SingleStep(t *testing.T) {
	start := mustState(t, "@*.")
	res, err := New(DefaultConfig()).Solve(context.Background(), start)
	require.NoError(t, err)

	require.True(t, res.Solved)
	assert.Equal(t, []rules.Move{rules.Right}, res.Moves)
	assert.Equal(t, 1, res.Cost)
	assert.Equal(t, 2, res.FinalWeight)
	checkSolution(t, start, res)
}

func TestSolve_BlockedByWall(t *testing.T) {
	start := mustState(t, "@#*")
	res, err := New(DefaultConfig()).Solve(context.Background(), start)
	require.NoError(t, err, "unsolvable is a result, not an error")
	assert.False(t, res.Solved)
	assert.Nil(t, res.Moves)
	assert.Equal(t, 1, res.Expanded)
}

func TestSolve_TwoCorners(t *testing.T) {
	start := mustState(t,
		"*.*",
		".@.",
		"...",
	)
	res, err := New(DefaultConfig()).Solve(context.Background(), start)
	require.NoError(t, err)

	require.True(t, res.Solved)
	assert.Len(t, res.Moves, 4)
	assert.Equal(t, "up,left,right,right", moveNames(res.Moves))
	// Two moves at weight 1, then two at weight 2 after the first pickup.
	assert.Equal(t, 1+1+2+2, res.Cost)
	assert.Equal(t, 3, res.FinalWeight)
	assert.Equal(t, 21, res.Generated)
	assert.Equal(t, 8, res.Expanded)
	checkSolution(t, start, res)
}

func TestSolve_KnownPuzzles(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		moves string
		cost  int
	}{
		{
			name:  "diagonal corners",
			rows:  []string{"*..", ".@.", "..*"},
			moves: "left,up,right,right,down,down",
			cost:  10,
		},
		{
			name:  "five dirt around a wall",
			rows:  []string{"*.*.*", "..@..", "*.#.*"},
			moves: "left,left,down,up,up,right,right,right,right,down,down",
			cost:  31,
		},
		{
			name:  "corridors",
			rows:  []string{".*..", "#@#*", "*..."},
			moves: "down,left,right,up,up,right,right,down",
			cost:  17,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := mustState(t, tt.rows...)
			res, err := New(DefaultConfig()).Solve(context.Background(), start)
			require.NoError(t, err)
			require.True(t, res.Solved)
			assert.Equal(t, tt.moves, moveNames(res.Moves))
			assert.Equal(t, tt.cost, res.Cost)
			checkSolution(t, start, res)
		})
	}
}

func TestSolve_EveryHeuristicClearsTheBoard(t *testing.T) {
	rows := []string{"*.*.*", "..@..", "*.#.*"}
	for _, h := range game.Heuristics() {
		t.Run(h.String(), func(t *testing.T) {
			start := mustState(t, rows...)
			res, err := New(Config{Heuristic: h}).Solve(context.Background(), start)
			require.NoError(t, err)
			require.True(t, res.Solved)
			assert.Equal(t, 31, res.Cost)
			checkSolution(t, start, res)
		})
	}
}

func TestSolve_UsesConfiguredHeuristic(t *testing.T) {
	start := mustState(t, "*.*", ".@.", "...")

	nearest, err := New(Config{Heuristic: game.HeuristicNearest}).Solve(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, "left,up,right,right", moveNames(nearest.Moves))
	assert.Equal(t, 31, nearest.Generated)
	assert.Equal(t, 12, nearest.Expanded)

	none, err := New(Config{Heuristic: game.HeuristicNone}).Solve(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, 6, none.Cost)
	assert.Equal(t, 14, none.Expanded)
}

func TestSolve_ValidateOnPop(t *testing.T) {
	start := mustState(t, "*.*.*", "..@..", "*.#.*")

	lazy, err := New(DefaultConfig()).Solve(context.Background(), start)
	require.NoError(t, err)
	strict, err := New(Config{Heuristic: game.HeuristicCombined, ValidateOnPop: true}).Solve(context.Background(), start)
	require.NoError(t, err)

	assert.Equal(t, lazy.Moves, strict.Moves)
	assert.Equal(t, 479, lazy.Generated)
	assert.Equal(t, 169, lazy.Expanded)
	assert.Equal(t, 467, strict.Generated)
	assert.Equal(t, 165, strict.Expanded)
	checkSolution(t, start, strict)
}

func TestSolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Solve(ctx, mustState(t, "@*"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSolve_ExpansionLimit(t *testing.T) {
	start := mustState(t, "*.*.*", "..@..", "*.#.*")
	res, err := New(Config{Heuristic: game.HeuristicCombined, MaxExpansions: 10}).Solve(context.Background(), start)
	require.ErrorIs(t, err, ErrExpansionLimit)
	assert.False(t, res.Solved)
	assert.Equal(t, 10, res.Expanded)
}

func TestSolve_InvalidConfig(t *testing.T) {
	start := mustState(t, "@*.")
	for name, cfg := range map[string]Config{
		"unknown heuristic": {Heuristic: game.Heuristic(99)},
		"negative limit":    {Heuristic: game.HeuristicCombined, MaxExpansions: -1},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := New(cfg).Solve(context.Background(), start)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.False(t, res.Solved)
			assert.Equal(t, 0, res.Generated)
		})
	}
}

func TestSolve_Concurrent(t *testing.T) {
	solver := New(DefaultConfig())
	start := mustState(t, "*..", ".@.", "..*")

	results := make(chan Result, 8)
	for i := 0; i < cap(results); i++ {
		go func() {
			res, err := solver.Solve(context.Background(), start)
			if err != nil {
				res = Result{}
			}
			results <- res
		}()
	}
	for i := 0; i < cap(results); i++ {
		res := <-results
		assert.True(t, res.Solved)
		assert.Equal(t, 10, res.Cost)
	}
}

func BenchmarkSolve(b *testing.B) {
	start := mustState(b, "*.*.*", "..@..", "*.#.*")
	solver := New(DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := solver.Solve(context.Background(), start); err != nil {
			b.Fatalf("Solve failed: %v", err)
		}
	}
}
