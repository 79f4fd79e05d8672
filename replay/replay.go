// Package replay steps a solution from its start state and renders it.
package replay

import (
	"fmt"
	"io"
	"strings"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/rules"
	"github.com/brensch/vacuum/search"
)

// Frame is one state along a solution. Frame 0 is the start and has no move.
type Frame struct {
	Step      int
	Move      rules.Move
	HasMove   bool
	StepCost  int
	TotalCost int
	Weight    int
	Heuristic int
	Rows      []string
}

func frameOf(step int, s *game.State) Frame {
	return Frame{Step: step, Weight: s.Weight(), Heuristic: s.H(), Rows: s.Rows()}
}

// Frames applies moves to start and records every intermediate state.
func Frames(start *game.State, moves []rules.Move) ([]Frame, error) {
	frames := make([]Frame, 0, len(moves)+1)
	frames = append(frames, frameOf(0, start))

	state, total := start, 0
	for i, m := range moves {
		cost := rules.Cost(state, m)
		next, err := rules.Apply(state, m)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		total += cost
		state = next

		f := frameOf(i+1, state)
		f.Move, f.HasMove = m, true
		f.StepCost, f.TotalCost = cost, total
		frames = append(frames, f)
	}
	return frames, nil
}

func writeGrid(b *strings.Builder, f Frame) {
	for _, row := range f.Rows {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	fmt.Fprintf(b, "Weight: %d\n", f.Weight)
}

// Print writes a step-by-step report of a search result.
func Print(w io.Writer, frames []Frame, res search.Result) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to print")
	}

	var b strings.Builder
	b.WriteString("Initial State:\n")
	writeGrid(&b, frames[0])
	fmt.Fprintf(&b, "Heuristic: %d\n", frames[0].Heuristic)

	if !res.Solved {
		b.WriteString("This puzzle is not solvable.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("Solution:\n")
	names := make([]string, 0, len(frames)-1)
	for _, f := range frames[1:] {
		fmt.Fprintf(&b, "Step %d : %s\n", f.Step, f.Move)
		writeGrid(&b, f)
		fmt.Fprintf(&b, "Step cost: %d\n", f.StepCost)
		fmt.Fprintf(&b, "Heuristic: %d\n", f.Heuristic)
		names = append(names, f.Move.String())
	}
	last := frames[len(frames)-1]
	fmt.Fprintf(&b, "Solved in %d steps: %s\n", len(names), strings.Join(names, ","))
	fmt.Fprintf(&b, "Total path cost: %d\n", last.TotalCost)
	fmt.Fprintf(&b, "Number of generated states: %d\n", res.Generated)

	_, err := io.WriteString(w, b.String())
	return err
}
