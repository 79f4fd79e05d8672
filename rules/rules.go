// Package rules implements the action model: which moves are legal from a
// state, what they cost and which state they lead to.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brensch/vacuum/game"
)

// ErrIllegalMove is returned when a move is applied that is not legal from
// the given state. It always indicates a caller bug.
var ErrIllegalMove = errors.New("illegal move")

// Move is a unit step expressed as a delta.
type Move struct {
	DX int
	DY int
}

var (
	Left  = Move{DX: -1, DY: 0}
	Right = Move{DX: 1, DY: 0}
	Up    = Move{DX: 0, DY: -1}
	Down  = Move{DX: 0, DY: 1}
)

// Moves is the fixed order in which moves are generated. Search tie-breaks
// depend on it.
var Moves = [4]Move{Left, Right, Up, Down}

func (m Move) String() string {
	switch m {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("move(%d,%d)", m.DX, m.DY)
}

// ParseMove maps "left", "right", "up" or "down" to its Move.
func ParseMove(name string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Move{}, fmt.Errorf("unknown move %q", name)
}

// IsLegal reports whether m keeps the agent on the board and off walls.
func IsLegal(state *game.State, m Move) bool {
	if !isUnit(m) {
		return false
	}
	c, err := state.CellAt(state.Agent().Add(m.DX, m.DY))
	return err == nil && c != game.Wall
}

func isUnit(m Move) bool {
	return m == Left || m == Right || m == Up || m == Down
}

// LegalMoves returns the legal moves from state in Moves order.
func LegalMoves(state *game.State) []Move {
	moves := make([]Move, 0, len(Moves))
	for _, m := range Moves {
		if IsLegal(state, m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// Cost is the price of taking m from state: the current weight, whatever
// the destination holds.
func Cost(state *game.State, m Move) int {
	return state.Weight()
}

// Apply returns the state reached by taking m.
func Apply(state *game.State, m Move) (*game.State, error) {
	if !IsLegal(state, m) {
		return nil, fmt.Errorf("%w: %s from (%d,%d)", ErrIllegalMove, m, state.Agent().X, state.Agent().Y)
	}
	return state.Next(state.Agent().Add(m.DX, m.DY))
}

// Successor is a legal move together with the state it produces.
type Successor struct {
	Move  Move
	State *game.State
	Cost  int
}

// Successors expands every legal move from state, in Moves order.
func Successors(state *game.State) []Successor {
	out := make([]Successor, 0, len(Moves))
	for _, m := range Moves {
		next, err := state.Next(state.Agent().Add(m.DX, m.DY))
		if err != nil {
			continue
		}
		out = append(out, Successor{Move: m, State: next, Cost: Cost(state, m)})
	}
	return out
}

// ApplyAll applies moves in order and returns the final state and the total
// path cost.
func ApplyAll(state *game.State, moves []Move) (*game.State, int, error) {
	total := 0
	for i, m := range moves {
		total += Cost(state, m)
		next, err := Apply(state, m)
		if err != nil {
			return nil, 0, fmt.Errorf("step %d: %w", i+1, err)
		}
		state = next
	}
	return state, total, nil
}
