// Package game defines the core state types for the vacuum cleaner puzzle.
//
// A State is an immutable snapshot of the board, the agent position and the
// accumulated weight the agent is carrying. Every transition builds a brand
// new State, so states can be shared freely between the search frontier and
// its bookkeeping tables.
package game

import (
	"errors"
	"fmt"
	"strings"
)

// Cell is a single board symbol.
type Cell byte

const (
	Empty Cell = '.'
	Wall  Cell = '#'
	Dirt  Cell = '*'
	Agent Cell = '@'
)

var (
	// ErrInvalidState is returned when a grid cannot form a valid state,
	// most commonly because no agent symbol is present.
	ErrInvalidState = errors.New("invalid state")
	// ErrOutOfBounds is returned when a cell outside the grid is read.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrBadStep is returned by Next when dest is a wall or is not next to
	// the agent.
	ErrBadStep = errors.New("bad step")
)

// Valid reports whether c is one of the recognised board symbols.
func (c Cell) Valid() bool {
	switch c {
	case Empty, Wall, Dirt, Agent:
		return true
	}
	return false
}

// Point is a board coordinate.
// (0,0) is the top-left cell; X is the column and Y grows downwards.
type Point struct {
	X int
	Y int
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns the L1 distance between p and q.
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Key identifies a state for equality and hashing. The agent position is
// implied by the cells, so it is not part of the key.
type Key struct {
	Cells  string
	Weight int
}

// State is an immutable board snapshot.
type State struct {
	cells     string
	width     int
	height    int
	agent     Point
	weight    int
	h         int
	heuristic Heuristic
}

type stateOptions struct {
	agent     *Point
	heuristic Heuristic
}

// StateOption customises NewState.
type StateOption func(*stateOptions)

// WithAgent supplies the agent position so the grid is not scanned for it.
func WithAgent(p Point) StateOption {
	return func(o *stateOptions) { o.agent = &p }
}

// WithStateHeuristic selects the estimator used for the cached heuristic value.
func WithStateHeuristic(h Heuristic) StateOption {
	return func(o *stateOptions) { o.heuristic = h }
}

// NewState builds a state from grid rows and the accumulated weight.
// When no agent position is supplied the first '@' in row-major order is used.
func NewState(rows []string, weight int, opts ...StateOption) (*State, error) {
	o := stateOptions{heuristic: DefaultHeuristic}
	for _, opt := range opts {
		opt(&o)
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidState)
	}
	if weight < 1 {
		return nil, fmt.Errorf("%w: weight %d must be at least 1", ErrInvalidState, weight)
	}
	if !o.heuristic.Valid() {
		return nil, fmt.Errorf("%w: unknown heuristic %d", ErrInvalidState, int(o.heuristic))
	}

	width := len(rows[0])
	var b strings.Builder
	b.Grow(width * len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d", ErrInvalidState, y, len(row), width)
		}
		for x := 0; x < len(row); x++ {
			if !Cell(row[x]).Valid() {
				return nil, fmt.Errorf("%w: unknown symbol %q at (%d,%d)", ErrInvalidState, row[x], x, y)
			}
		}
		b.WriteString(row)
	}
	cells := b.String()

	var agent Point
	if o.agent != nil {
		agent = *o.agent
		if agent.X < 0 || agent.X >= width || agent.Y < 0 || agent.Y >= len(rows) ||
			Cell(cells[agent.Y*width+agent.X]) != Agent {
			return nil, fmt.Errorf("%w: no agent at (%d,%d)", ErrInvalidState, agent.X, agent.Y)
		}
	} else {
		i := strings.IndexByte(cells, byte(Agent))
		if i < 0 {
			return nil, fmt.Errorf("%w: no agent found", ErrInvalidState)
		}
		agent = Point{X: i % width, Y: i / width}
	}

	return newState(cells, width, agent, weight, o.heuristic), nil
}

// newState assembles a state and computes its heuristic value once.
func newState(cells string, width int, agent Point, weight int, h Heuristic) *State {
	return &State{
		cells:     cells,
		width:     width,
		height:    len(cells) / width,
		agent:     agent,
		weight:    weight,
		heuristic: h,
		h:         Estimate(h, cells, width, agent, weight),
	}
}

// Next returns the state reached by moving the agent to dest. The old agent
// cell becomes empty and the weight grows by one if dest held dirt.
// dest must be an in-bounds, non-wall cell one step from the agent.
func (s *State) Next(dest Point) (*State, error) {
	c, err := s.CellAt(dest)
	if err != nil {
		return nil, err
	}
	if c == Wall {
		return nil, fmt.Errorf("%w: (%d,%d) is a wall", ErrBadStep, dest.X, dest.Y)
	}
	if s.agent.Manhattan(dest) != 1 {
		return nil, fmt.Errorf("%w: (%d,%d) is not next to the agent", ErrBadStep, dest.X, dest.Y)
	}

	buf := []byte(s.cells)
	buf[s.index(s.agent)] = byte(Empty)
	weight := s.weight
	if c == Dirt {
		weight++
	}
	buf[s.index(dest)] = byte(Agent)
	return newState(string(buf), s.width, dest, weight, s.heuristic), nil
}

// WithHeuristic returns the same board re-estimated with h.
func (s *State) WithHeuristic(h Heuristic) *State {
	return newState(s.cells, s.width, s.agent, s.weight, h)
}

func (s *State) index(p Point) int { return p.Y*s.width + p.X }

func (s *State) Width() int           { return s.width }
func (s *State) Height() int          { return s.height }
func (s *State) Agent() Point         { return s.agent }
func (s *State) Weight() int          { return s.weight }
func (s *State) H() int               { return s.h }
func (s *State) Heuristic() Heuristic { return s.heuristic }

// Key returns the equality key of the state.
func (s *State) Key() Key {
	return Key{Cells: s.cells, Weight: s.weight}
}

// Equal reports whether two states have the same grid and weight.
func (s *State) Equal(o *State) bool {
	return s.Key() == o.Key()
}

// InBounds reports whether p lies on the board.
func (s *State) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.width && p.Y >= 0 && p.Y < s.height
}

// CellAt returns the symbol at p.
func (s *State) CellAt(p Point) (Cell, error) {
	if !s.InBounds(p) {
		return 0, fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrOutOfBounds, p.X, p.Y, s.width, s.height)
	}
	return Cell(s.cells[s.index(p)]), nil
}

// DirtCount returns the number of dirt cells left.
func (s *State) DirtCount() int {
	return strings.Count(s.cells, string(rune(Dirt)))
}

// IsGoal reports whether no dirt remains.
func (s *State) IsGoal() bool {
	return strings.IndexByte(s.cells, byte(Dirt)) < 0
}

// Rows returns the grid as one string per row.
func (s *State) Rows() []string {
	rows := make([]string, s.height)
	for y := range rows {
		rows[y] = s.cells[y*s.width : (y+1)*s.width]
	}
	return rows
}

func (s *State) String() string {
	return strings.Join(s.Rows(), "\n") + fmt.Sprintf("\nWeight: %d", s.weight)
}
