// heuristic.go implements the remaining-cost estimators.

package game

import (
	"fmt"
	"strings"
)

// Heuristic selects how the remaining cost of a state is estimated.
type Heuristic int

const (
	// HeuristicNone always estimates zero (uniform-cost search).
	HeuristicNone Heuristic = iota
	// HeuristicNearest is the distance to the nearest dirt cell.
	HeuristicNearest
	// HeuristicFarthest is the distance to the farthest dirt cell.
	HeuristicFarthest
	// HeuristicManhattanSum is the total Manhattan distance to every dirt
	// cell. It is sometimes called the mean strategy, but it is never
	// divided by the dirt count.
	HeuristicManhattanSum
	// HeuristicCombined is the total distance to every dirt cell plus the
	// current weight plus the number of dirt cells. It can overestimate, so
	// searches using it are not guaranteed to find the cheapest route.
	HeuristicCombined
)

// DefaultHeuristic is the estimator used when none is selected.
const DefaultHeuristic = HeuristicCombined

var heuristicNames = map[Heuristic]string{
	HeuristicNone:         "none",
	HeuristicNearest:      "nearest",
	HeuristicFarthest:     "farthest",
	HeuristicManhattanSum: "manhattan-sum",
	HeuristicCombined:     "combined",
}

// Heuristics lists every estimator in declaration order.
func Heuristics() []Heuristic {
	return []Heuristic{HeuristicNone, HeuristicNearest, HeuristicFarthest, HeuristicManhattanSum, HeuristicCombined}
}

func (h Heuristic) Valid() bool {
	_, ok := heuristicNames[h]
	return ok
}

func (h Heuristic) String() string {
	if name, ok := heuristicNames[h]; ok {
		return name
	}
	return fmt.Sprintf("heuristic(%d)", int(h))
}

// ParseHeuristic maps a name such as "combined" to its Heuristic.
// An empty name selects DefaultHeuristic.
func ParseHeuristic(name string) (Heuristic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return DefaultHeuristic, nil
	case "mean-manhattan", "mean":
		return HeuristicManhattanSum, nil
	}
	for h, n := range heuristicNames {
		if n == name {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown heuristic %q", name)
}

// MarshalText lets a Heuristic appear by name in YAML and JSON.
func (h Heuristic) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("unknown heuristic %d", int(h))
	}
	return []byte(h.String()), nil
}

func (h *Heuristic) UnmarshalText(text []byte) error {
	parsed, err := ParseHeuristic(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Estimate computes the heuristic value of a board. It reads nothing but the
// cells, the agent position and the weight, and returns 0 when no dirt is left
// or h is not a known heuristic.
func Estimate(h Heuristic, cells string, width int, agent Point, weight int) int {
	if h == HeuristicNone {
		return 0
	}

	count, sum := 0, 0
	nearest, farthest := -1, -1
	for i := 0; i < len(cells); i++ {
		if Cell(cells[i]) != Dirt {
			continue
		}
		d := agent.Manhattan(Point{X: i % width, Y: i / width})
		count++
		sum += d
		if nearest < 0 || d < nearest {
			nearest = d
		}
		if d > farthest {
			farthest = d
		}
	}
	if count == 0 {
		return 0
	}

	switch h {
	case HeuristicNearest:
		return nearest
	case HeuristicFarthest:
		return farthest
	case HeuristicManhattanSum:
		return sum
	case HeuristicCombined:
		return sum + weight + count
	}
	return 0
}
