// Package search implements best-first (A*-style) search over vacuum
// puzzle states.
//
// The frontier is ordered by f = g + h with ties served first-in-first-out.
// By default popped entries are not re-validated against the record table,
// so a stale entry can still be expanded or accepted as the goal; set
// Config.ValidateOnPop to skip stale entries instead.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/rules"
)

// ErrExpansionLimit is returned when Config.MaxExpansions is reached before
// the search finishes.
var ErrExpansionLimit = errors.New("expansion limit reached")

// ErrInvalidConfig is returned by Solve when the solver was built with a
// configuration it cannot run.
var ErrInvalidConfig = errors.New("invalid search config")

// Config holds search configuration.
type Config struct {
	Heuristic game.Heuristic
	// ValidateOnPop skips popped entries whose f is above the best f on
	// record for their state.
	ValidateOnPop bool
	// MaxExpansions bounds the number of pops. Zero means unbounded.
	MaxExpansions int
	Logger        *slog.Logger
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{Heuristic: game.DefaultHeuristic}
}

// Result is the outcome of a search. Solved is false when the frontier was
// exhausted without reaching a goal.
type Result struct {
	Solved      bool
	Moves       []rules.Move
	Cost        int
	FinalWeight int
	// Generated counts the states constructed during this search, the start
	// state included.
	Generated int
	// Expanded counts frontier pops, the goal pop included.
	Expanded int
	Duration time.Duration
}

// Solver runs searches. It holds no per-search state and is safe for
// concurrent use.
type Solver struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a solver.
func New(cfg Config) *Solver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{cfg: cfg, logger: logger}
}

// Config returns the solver configuration.
func (s *Solver) Config() Config { return s.cfg }

type record struct {
	parent *game.State
	move   rules.Move
	f      int
}

// Solve searches from start for a state without dirt.
func (s *Solver) Solve(ctx context.Context, start *game.State) (Result, error) {
	if !s.cfg.Heuristic.Valid() {
		return Result{}, fmt.Errorf("%w: unknown heuristic %d", ErrInvalidConfig, int(s.cfg.Heuristic))
	}
	if s.cfg.MaxExpansions < 0 {
		return Result{}, fmt.Errorf("%w: max expansions %d is negative", ErrInvalidConfig, s.cfg.MaxExpansions)
	}

	ctx, span := tracer.Start(ctx, "search.Solve", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	begin := time.Now()
	res, err := s.run(ctx, start)
	res.Duration = time.Since(begin)

	outcome := "solved"
	switch {
	case errors.Is(err, ErrExpansionLimit):
		outcome = "limit"
	case err != nil:
		outcome = "canceled"
	case !res.Solved:
		outcome = "unsolvable"
	}

	searchRuns.WithLabelValues(outcome).Inc()
	statesGenerated.Add(float64(res.Generated))
	expansions.Add(float64(res.Expanded))
	searchDuration.WithLabelValues(s.cfg.Heuristic.String()).Observe(res.Duration.Seconds())

	span.SetAttributes(
		attribute.String("search.heuristic", s.cfg.Heuristic.String()),
		attribute.Int("search.width", start.Width()),
		attribute.Int("search.height", start.Height()),
		attribute.Int("search.generated", res.Generated),
		attribute.Int("search.expanded", res.Expanded),
		attribute.String("search.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	s.logger.Debug("search finished",
		"outcome", outcome,
		"heuristic", s.cfg.Heuristic.String(),
		"moves", len(res.Moves),
		"cost", res.Cost,
		"generated", res.Generated,
		"expanded", res.Expanded,
		"duration", res.Duration,
	)
	return res, err
}

func (s *Solver) run(ctx context.Context, start *game.State) (Result, error) {
	if start.Heuristic() != s.cfg.Heuristic {
		start = start.WithHeuristic(s.cfg.Heuristic)
	}

	var res Result
	res.Generated = 1

	open := &frontier{}
	startF := start.H()
	open.push(start, startF)
	records := map[game.Key]record{start.Key(): {f: startF}}

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if s.cfg.MaxExpansions > 0 && res.Expanded >= s.cfg.MaxExpansions {
			return res, ErrExpansionLimit
		}

		item := open.pop()
		current := item.state
		if s.cfg.ValidateOnPop && item.f > records[current.Key()].f {
			continue
		}
		res.Expanded++

		if current.IsGoal() {
			res.Solved = true
			res.Moves, res.Cost = reconstruct(records, current)
			res.FinalWeight = current.Weight()
			return res, nil
		}

		g := item.f - current.H()
		for _, succ := range rules.Successors(current) {
			res.Generated++
			f := g + succ.Cost + succ.State.H()
			key := succ.State.Key()
			if rec, seen := records[key]; seen && f >= rec.f {
				continue
			}
			records[key] = record{parent: current, move: succ.Move, f: f}
			open.push(succ.State, f)
		}
	}

	return res, nil
}

// reconstruct walks predecessor links from goal back to the start and
// returns the moves in order with their total cost.
func reconstruct(records map[game.Key]record, goal *game.State) ([]rules.Move, int) {
	moves := []rules.Move{}
	cost := 0
	for cur := goal; ; {
		rec := records[cur.Key()]
		if rec.parent == nil {
			break
		}
		moves = append(moves, rec.move)
		cost += rules.Cost(rec.parent, rec.move)
		cur = rec.parent
	}
	slices.Reverse(moves)
	return moves, cost
}
