// Package server exposes the solver over HTTP and a websocket replay stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/replay"
	"github.com/brensch/vacuum/search"
	"github.com/brensch/vacuum/store"
)

const maxBodyBytes = 1 << 20

// Config controls request limits and the engine used per request.
type Config struct {
	Search       search.Config
	MaxCells     int            // 0 = unlimited
	SolveTimeout time.Duration  // 0 = none
	Archive      *store.Archive // nil disables archiving
}

// Server holds shared state for HTTP handlers.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	runID    string
	upgrader websocket.Upgrader
}

// NewServer creates a new Server.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		runID:  uuid.NewString(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes sets up all routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/solve", s.instrument("/api/solve", s.handleSolve))
	mux.HandleFunc("/api/stream", s.instrument("/api/stream", s.handleStream))
	mux.HandleFunc("/healthz", s.instrument("/healthz", s.handleHealth))
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// SolveRequest is the body of a solve call and the first stream message.
type SolveRequest struct {
	Name      string   `json:"name,omitempty"`
	Grid      []string `json:"grid"`
	Heuristic string   `json:"heuristic,omitempty"`
}

// SolveResponse summarises one search.
type SolveResponse struct {
	Solved      bool     `json:"solved"`
	Moves       []string `json:"moves"`
	Cost        int      `json:"cost"`
	FinalWeight int      `json:"final_weight"`
	Generated   int      `json:"generated"`
	Expanded    int      `json:"expanded"`
	DurationMs  int64    `json:"duration_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requestError carries the HTTP status a rejected request maps to.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(status int, format string, args ...any) error {
	return &requestError{status: status, err: fmt.Errorf(format, args...)}
}

func statusOf(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.status
	case errors.Is(err, search.ErrExpansionLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// prepare validates a request and builds its start state and solver.
func (s *Server) prepare(req SolveRequest) (*game.State, *search.Solver, error) {
	h := s.cfg.Search.Heuristic
	if req.Heuristic != "" {
		parsed, err := game.ParseHeuristic(req.Heuristic)
		if err != nil {
			return nil, nil, badRequest(http.StatusBadRequest, "%v", err)
		}
		h = parsed
	}
	cells := 0
	for _, row := range req.Grid {
		cells += len(row)
	}
	if s.cfg.MaxCells > 0 && cells > s.cfg.MaxCells {
		return nil, nil, badRequest(http.StatusRequestEntityTooLarge, "grid has %d cells, limit is %d", cells, s.cfg.MaxCells)
	}
	start, err := game.NewState(req.Grid, 1, game.WithStateHeuristic(h))
	if err != nil {
		return nil, nil, badRequest(http.StatusBadRequest, "%v", err)
	}

	cfg := s.cfg.Search
	cfg.Heuristic = h
	cfg.Logger = s.logger
	return start, search.New(cfg), nil
}

func (s *Server) solveContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.SolveTimeout > 0 {
		return context.WithTimeout(parent, s.cfg.SolveTimeout)
	}
	return context.WithCancel(parent)
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req SolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	start, solver, err := s.prepare(req)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	ctx, cancel := s.solveContext(r.Context())
	defer cancel()

	res, err := solver.Solve(ctx, start)
	if err != nil {
		s.logger.Warn("solve failed", "error", err, "generated", res.Generated)
		writeError(w, statusOf(err), err)
		return
	}
	if s.cfg.Archive != nil {
		frames, err := replay.Frames(start, res.Moves)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.archive(req.Name, solver.Config().Heuristic, res, frames)
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

// archive records a finished search. Failures are only logged.
func (s *Server) archive(name string, h game.Heuristic, res search.Result, frames []replay.Frame) {
	if s.cfg.Archive == nil {
		return
	}
	if name == "" {
		name = "request"
	}
	if err := s.cfg.Archive.Add(store.RowsFor(s.runID, name, h, res, frames)); err != nil {
		s.logger.Error("failed to archive solution", "error", err, "puzzle", name)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toResponse(res search.Result) SolveResponse {
	moves := make([]string, len(res.Moves))
	for i, m := range res.Moves {
		moves[i] = m.String()
	}
	return SolveResponse{
		Solved:      res.Solved,
		Moves:       moves,
		Cost:        res.Cost,
		FinalWeight: res.FinalWeight,
		Generated:   res.Generated,
		Expanded:    res.Expanded,
		DurationMs:  res.Duration.Milliseconds(),
	}
}

func withCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
