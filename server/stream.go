package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/brensch/vacuum/replay"
)

const (
	streamReadTimeout  = 10 * time.Second
	streamWriteTimeout = 10 * time.Second
)

// Event is one message on the replay stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Stream event types, in the order they are sent.
const (
	EventPuzzleInfo  = "puzzle_info"
	EventFrame       = "frame"
	EventSolutionEnd = "solution_end"
	EventError       = "error"
)

// PuzzleInfo opens a stream.
type PuzzleInfo struct {
	SessionID string `json:"session_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Dirt      int    `json:"dirt"`
	Weight    int    `json:"weight"`
	Heuristic string `json:"heuristic"`
}

// FrameData is one replay step.
type FrameData struct {
	Step      int      `json:"step"`
	Move      string   `json:"move,omitempty"`
	StepCost  int      `json:"step_cost"`
	TotalCost int      `json:"total_cost"`
	Weight    int      `json:"weight"`
	Heuristic int      `json:"heuristic"`
	Grid      []string `json:"grid"`
}

// ErrorData ends a failed stream.
type ErrorData struct {
	Message string `json:"message"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := uuid.NewString()
	logger := s.logger.With("session", session)

	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	var req SolveRequest
	if err := conn.ReadJSON(&req); err != nil {
		logger.Warn("failed to read stream request", "error", err)
		s.finish(conn, EventError, ErrorData{Message: fmt.Sprintf("read request: %v", err)})
		return
	}

	start, solver, err := s.prepare(req)
	if err != nil {
		s.finish(conn, EventError, ErrorData{Message: err.Error()})
		return
	}

	info := PuzzleInfo{
		SessionID: session,
		Width:     start.Width(),
		Height:    start.Height(),
		Dirt:      start.DirtCount(),
		Weight:    start.Weight(),
		Heuristic: solver.Config().Heuristic.String(),
	}
	if err := s.send(conn, EventPuzzleInfo, info); err != nil {
		logger.Warn("stream write failed", "error", err)
		return
	}

	ctx, cancel := s.solveContext(r.Context())
	defer cancel()

	res, err := solver.Solve(ctx, start)
	if err != nil {
		s.finish(conn, EventError, ErrorData{Message: err.Error()})
		return
	}

	frames, err := replay.Frames(start, res.Moves)
	if err != nil {
		s.finish(conn, EventError, ErrorData{Message: err.Error()})
		return
	}
	for _, f := range frames {
		if err := s.send(conn, EventFrame, toFrameData(f)); err != nil {
			logger.Warn("stream write failed", "error", err, "step", f.Step)
			return
		}
		streamFrames.Inc()
	}

	name := req.Name
	if name == "" {
		name = session
	}
	s.archive(name, solver.Config().Heuristic, res, frames)

	logger.Info("stream complete", "solved", res.Solved, "frames", len(frames), "cost", res.Cost)
	s.finish(conn, EventSolutionEnd, toResponse(res))
}

func toFrameData(f replay.Frame) FrameData {
	fd := FrameData{
		Step:      f.Step,
		StepCost:  f.StepCost,
		TotalCost: f.TotalCost,
		Weight:    f.Weight,
		Heuristic: f.Heuristic,
		Grid:      f.Rows,
	}
	if f.HasMove {
		fd.Move = f.Move.String()
	}
	return fd
}

func (s *Server) send(conn *websocket.Conn, typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(Event{Type: typ, Data: data})
}

// finish sends the last event and a normal close frame.
func (s *Server) finish(conn *websocket.Conn, typ string, v any) {
	if err := s.send(conn, typ, v); err != nil {
		s.logger.Warn("stream write failed", "error", err, "event", typ)
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
