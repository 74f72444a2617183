package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/easel/internal/board"
	"github.com/haasonsaas/easel/internal/observability"
	"github.com/haasonsaas/easel/internal/translate"
	"github.com/haasonsaas/easel/pkg/actions"
)

// commandRequest is the /ai-command request body.
type commandRequest struct {
	Command       string          `json:"command"`
	CanvasContext json.RawMessage `json:"canvasContext"`
}

// commandResponse is the /ai-command success envelope.
type commandResponse struct {
	Actions   any    `json:"actions"`
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
}

// errorResponse is the shared error envelope. Details carries upstream
// diagnostics on 500s and is omitted otherwise.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// handleAICommand implements the translation endpoint. The contract is fixed:
// OPTIONS always answers 200 with no body, non-POST gets 405, a blank command
// gets 400 without touching the upstream, and provider failures surface as 500
// with the raw diagnostics in details.
func (s *Server) handleAICommand(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Command is required"})
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Command is required"})
		return
	}

	ctx := observability.WithProvider(r.Context(), s.translator.Name())
	ctx, span := s.tracer.TraceTranslation(ctx, s.translator.Name(), "")
	defer span.End()

	start := time.Now()
	result, err := s.translator.Translate(ctx, translate.Request{
		Command:       req.Command,
		CanvasContext: req.CanvasContext,
	})
	s.metrics.RecordTranslation(s.translator.Name(), time.Since(start))
	if err != nil {
		s.tracer.RecordError(span, err)
		s.writeTranslateError(ctx, w, err)
		return
	}

	s.logger.Info(ctx, "command translated",
		"actions", len(result.Actions),
		"model", result.Model,
	)
	writeJSON(w, http.StatusOK, commandResponse{
		Actions:   actionList(result.Actions),
		Command:   result.Command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleBoards serves the board collection: POST creates, GET lists.
func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	if s.manager == nil {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		s.createBoard(w, r)
	case http.MethodGet:
		s.listBoards(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
}

// handleBoardSubtree routes /boards/{id}, /boards/{id}/commands, and
// /boards/{id}/stream.
func (s *Server) handleBoardSubtree(w http.ResponseWriter, r *http.Request) {
	if s.manager == nil {
		http.NotFound(w, r)
		return
	}
	id, rest, ok := splitBoardPath(r.URL.Path)
	if !ok || id == "" {
		http.NotFound(w, r)
		return
	}

	ctx := observability.WithBoardID(r.Context(), id)
	r = r.WithContext(ctx)

	switch rest {
	case "":
		s.getBoard(w, r, id)
	case "commands":
		s.runBoardCommand(w, r, id)
	case "stream":
		s.handleStream(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) createBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		req.Name = "Untitled board"
	}

	b := &board.Board{ID: uuid.NewString(), Name: req.Name}
	if err := s.manager.Store().CreateBoard(r.Context(), b); err != nil {
		s.logger.Error(r.Context(), "create board failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create board"})
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) listBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.manager.Store().ListBoards(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list boards failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to list boards"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Boards []*board.Board `json:"boards"`
	}{boards})
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	b, err := s.manager.Store().GetBoard(r.Context(), id)
	if errors.Is(err, board.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Board not found"})
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "get board failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to load board"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// runBoardCommand translates and executes a command against one board. Shares
// the /ai-command error envelope.
func (s *Server) runBoardCommand(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Command is required"})
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Command is required"})
		return
	}

	ctx := observability.WithProvider(r.Context(), s.translator.Name())
	ctx, span := s.tracer.TraceTranslation(ctx, s.translator.Name(), "")
	defer span.End()

	start := time.Now()
	outcome, err := s.manager.RunCommand(ctx, id, req.Command, s.translator)
	s.metrics.RecordTranslation(s.translator.Name(), time.Since(start))
	if errors.Is(err, board.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Board not found"})
		return
	}
	if err != nil {
		s.tracer.RecordError(span, err)
		s.writeTranslateError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Actions   any          `json:"actions"`
		Command   string       `json:"command"`
		Timestamp string       `json:"timestamp"`
		Board     *board.Board `json:"board"`
		Created   []string     `json:"created,omitempty"`
		Skipped   int          `json:"skipped,omitempty"`
	}{
		Actions:   actionList(outcome.Translation.Actions),
		Command:   outcome.Translation.Command,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Board:     outcome.Board,
		Created:   outcome.Applied.Created,
		Skipped:   outcome.Applied.Skipped,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writeTranslateError maps a translation failure onto the error contract:
// blank commands are 400, everything upstream is 500 with diagnostics.
func (s *Server) writeTranslateError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, translate.ErrEmptyCommand) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Command is required"})
		return
	}

	s.logger.Error(ctx, "command translation failed", "error", err)

	resp := errorResponse{Error: "Failed to process AI command"}
	if upErr, ok := translate.GetUpstreamError(err); ok {
		resp.Details = upErr.Details()
	} else {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// actionList keeps an empty result serializing as [] rather than null; an
// unrecognized command is a valid empty list, not an absent one.
func actionList(list []actions.Action) []actions.Action {
	if list == nil {
		return []actions.Action{}
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// splitBoardPath parses /boards/{id}[/{rest}] into its id and remainder.
func splitBoardPath(path string) (id, rest string, ok bool) {
	trimmed, found := strings.CutPrefix(path, "/boards/")
	if !found {
		return "", "", false
	}
	id, rest, _ = strings.Cut(trimmed, "/")
	return id, rest, true
}
