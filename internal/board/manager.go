package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/easel/internal/translate"
)

// recentCommandLimit caps how much history goes into the canvas context sent
// to the translator.
const recentCommandLimit = 10

// Manager bundles the store, executor, hub, and metrics behind the one
// operation the HTTP layer needs: run a command against a board.
type Manager struct {
	store    Store
	executor *Executor
	hub      *Hub
	metrics  *Metrics
	logger   *slog.Logger
}

// NewManager wires a manager. hub and metrics may be nil; broadcasting and
// recording become no-ops.
func NewManager(store Store, hub *Hub, metrics *Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    store,
		executor: NewExecutor(logger),
		hub:      hub,
		metrics:  metrics,
		logger:   logger.With("component", "board"),
	}
}

// Store exposes the underlying store for the HTTP handlers.
func (m *Manager) Store() Store { return m.store }

// Hub exposes the event hub for the stream handler.
func (m *Manager) Hub() *Hub { return m.hub }

// Metrics exposes the metrics sink for the stream handler.
func (m *Manager) Metrics() *Metrics { return m.metrics }

// CommandOutcome is the result of running one command against a board.
type CommandOutcome struct {
	Translation *translate.Result
	Applied     *ApplyResult
	Board       *Board
}

// canvasContext is the board snapshot embedded in the translation prompt.
type canvasContext struct {
	Shapes         []*Shape `json:"shapes"`
	RecentCommands []string `json:"recent_commands,omitempty"`
}

// RunCommand snapshots the board, translates the command with the board as
// context, applies the returned actions, persists the mutated shapes, records
// history, and broadcasts the change to stream subscribers.
func (m *Manager) RunCommand(ctx context.Context, boardID, command string, tr translate.Translator) (*CommandOutcome, error) {
	b, err := m.store.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	snapshot, err := m.buildCanvasContext(ctx, b)
	if err != nil {
		return nil, err
	}

	result, err := tr.Translate(ctx, translate.Request{Command: command, CanvasContext: snapshot})
	if err != nil {
		m.metrics.RecordCommand(tr.Name(), "error")
		return nil, err
	}
	m.metrics.RecordCommand(result.Provider, "ok")

	applied := m.executor.Apply(b, result.Actions)
	for _, mut := range applied.Mutations {
		m.metrics.RecordAction(string(mut.Type))
	}
	m.metrics.RecordSkipped(applied.Skipped)

	for _, shape := range b.Shapes {
		if err := m.store.UpsertShape(ctx, b.ID, shape); err != nil {
			return nil, fmt.Errorf("board: persist shape %s: %w", shape.ID, err)
		}
	}

	record := &CommandRecord{
		BoardID:     b.ID,
		Command:     command,
		Provider:    result.Provider,
		ActionCount: len(result.Actions),
	}
	if err := m.store.AppendCommand(ctx, record); err != nil {
		return nil, fmt.Errorf("board: record command: %w", err)
	}

	m.broadcast(b, command, applied)

	m.logger.Info("command applied",
		"board_id", b.ID,
		"provider", result.Provider,
		"actions", len(result.Actions),
		"created", len(applied.Created),
		"skipped", applied.Skipped,
	)

	return &CommandOutcome{Translation: result, Applied: applied, Board: b}, nil
}

func (m *Manager) buildCanvasContext(ctx context.Context, b *Board) (json.RawMessage, error) {
	records, err := m.store.ListCommands(ctx, b.ID, CommandListOptions{Limit: recentCommandLimit})
	if err != nil {
		return nil, fmt.Errorf("board: list history: %w", err)
	}
	snapshot := canvasContext{Shapes: b.Shapes}
	for _, r := range records {
		snapshot.RecentCommands = append(snapshot.RecentCommands, r.Command)
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("board: encode context: %w", err)
	}
	return encoded, nil
}

func (m *Manager) broadcast(b *Board, command string, applied *ApplyResult) {
	if m.hub == nil || len(applied.Mutations) == 0 {
		return
	}
	payload, err := json.Marshal(struct {
		Command   string     `json:"command"`
		Mutations []Mutation `json:"mutations"`
		Created   []string   `json:"created,omitempty"`
	}{command, applied.Mutations, applied.Created})
	if err != nil {
		m.logger.Warn("encode broadcast payload failed", "error", err)
		return
	}
	m.hub.Broadcast(Event{Type: EventCommandApplied, BoardID: b.ID, Payload: payload})
}
