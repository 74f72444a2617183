package board

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	boards  map[string]*Board
	history map[string][]*CommandRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		boards:  map[string]*Board{},
		history: map[string][]*CommandRecord{},
	}
}

func (s *MemoryStore) CreateBoard(_ context.Context, board *Board) error {
	if board.ID == "" {
		board.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if board.CreatedAt.IsZero() {
		board.CreatedAt = now
	}
	if board.UpdatedAt.IsZero() {
		board.UpdatedAt = board.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.boards[board.ID]; exists {
		return ErrAlreadyExists
	}
	s.boards[board.ID] = cloneBoard(board)
	return nil
}

func (s *MemoryStore) GetBoard(_ context.Context, id string) (*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBoard(board), nil
}

func (s *MemoryStore) ListBoards(_ context.Context) ([]*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Board, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, cloneBoard(b))
	}
	return out, nil
}

func (s *MemoryStore) DeleteBoard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[id]; !ok {
		return ErrNotFound
	}
	delete(s.boards, id)
	delete(s.history, id)
	return nil
}

func (s *MemoryStore) UpsertShape(_ context.Context, boardID string, shape *Shape) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[boardID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	if shape.ID == "" {
		shape.ID = uuid.NewString()
	}
	if shape.CreatedAt.IsZero() {
		shape.CreatedAt = now
	}
	shape.UpdatedAt = now

	for i, existing := range board.Shapes {
		if existing.ID == shape.ID {
			board.Shapes[i] = cloneShape(shape)
			board.UpdatedAt = now
			return nil
		}
	}
	board.Shapes = append(board.Shapes, cloneShape(shape))
	board.UpdatedAt = now
	return nil
}

func (s *MemoryStore) DeleteShape(_ context.Context, boardID, shapeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[boardID]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range board.Shapes {
		if existing.ID == shapeID {
			board.Shapes = append(board.Shapes[:i], board.Shapes[i+1:]...)
			board.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) AppendCommand(_ context.Context, record *CommandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[record.BoardID]; !ok {
		return ErrNotFound
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.history[record.BoardID] = append(s.history[record.BoardID], cloneRecord(record))
	return nil
}

func (s *MemoryStore) ListCommands(_ context.Context, boardID string, opts CommandListOptions) ([]*CommandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.boards[boardID]; !ok {
		return nil, ErrNotFound
	}
	records := s.history[boardID]
	out := make([]*CommandRecord, 0, len(records))
	// Newest first.
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, cloneRecord(records[i]))
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}
