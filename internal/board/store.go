package board

import "context"

// CommandListOptions configures history listing.
type CommandListOptions struct {
	// Limit caps the number of records returned, newest first. Zero means
	// no cap.
	Limit int
}

// Store persists boards, their shapes, and command history. Implementations
// return ErrNotFound for unknown ids and defensive copies of stored values.
type Store interface {
	CreateBoard(ctx context.Context, board *Board) error
	GetBoard(ctx context.Context, id string) (*Board, error)
	ListBoards(ctx context.Context) ([]*Board, error)
	DeleteBoard(ctx context.Context, id string) error

	// UpsertShape inserts or replaces one shape on a board. New shapes
	// append to the board's draw order.
	UpsertShape(ctx context.Context, boardID string, shape *Shape) error
	DeleteShape(ctx context.Context, boardID, shapeID string) error

	AppendCommand(ctx context.Context, record *CommandRecord) error
	ListCommands(ctx context.Context, boardID string, opts CommandListOptions) ([]*CommandRecord, error)
}
