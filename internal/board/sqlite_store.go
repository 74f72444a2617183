package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore persists boards in SQLite via database/sql. The zero path opens
// an in-memory database, so local runs need no setup.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("board: open sqlite: %w", err)
	}
	// modernc/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStoreWithDB wraps an existing database handle. The caller owns the
// handle's lifecycle; used by tests.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS shapes (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			font_size REAL NOT NULL DEFAULT 0,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shapes_board ON shapes(board_id, position)`,
		`CREATE TABLE IF NOT EXISTS commands (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			command TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			action_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commands_board ON commands(board_id, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("board: create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateBoard(ctx context.Context, board *Board) error {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boards (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		board.ID, board.Name, board.CreatedAt, board.UpdatedAt)
	if err != nil {
		return fmt.Errorf("board: insert board: %w", err)
	}

	for i, shape := range board.Shapes {
		if err := s.insertShape(ctx, board.ID, shape, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) GetBoard(ctx context.Context, id string) (*Board, error) {
	board := &Board{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, created_at, updated_at FROM boards WHERE id = ?`, id).
		Scan(&board.Name, &board.CreatedAt, &board.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("board: query board: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, x, y, width, height, color, content, font_size, created_at, updated_at
		 FROM shapes WHERE board_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("board: query shapes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		shape := &Shape{}
		if err := rows.Scan(&shape.ID, &shape.Kind, &shape.X, &shape.Y, &shape.Width, &shape.Height,
			&shape.Color, &shape.Content, &shape.FontSize, &shape.CreatedAt, &shape.UpdatedAt); err != nil {
			return nil, fmt.Errorf("board: scan shape: %w", err)
		}
		board.Shapes = append(board.Shapes, shape)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("board: iterate shapes: %w", err)
	}
	return board, nil
}

func (s *SQLiteStore) ListBoards(ctx context.Context) ([]*Board, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM boards ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("board: query boards: %w", err)
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("board: scan board id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("board: iterate boards: %w", err)
	}
	rows.Close()

	out := make([]*Board, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBoard(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("board: delete board: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("board: delete board: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	// Cascade is not guaranteed without foreign_keys pragma; clean up
	// explicitly.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shapes WHERE board_id = ?`, id); err != nil {
		return fmt.Errorf("board: delete shapes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM commands WHERE board_id = ?`, id); err != nil {
		return fmt.Errorf("board: delete commands: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertShape(ctx context.Context, boardID string, shape *Shape) error {
	now := time.Now().UTC()
	if shape.ID == "" {
		shape.ID = uuid.NewString()
	}
	if shape.CreatedAt.IsZero() {
		shape.CreatedAt = now
	}
	shape.UpdatedAt = now

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM boards WHERE id = ?`, boardID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("board: check board: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE shapes SET kind = ?, x = ?, y = ?, width = ?, height = ?, color = ?, content = ?, font_size = ?, updated_at = ?
		 WHERE id = ? AND board_id = ?`,
		shape.Kind, shape.X, shape.Y, shape.Width, shape.Height, shape.Color, shape.Content, shape.FontSize,
		shape.UpdatedAt, shape.ID, boardID)
	if err != nil {
		return fmt.Errorf("board: update shape: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("board: update shape: %w", err)
	}
	if affected > 0 {
		return s.touchBoard(ctx, boardID, now)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shapes (id, board_id, kind, x, y, width, height, color, content, font_size, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			 (SELECT COALESCE(MAX(position), -1) + 1 FROM shapes WHERE board_id = ?), ?, ?)`,
		shape.ID, boardID, shape.Kind, shape.X, shape.Y, shape.Width, shape.Height,
		shape.Color, shape.Content, shape.FontSize, boardID, shape.CreatedAt, shape.UpdatedAt)
	if err != nil {
		return fmt.Errorf("board: insert shape: %w", err)
	}
	return s.touchBoard(ctx, boardID, now)
}

func (s *SQLiteStore) DeleteShape(ctx context.Context, boardID, shapeID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shapes WHERE id = ? AND board_id = ?`, shapeID, boardID)
	if err != nil {
		return fmt.Errorf("board: delete shape: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("board: delete shape: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return s.touchBoard(ctx, boardID, time.Now().UTC())
}

func (s *SQLiteStore) AppendCommand(ctx context.Context, record *CommandRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM boards WHERE id = ?`, record.BoardID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("board: check board: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO commands (id, board_id, command, provider, action_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.BoardID, record.Command, record.Provider, record.ActionCount, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("board: insert command: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListCommands(ctx context.Context, boardID string, opts CommandListOptions) ([]*CommandRecord, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM boards WHERE id = ?`, boardID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("board: check board: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	query := `SELECT id, command, provider, action_count, created_at FROM commands
		 WHERE board_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{boardID}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("board: query commands: %w", err)
	}
	defer rows.Close()

	out := []*CommandRecord{}
	for rows.Next() {
		record := &CommandRecord{BoardID: boardID}
		if err := rows.Scan(&record.ID, &record.Command, &record.Provider, &record.ActionCount, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("board: scan command: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("board: iterate commands: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) insertShape(ctx context.Context, boardID string, shape *Shape, position int) error {
	now := time.Now().UTC()
	if shape.ID == "" {
		shape.ID = uuid.NewString()
	}
	if shape.CreatedAt.IsZero() {
		shape.CreatedAt = now
	}
	shape.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shapes (id, board_id, kind, x, y, width, height, color, content, font_size, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shape.ID, boardID, shape.Kind, shape.X, shape.Y, shape.Width, shape.Height,
		shape.Color, shape.Content, shape.FontSize, position, shape.CreatedAt, shape.UpdatedAt)
	if err != nil {
		return fmt.Errorf("board: insert shape: %w", err)
	}
	return nil
}

func (s *SQLiteStore) touchBoard(ctx context.Context, boardID string, now time.Time) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE boards SET updated_at = ? WHERE id = ?`, now, boardID); err != nil {
		return fmt.Errorf("board: touch board: %w", err)
	}
	return nil
}
