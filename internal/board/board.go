// Package board holds the server-side whiteboard state: boards of shapes, the
// executor that applies translated actions to them, persistence, and the
// realtime event hub viewers subscribe to.
package board

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("board: not found")
	ErrAlreadyExists = errors.New("board: already exists")
)

// ShapeKind enumerates board element kinds. Rectangles and circles come from
// create_shape, text from create_text.
type ShapeKind string

const (
	KindRectangle ShapeKind = "rectangle"
	KindCircle    ShapeKind = "circle"
	KindText      ShapeKind = "text"
)

// Shape is one board element. Circles are stored as their bounding rect.
// Color is empty for text; Content and FontSize are zero for shapes.
type Shape struct {
	ID        string    `json:"id"`
	Kind      ShapeKind `json:"kind"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Color     string    `json:"color,omitempty"`
	Content   string    `json:"content,omitempty"`
	FontSize  float64   `json:"font_size,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Board is a named canvas. Shapes keep creation order; compound commands rely
// on that order to render fields top to bottom.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Shapes    []*Shape  `json:"shapes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shape returns the shape with the given id, or nil.
func (b *Board) Shape(id string) *Shape {
	for _, s := range b.Shapes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// CommandRecord is one executed command in a board's history.
type CommandRecord struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"board_id"`
	Command     string    `json:"command"`
	Provider    string    `json:"provider"`
	ActionCount int       `json:"action_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func cloneShape(s *Shape) *Shape {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func cloneBoard(b *Board) *Board {
	if b == nil {
		return nil
	}
	copied := *b
	copied.Shapes = make([]*Shape, len(b.Shapes))
	for i, s := range b.Shapes {
		copied.Shapes[i] = cloneShape(s)
	}
	return &copied
}

func cloneRecord(r *CommandRecord) *CommandRecord {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}
