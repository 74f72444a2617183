package board

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haasonsaas/easel/internal/geometry"
	"github.com/haasonsaas/easel/pkg/actions"
)

// Mutation describes one applied change, in execution order.
type Mutation struct {
	Type    actions.Kind `json:"type"`
	ShapeID string       `json:"shapeId"`
}

// ApplyResult reports what an action list did to a board. Created lists the
// server-assigned ids of new shapes in creation order; Skipped counts actions
// referencing unknown shape ids.
type ApplyResult struct {
	Mutations []Mutation `json:"mutations"`
	Created   []string   `json:"created"`
	Skipped   int        `json:"skipped"`
}

// Executor applies translated action lists to board state. Positions and
// sizes are clamped to the canvas; actions naming unknown shapes are skipped
// best-effort, matching how the translator passes ids through unvalidated.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger.With("component", "executor")}
}

// Apply mutates b in place with the ordered action list and reports the
// result. The caller persists the board afterwards.
func (e *Executor) Apply(b *Board, list []actions.Action) *ApplyResult {
	res := &ApplyResult{}
	now := time.Now().UTC()

	for _, act := range list {
		switch a := act.(type) {
		case actions.CreateShape:
			shape := e.createShape(a, now)
			b.Shapes = append(b.Shapes, shape)
			res.Created = append(res.Created, shape.ID)
			res.Mutations = append(res.Mutations, Mutation{Type: a.Kind(), ShapeID: shape.ID})

		case actions.CreateText:
			shape := e.createText(a, now)
			b.Shapes = append(b.Shapes, shape)
			res.Created = append(res.Created, shape.ID)
			res.Mutations = append(res.Mutations, Mutation{Type: a.Kind(), ShapeID: shape.ID})

		case actions.MoveShape:
			shape := b.Shape(a.ShapeID)
			if shape == nil {
				e.logger.Debug("move_shape target missing", "shape_id", a.ShapeID)
				res.Skipped++
				continue
			}
			rect := clampRect(geometry.Rect{X: a.X, Y: a.Y, Width: shape.Width, Height: shape.Height})
			shape.X, shape.Y = rect.X, rect.Y
			shape.UpdatedAt = now
			res.Mutations = append(res.Mutations, Mutation{Type: a.Kind(), ShapeID: shape.ID})

		case actions.ResizeShape:
			shape := b.Shape(a.ShapeID)
			if shape == nil {
				e.logger.Debug("resize_shape target missing", "shape_id", a.ShapeID)
				res.Skipped++
				continue
			}
			rect := clampRect(geometry.Rect{X: shape.X, Y: shape.Y, Width: a.Width, Height: a.Height})
			shape.X, shape.Y = rect.X, rect.Y
			shape.Width, shape.Height = rect.Width, rect.Height
			shape.UpdatedAt = now
			res.Mutations = append(res.Mutations, Mutation{Type: a.Kind(), ShapeID: shape.ID})

		case actions.ArrangeShapes:
			moved := e.arrange(b, a, now)
			if moved == 0 {
				res.Skipped++
				continue
			}
			for _, id := range a.ShapeIDs {
				if b.Shape(id) != nil {
					res.Mutations = append(res.Mutations, Mutation{Type: a.Kind(), ShapeID: id})
				}
			}
		}
	}

	if len(res.Mutations) > 0 {
		b.UpdatedAt = now
	}
	return res
}

func (e *Executor) createShape(a actions.CreateShape, now time.Time) *Shape {
	kind := KindRectangle
	if a.Shape == actions.ShapeCircle {
		kind = KindCircle
	}
	rect := clampRect(geometry.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height})
	return &Shape{
		ID:        uuid.NewString(),
		Kind:      kind,
		X:         rect.X,
		Y:         rect.Y,
		Width:     rect.Width,
		Height:    rect.Height,
		Color:     a.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (e *Executor) createText(a actions.CreateText, now time.Time) *Shape {
	rect := clampRect(geometry.Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height})
	fontSize := a.FontSize
	if fontSize == 0 {
		fontSize = actions.DefaultFontSize
	}
	return &Shape{
		ID:        uuid.NewString(),
		Kind:      KindText,
		X:         rect.X,
		Y:         rect.Y,
		Width:     rect.Width,
		Height:    rect.Height,
		Content:   a.Content,
		FontSize:  fontSize,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// arrange repositions the known shapes among a.ShapeIDs per the pattern,
// anchored at the bounding box of the group so arranging does not fling
// shapes to the origin. Returns the number of shapes moved.
func (e *Executor) arrange(b *Board, a actions.ArrangeShapes, now time.Time) int {
	spacing := a.Spacing
	if spacing == 0 {
		spacing = actions.DefaultSpacing
	}

	known := make([]*Shape, 0, len(a.ShapeIDs))
	rects := make([]geometry.Rect, 0, len(a.ShapeIDs))
	for _, id := range a.ShapeIDs {
		shape := b.Shape(id)
		if shape == nil {
			e.logger.Debug("arrange_shapes target missing", "shape_id", id)
			continue
		}
		known = append(known, shape)
		rects = append(rects, geometry.Rect{X: shape.X, Y: shape.Y, Width: shape.Width, Height: shape.Height})
	}
	if len(known) == 0 {
		return 0
	}

	box, _ := geometry.BoundingBox(rects)
	origin := geometry.Point{X: box.X, Y: box.Y}

	var targets []geometry.Point
	switch a.Pattern {
	case actions.PatternVerticalColumn:
		targets = geometry.LayoutColumn(rects, origin, spacing)
	case actions.PatternGrid:
		targets = geometry.LayoutGrid(rects, origin, spacing)
	default:
		targets = geometry.LayoutRow(rects, origin, spacing)
	}

	for i, shape := range known {
		rect := clampRect(geometry.Rect{X: targets[i].X, Y: targets[i].Y, Width: shape.Width, Height: shape.Height})
		shape.X, shape.Y = rect.X, rect.Y
		shape.UpdatedAt = now
	}
	return len(known)
}

func clampRect(r geometry.Rect) geometry.Rect {
	return geometry.Clamp(r, actions.CanvasMin, actions.CanvasMax)
}
