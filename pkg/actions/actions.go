// Package actions defines the closed vocabulary of canvas mutations the
// whiteboard executor understands. Every command translation, no matter which
// provider produced it, is normalized into an ordered []Action before anything
// downstream sees it.
//
// The vocabulary is declared once — see Definitions — and consumed by the
// prompt builder, the provider tool declarations, and the decoder, so the
// three can never drift apart.
package actions

import (
	"encoding/json"
	"fmt"
)

// Canvas geometry shared by the prompt builder and the executor. Coordinates
// are conceptually bounded to the 0–5000 canvas; the executor clamps, the
// translator never rejects out-of-range values.
const (
	CanvasMin = 0
	CanvasMax = 5000

	CanvasCenterX = 2500
	CanvasCenterY = 2500

	DefaultX      = 0
	DefaultY      = 0
	DefaultWidth  = 300
	DefaultHeight = 300

	DefaultFontSize = 16
	DefaultSpacing  = 50
)

// Kind discriminates Action variants on the wire.
type Kind string

const (
	KindCreateShape   Kind = "create_shape"
	KindCreateText    Kind = "create_text"
	KindMoveShape     Kind = "move_shape"
	KindResizeShape   Kind = "resize_shape"
	KindArrangeShapes Kind = "arrange_shapes"
)

func (k Kind) String() string { return string(k) }

// Kinds returns the vocabulary in declaration order.
func Kinds() []Kind {
	return []Kind{KindCreateShape, KindCreateText, KindMoveShape, KindResizeShape, KindArrangeShapes}
}

// ShapeType enumerates the geometric primitives create_shape accepts.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
)

// Pattern enumerates arrange_shapes layouts.
type Pattern string

const (
	PatternHorizontalRow  Pattern = "horizontal_row"
	PatternVerticalColumn Pattern = "vertical_column"
	PatternGrid           Pattern = "grid"
)

// Action is one typed canvas mutation. An Action list produced by a single
// command is ordered; order is the intended execution order.
type Action interface {
	Kind() Kind
}

// CreateShape places a new rectangle or circle on the canvas.
type CreateShape struct {
	Shape  ShapeType `json:"shape"`
	Color  string    `json:"color"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

func (CreateShape) Kind() Kind { return KindCreateShape }

// CreateText places a text element on the canvas.
type CreateText struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"font_size,omitempty"`
}

func (CreateText) Kind() Kind { return KindCreateText }

// MoveShape repositions an existing element. The translator passes shape
// identifiers through as given; it never invents or checks them.
type MoveShape struct {
	ShapeID string  `json:"shapeId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

func (MoveShape) Kind() Kind { return KindMoveShape }

// ResizeShape changes the dimensions of an existing element.
type ResizeShape struct {
	ShapeID string  `json:"shapeId"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

func (ResizeShape) Kind() Kind { return KindResizeShape }

// ArrangeShapes lays out existing elements in a row, column, or grid.
// ShapeIDs order is the layout order.
type ArrangeShapes struct {
	ShapeIDs []string `json:"shapeIds"`
	Pattern  Pattern  `json:"pattern"`
	Spacing  float64  `json:"spacing,omitempty"`
}

func (ArrangeShapes) Kind() Kind { return KindArrangeShapes }

// Wire form is the variant's fields flattened alongside a "type" tag:
//
//	{"type":"move_shape","shapeId":"s1","x":10,"y":20}

func (a CreateShape) MarshalJSON() ([]byte, error) {
	type alias CreateShape
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindCreateShape, alias(a)})
}

func (a CreateText) MarshalJSON() ([]byte, error) {
	type alias CreateText
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindCreateText, alias(a)})
}

func (a MoveShape) MarshalJSON() ([]byte, error) {
	type alias MoveShape
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindMoveShape, alias(a)})
}

func (a ResizeShape) MarshalJSON() ([]byte, error) {
	type alias ResizeShape
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindResizeShape, alias(a)})
}

func (a ArrangeShapes) MarshalJSON() ([]byte, error) {
	type alias ArrangeShapes
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindArrangeShapes, alias(a)})
}

// Unmarshal decodes one wire-form action object, validating it against the
// variant schema and filling defaults. The inverse of MarshalJSON.
func Unmarshal(data []byte) (Action, error) {
	var env struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("actions: invalid action object: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("actions: action object missing type")
	}
	return Decode(string(env.Type), data)
}
