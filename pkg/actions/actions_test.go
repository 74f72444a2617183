package actions

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestActionRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{
			name: "create_shape",
			action: CreateShape{
				Shape:  ShapeRectangle,
				Color:  "#ff0000",
				X:      100,
				Y:      200,
				Width:  300,
				Height: 150,
			},
		},
		{
			name: "create_text with default font size",
			action: CreateText{
				Content:  "hello",
				X:        50,
				Y:        60,
				Width:    200,
				Height:   40,
				FontSize: DefaultFontSize,
			},
		},
		{
			name:   "move_shape",
			action: MoveShape{ShapeID: "shape-1", X: 2500, Y: 2500},
		},
		{
			name:   "resize_shape",
			action: ResizeShape{ShapeID: "shape-2", Width: 640, Height: 480},
		},
		{
			name: "arrange_shapes with default spacing",
			action: ArrangeShapes{
				ShapeIDs: []string{"a", "b", "c"},
				Pattern:  PatternGrid,
				Spacing:  DefaultSpacing,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.action)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.action, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalWireForm(t *testing.T) {
	data, err := json.Marshal(MoveShape{ShapeID: "s1", X: 10, Y: 20})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if raw["type"] != "move_shape" {
		t.Errorf("type = %v, want move_shape", raw["type"])
	}
	if raw["shapeId"] != "s1" {
		t.Errorf("shapeId = %v, want s1", raw["shapeId"])
	}
	if _, nested := raw["MoveShape"]; nested {
		t.Error("wire form should be flat, found nested struct key")
	}
}

func TestMarshalListOrder(t *testing.T) {
	list := []Action{
		CreateText{Content: "Username:", X: 300, Y: 200, Width: 280, Height: 25, FontSize: 16},
		CreateShape{Shape: ShapeRectangle, Color: "#d3d3d3", X: 300, Y: 225, Width: 280, Height: 40},
	}
	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := DecodeList(data)
	if err != nil {
		t.Fatalf("DecodeList() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("DecodeList() returned %d actions, want 2", len(got))
	}
	if got[0].Kind() != KindCreateText || got[1].Kind() != KindCreateShape {
		t.Errorf("order not preserved: got %v, %v", got[0].Kind(), got[1].Kind())
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantUnknown bool
	}{
		{name: "missing type", data: `{"x": 1}`},
		{name: "unknown type", data: `{"type": "delete_shape", "shapeId": "s1"}`, wantUnknown: true},
		{name: "not an object", data: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if err == nil {
				t.Fatal("Unmarshal() error = nil, want error")
			}
			if got := errors.Is(err, ErrUnknownAction); got != tt.wantUnknown {
				t.Errorf("errors.Is(err, ErrUnknownAction) = %v, want %v (err: %v)", got, tt.wantUnknown, err)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 5 {
		t.Fatalf("Kinds() returned %d entries, want 5", len(kinds))
	}
	defs := Definitions()
	if len(defs) != len(kinds) {
		t.Fatalf("Definitions() returned %d entries, want %d", len(defs), len(kinds))
	}
	for i, def := range defs {
		if def.Name != kinds[i] {
			t.Errorf("Definitions()[%d].Name = %v, want %v", i, def.Name, kinds[i])
		}
		if len(def.Schema) == 0 {
			t.Errorf("Definitions()[%d].Schema is empty", i)
		}
		if !json.Valid(def.Schema) {
			t.Errorf("Definitions()[%d].Schema is not valid JSON", i)
		}
	}
}
