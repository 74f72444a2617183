package actions

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		fn      string
		args    string
		want    Action
		wantErr bool
	}{
		{
			name: "create_shape all fields",
			fn:   "create_shape",
			args: `{"shape": "circle", "color": "#0000ff", "x": 2500, "y": 2500, "width": 300, "height": 300}`,
			want: CreateShape{Shape: ShapeCircle, Color: "#0000ff", X: 2500, Y: 2500, Width: 300, Height: 300},
		},
		{
			name: "create_text fills default font size",
			fn:   "create_text",
			args: `{"content": "hi", "x": 0, "y": 0, "width": 100, "height": 30}`,
			want: CreateText{Content: "hi", Width: 100, Height: 30, FontSize: 16},
		},
		{
			name: "create_text keeps explicit font size",
			fn:   "create_text",
			args: `{"content": "hi", "x": 0, "y": 0, "width": 100, "height": 30, "font_size": 24}`,
			want: CreateText{Content: "hi", Width: 100, Height: 30, FontSize: 24},
		},
		{
			name: "arrange_shapes fills default spacing",
			fn:   "arrange_shapes",
			args: `{"shapeIds": ["a", "b"], "pattern": "horizontal_row"}`,
			want: ArrangeShapes{ShapeIDs: []string{"a", "b"}, Pattern: PatternHorizontalRow, Spacing: 50},
		},
		{
			name: "fractional coordinates accepted",
			fn:   "move_shape",
			args: `{"shapeId": "s1", "x": 10.5, "y": 20.25}`,
			want: MoveShape{ShapeID: "s1", X: 10.5, Y: 20.25},
		},
		{
			name:    "create_shape missing color",
			fn:      "create_shape",
			args:    `{"shape": "rectangle", "x": 0, "y": 0, "width": 10, "height": 10}`,
			wantErr: true,
		},
		{
			name:    "create_shape color not hex",
			fn:      "create_shape",
			args:    `{"shape": "rectangle", "color": "red", "x": 0, "y": 0, "width": 10, "height": 10}`,
			wantErr: true,
		},
		{
			name:    "create_shape bad shape enum",
			fn:      "create_shape",
			args:    `{"shape": "triangle", "color": "#ff0000", "x": 0, "y": 0, "width": 10, "height": 10}`,
			wantErr: true,
		},
		{
			name:    "arrange_shapes bad pattern",
			fn:      "arrange_shapes",
			args:    `{"shapeIds": ["a"], "pattern": "diagonal"}`,
			wantErr: true,
		},
		{
			name:    "arrange_shapes empty id list",
			fn:      "arrange_shapes",
			args:    `{"shapeIds": [], "pattern": "grid"}`,
			wantErr: true,
		},
		{
			name:    "resize_shape non-numeric width",
			fn:      "resize_shape",
			args:    `{"shapeId": "s1", "width": "wide", "height": 10}`,
			wantErr: true,
		},
		{
			name:    "empty arguments",
			fn:      "move_shape",
			args:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.fn, []byte(tt.args))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeUnknownName(t *testing.T) {
	_, err := Decode("rotate_shape", []byte(`{"shapeId": "s1", "angle": 90}`))
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Decode() error = %v, want ErrUnknownAction", err)
	}
}

func TestDecodeToleratesTypeTag(t *testing.T) {
	// Wire-form objects carry the discriminator alongside the arguments.
	got, err := Decode("move_shape", []byte(`{"type": "move_shape", "shapeId": "s1", "x": 1, "y": 2}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := MoveShape{ShapeID: "s1", X: 1, Y: 2}
	if diff := cmp.Diff(Action(want), got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeListSkipsUnknown(t *testing.T) {
	data := `[
		{"type": "create_shape", "shape": "rectangle", "color": "#ff0000", "x": 0, "y": 0, "width": 10, "height": 10},
		{"type": "delete_shape", "shapeId": "s9"},
		{"type": "move_shape", "shapeId": "s1", "x": 5, "y": 5}
	]`
	got, err := DecodeList([]byte(data))
	if err != nil {
		t.Fatalf("DecodeList() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("DecodeList() returned %d actions, want 2", len(got))
	}
	if got[0].Kind() != KindCreateShape || got[1].Kind() != KindMoveShape {
		t.Errorf("DecodeList() kinds = %v, %v", got[0].Kind(), got[1].Kind())
	}
}

func TestDecodeListMalformed(t *testing.T) {
	if _, err := DecodeList([]byte(`{"actions": []}`)); err == nil {
		t.Error("DecodeList() on non-array input: error = nil, want error")
	}
	if _, err := DecodeList([]byte(`[{"type": "move_shape", "shapeId": "s1"}]`)); err == nil {
		t.Error("DecodeList() with invalid item: error = nil, want error")
	}
}
