package actions

import (
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Definition describes one vocabulary entry: the wire name, the guidance text
// shown to the model, and the JSON Schema its arguments must satisfy. The same
// five definitions feed provider tool declarations, the prompt builder, and
// argument validation in Decode.
type Definition struct {
	Name        Kind
	Description string
	Schema      json.RawMessage
}

// Definitions returns the vocabulary in declaration order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        KindCreateShape,
			Description: "Create a new rectangle or circle on the canvas at the given position and size.",
			Schema:      json.RawMessage(createShapeSchema),
		},
		{
			Name:        KindCreateText,
			Description: "Create a text element on the canvas.",
			Schema:      json.RawMessage(createTextSchema),
		},
		{
			Name:        KindMoveShape,
			Description: "Move an existing canvas element to a new position, identified by its id.",
			Schema:      json.RawMessage(moveShapeSchema),
		},
		{
			Name:        KindResizeShape,
			Description: "Resize an existing canvas element, identified by its id.",
			Schema:      json.RawMessage(resizeShapeSchema),
		},
		{
			Name:        KindArrangeShapes,
			Description: "Arrange existing canvas elements into a horizontal row, vertical column, or grid.",
			Schema:      json.RawMessage(arrangeShapesSchema),
		},
	}
}

type actionSchemaRegistry struct {
	once    sync.Once
	initErr error
	byKind  map[Kind]*jsonschema.Schema
}

var actionSchemas actionSchemaRegistry

func initActionSchemas() error {
	actionSchemas.once.Do(func() {
		defs := Definitions()
		actionSchemas.byKind = make(map[Kind]*jsonschema.Schema, len(defs))
		for _, def := range defs {
			compiled, err := jsonschema.CompileString("action_"+string(def.Name), string(def.Schema))
			if err != nil {
				actionSchemas.initErr = err
				return
			}
			actionSchemas.byKind[def.Name] = compiled
		}
	})
	return actionSchemas.initErr
}

// validateArgs checks an arguments object against the variant schema. Extra
// keys (such as the wire "type" tag) are tolerated.
func validateArgs(kind Kind, raw []byte) error {
	if err := initActionSchemas(); err != nil {
		return err
	}
	schema := actionSchemas.byKind[kind]
	if schema == nil {
		return ErrUnknownAction
	}
	var payload any
	if len(raw) == 0 {
		payload = map[string]any{}
	} else if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return schema.Validate(payload)
}

const createShapeSchema = `{
  "type": "object",
  "properties": {
    "shape": {"type": "string", "enum": ["rectangle", "circle"], "description": "Kind of shape to create"},
    "color": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$", "description": "Fill color as a 6-digit hex string, e.g. #ff0000"},
    "x": {"type": "number", "description": "Left edge, canvas coordinates"},
    "y": {"type": "number", "description": "Top edge, canvas coordinates"},
    "width": {"type": "number", "description": "Width in pixels"},
    "height": {"type": "number", "description": "Height in pixels"}
  },
  "required": ["shape", "color", "x", "y", "width", "height"]
}`

const createTextSchema = `{
  "type": "object",
  "properties": {
    "content": {"type": "string", "description": "Text to display"},
    "x": {"type": "number", "description": "Left edge, canvas coordinates"},
    "y": {"type": "number", "description": "Top edge, canvas coordinates"},
    "width": {"type": "number", "description": "Width in pixels"},
    "height": {"type": "number", "description": "Height in pixels"},
    "font_size": {"type": "number", "description": "Font size in points, defaults to 16"}
  },
  "required": ["content", "x", "y", "width", "height"]
}`

const moveShapeSchema = `{
  "type": "object",
  "properties": {
    "shapeId": {"type": "string", "description": "Identifier of the element to move"},
    "x": {"type": "number", "description": "New left edge"},
    "y": {"type": "number", "description": "New top edge"}
  },
  "required": ["shapeId", "x", "y"]
}`

const resizeShapeSchema = `{
  "type": "object",
  "properties": {
    "shapeId": {"type": "string", "description": "Identifier of the element to resize"},
    "width": {"type": "number", "description": "New width in pixels"},
    "height": {"type": "number", "description": "New height in pixels"}
  },
  "required": ["shapeId", "width", "height"]
}`

const arrangeShapesSchema = `{
  "type": "object",
  "properties": {
    "shapeIds": {"type": "array", "items": {"type": "string"}, "minItems": 1, "description": "Identifiers of the elements to arrange, in layout order"},
    "pattern": {"type": "string", "enum": ["horizontal_row", "vertical_column", "grid"], "description": "Layout pattern"},
    "spacing": {"type": "number", "description": "Gap between elements in pixels, defaults to 50"}
  },
  "required": ["shapeIds", "pattern"]
}`
