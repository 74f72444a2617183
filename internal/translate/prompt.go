package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/easel/pkg/actions"
)

// BulkCreateOffset is the uniform pixel step between shapes created by a bulk
// command ("add five circles"), applied on both axes so batches fan out
// diagonally instead of stacking.
const BulkCreateOffset = 350

// NoContextMarker is embedded in the prompt when the caller supplied no canvas
// snapshot.
const NoContextMarker = "no context"

// PromptOptions holds the per-request sections of the system prompt.
type PromptOptions struct {
	// CanvasContext is the caller's board snapshot, embedded verbatim.
	CanvasContext json.RawMessage

	// Preamble is optional operator-supplied text prepended to the prompt.
	Preamble string
}

// BuildSystemPrompt assembles the shared system prompt: action vocabulary,
// color palette, canvas position keywords, defaults, template guidance, and
// the caller's canvas context. Both backends use the same text; the Anthropic
// backend appends its JSON-output instructions separately.
func BuildSystemPrompt(opts PromptOptions) string {
	lines := make([]string, 0, 16)

	if preamble := strings.TrimSpace(opts.Preamble); preamble != "" {
		lines = append(lines, preamble)
	}

	lines = append(lines, "You are a whiteboard assistant. Translate the user's command into canvas actions. Emit one action per mutation, in execution order. If the command has no actionable intent, emit no actions.")

	var vocab strings.Builder
	vocab.WriteString("Available actions:")
	for _, def := range actions.Definitions() {
		fmt.Fprintf(&vocab, "\n- %s: %s", def.Name, def.Description)
	}
	lines = append(lines, vocab.String())

	lines = append(lines, fmt.Sprintf(
		"Canvas coordinates range %d-%d on both axes. Position keywords: center is (%d,%d); top-left corner (0,0); top-right corner (4500,0); bottom-left corner (0,4500); bottom-right corner (4500,4500).",
		actions.CanvasMin, actions.CanvasMax, actions.CanvasCenterX, actions.CanvasCenterY))

	lines = append(lines, fmt.Sprintf(
		"When the command gives no position, place the shape at (%d,%d). When it gives no size, use %dx%d.",
		actions.DefaultX, actions.DefaultY, actions.DefaultWidth, actions.DefaultHeight))

	var palette strings.Builder
	palette.WriteString("Colors must be 6-digit hex strings. Palette:")
	for _, c := range actions.ColorTable() {
		fmt.Fprintf(&palette, "\n- %s: %s", c.Name, c.Hex)
	}
	lines = append(lines, palette.String())

	lines = append(lines, loginFormGuidance())

	lines = append(lines, fmt.Sprintf(
		"For bulk creation commands like \"add 5 circles\", emit one create_shape per requested shape, offsetting each from the previous by %dpx on both axes so they do not overlap.",
		BulkCreateOffset))

	if len(opts.CanvasContext) > 0 && string(opts.CanvasContext) != "null" {
		lines = append(lines, "Current canvas state:\n"+string(opts.CanvasContext))
	} else {
		lines = append(lines, "Current canvas state: "+NoContextMarker)
	}

	lines = append(lines, "Shape identifiers in move, resize, and arrange commands refer to elements the canvas already knows. Pass identifiers through exactly as the user or the canvas state gives them; never invent new ones.")

	return strings.TrimSpace(strings.Join(lines, "\n\n"))
}

// LoginFormActions returns the fixed login-form layout: username label and
// input, password label and input, submit button, button caption. Downstream
// rendering tests assert this exact sequence, so the literals here are load
// bearing.
func LoginFormActions() []actions.Action {
	lightGray, _ := actions.ColorHex("light-gray")
	blue, _ := actions.ColorHex("blue")
	return []actions.Action{
		actions.CreateText{Content: "Username:", X: 300, Y: 200, Width: 280, Height: 25, FontSize: actions.DefaultFontSize},
		actions.CreateShape{Shape: actions.ShapeRectangle, Color: lightGray, X: 300, Y: 225, Width: 280, Height: 40},
		actions.CreateText{Content: "Password:", X: 300, Y: 285, Width: 280, Height: 25, FontSize: actions.DefaultFontSize},
		actions.CreateShape{Shape: actions.ShapeRectangle, Color: lightGray, X: 300, Y: 310, Width: 280, Height: 40},
		actions.CreateShape{Shape: actions.ShapeRectangle, Color: blue, X: 300, Y: 370, Width: 280, Height: 50},
		actions.CreateText{Content: "Login", X: 390, Y: 385, Width: 100, Height: 25, FontSize: actions.DefaultFontSize},
	}
}

func loginFormGuidance() string {
	rendered, err := json.Marshal(LoginFormActions())
	if err != nil {
		// The template is a package constant; marshalling it cannot fail.
		panic(err)
	}
	return "For login form commands, emit exactly this sequence, in this order:\n" + string(rendered)
}

// templateActions resolves commands that map to a fixed layout without an
// upstream call, keeping their output byte-stable across providers. Returns
// nil when the command matches no template.
func templateActions(command string) []actions.Action {
	normalized := strings.ToLower(strings.TrimSpace(command))
	switch normalized {
	case "create login form", "create a login form", "make a login form", "add a login form":
		return LoginFormActions()
	}
	return nil
}
