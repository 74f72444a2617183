package translate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/haasonsaas/easel/pkg/actions"
)

func TestBuildSystemPromptSections(t *testing.T) {
	prompt := BuildSystemPrompt(PromptOptions{})

	for _, def := range actions.Definitions() {
		if !strings.Contains(prompt, string(def.Name)) {
			t.Errorf("prompt missing action %q", def.Name)
		}
	}
	for _, c := range actions.ColorTable() {
		if !strings.Contains(prompt, c.Name+": "+c.Hex) {
			t.Errorf("prompt missing color %q", c.Name)
		}
	}
	wantFragments := []string{
		"center is (2500,2500)",
		"top-right corner (4500,0)",
		"bottom-right corner (4500,4500)",
		"place the shape at (0,0)",
		"use 300x300",
		"Current canvas state: " + NoContextMarker,
		"350px",
		"Username:",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(prompt, frag) {
			t.Errorf("prompt missing fragment %q", frag)
		}
	}
}

func TestBuildSystemPromptContext(t *testing.T) {
	ctxJSON := json.RawMessage(`{"shapes":[{"id":"s1"}]}`)
	prompt := BuildSystemPrompt(PromptOptions{CanvasContext: ctxJSON})
	if !strings.Contains(prompt, `{"shapes":[{"id":"s1"}]}`) {
		t.Error("canvas context not embedded verbatim")
	}
	if strings.Contains(prompt, NoContextMarker) {
		t.Error("no-context marker present despite context")
	}
}

func TestBuildSystemPromptPreamble(t *testing.T) {
	prompt := BuildSystemPrompt(PromptOptions{Preamble: "Operator note."})
	if !strings.HasPrefix(prompt, "Operator note.") {
		t.Errorf("preamble not first, prompt starts: %.60s", prompt)
	}
}

func TestLoginFormActions(t *testing.T) {
	got := LoginFormActions()
	want := []actions.Action{
		actions.CreateText{Content: "Username:", X: 300, Y: 200, Width: 280, Height: 25, FontSize: 16},
		actions.CreateShape{Shape: actions.ShapeRectangle, Color: "#d3d3d3", X: 300, Y: 225, Width: 280, Height: 40},
		actions.CreateText{Content: "Password:", X: 300, Y: 285, Width: 280, Height: 25, FontSize: 16},
		actions.CreateShape{Shape: actions.ShapeRectangle, Color: "#d3d3d3", X: 300, Y: 310, Width: 280, Height: 40},
		actions.CreateShape{Shape: actions.ShapeRectangle, Color: "#0000ff", X: 300, Y: 370, Width: 280, Height: 50},
		actions.CreateText{Content: "Login", X: 390, Y: 385, Width: 100, Height: 25, FontSize: 16},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("login form layout mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateActions(t *testing.T) {
	tests := []struct {
		command string
		match   bool
	}{
		{"create login form", true},
		{"Create Login Form", true},
		{"  create a login form  ", true},
		{"create a red circle", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := templateActions(tt.command)
			if (got != nil) != tt.match {
				t.Errorf("templateActions(%q) matched = %v, want %v", tt.command, got != nil, tt.match)
			}
			if tt.match && len(got) != 6 {
				t.Errorf("template has %d actions, want 6", len(got))
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"actions":[]}`, `{"actions":[]}`},
		{"fenced json", "```json\n{\"actions\":[]}\n```", `{"actions":[]}`},
		{"fenced bare", "```\n{\"actions\":[]}\n```", `{"actions":[]}`},
		{"surrounding whitespace", "  {\"actions\":[]}  ", `{"actions":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("stripCodeFence() = %q, want %q", got, tt.want)
			}
		})
	}
}
