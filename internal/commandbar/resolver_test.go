package commandbar

import "testing"

func historyWith(entries ...Entry) *History {
	h := NewHistory(20)
	for _, e := range entries {
		h.Add(e)
	}
	return h
}

func TestResolvePronouns(t *testing.T) {
	history := historyWith(
		Entry{Command: "create a blue square", ShapeIDs: []string{"old-1"}},
		Entry{Command: "create a red circle", ShapeIDs: []string{"new-2"}},
	)

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"it", "move it to the center", "move shape new-2 to the center"},
		{"that", "resize that to 100x100", "resize shape new-2 to 100x100"},
		{"just made", "make the one I just made bigger", "make shape new-2 bigger"},
		{"last one", "delete the last one", "delete shape new-2"},
		{"no reference", "create a green rectangle", "create a green rectangle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.command, history); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.command, got, tt.want)
			}
		})
	}
}

func TestResolveDescription(t *testing.T) {
	history := historyWith(
		Entry{Command: "create a red circle", ShapeIDs: []string{"red-1"}},
		Entry{Command: "create a blue square", ShapeIDs: []string{"blue-2"}},
	)

	got := Resolve("move the red circle to the corner", history)
	want := "move shape red-1 to the corner"
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	// Most recent match wins when several fit.
	history.Add(Entry{Command: "create another red circle", ShapeIDs: []string{"red-3"}})
	got = Resolve("move the red circle left", history)
	want = "move shape red-3 left"
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveUnresolvedPassesThrough(t *testing.T) {
	tests := []struct {
		name    string
		command string
		history *History
	}{
		{"empty history", "move it left", NewHistory(10)},
		{"nil history", "move it left", nil},
		{"unknown color", "move the chartreuse blob left", historyWith(Entry{Command: "x", ShapeIDs: []string{"s1"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.command, tt.history); got != tt.command {
				t.Errorf("Resolve(%q) = %q, want passthrough", tt.command, got)
			}
		})
	}
}

func TestHistoryRingEviction(t *testing.T) {
	h := NewHistory(2)
	h.Add(Entry{Command: "one"})
	h.Add(Entry{Command: "two"})
	h.Add(Entry{Command: "three"})

	recent := h.Recent()
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].Command != "three" || recent[1].Command != "two" {
		t.Errorf("recent = [%q, %q], want newest first with oldest evicted", recent[0].Command, recent[1].Command)
	}
}

func TestHistoryAttachShapes(t *testing.T) {
	h := NewHistory(10)
	h.AttachShapes([]string{"ignored"}) // empty history: no-op

	h.Add(Entry{Command: "create a circle"})
	h.AttachShapes([]string{"s1", "s2"})

	id, ok := h.LastCreatedShape()
	if !ok || id != "s2" {
		t.Errorf("LastCreatedShape() = %q, %v; want s2, true", id, ok)
	}
}
