package board

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/haasonsaas/easel/internal/translate"
	"github.com/haasonsaas/easel/pkg/actions"
)

// fakeTranslator returns a fixed result and captures the request it saw.
type fakeTranslator struct {
	result  *translate.Result
	err     error
	lastReq translate.Request
}

func (f *fakeTranslator) Translate(_ context.Context, req translate.Request) (*translate.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	result := *f.result
	result.Command = req.Command
	return &result, nil
}

func (f *fakeTranslator) Name() string { return "fake" }

func TestManagerRunCommand(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	hub := NewHub()
	mgr := NewManager(store, hub, nil, nil)

	b := &Board{Name: "demo"}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatal(err)
	}

	ch, cancel := hub.Subscribe(b.ID)
	defer cancel()

	tr := &fakeTranslator{result: &translate.Result{
		Provider: "fake",
		Actions: []actions.Action{
			actions.CreateShape{Shape: actions.ShapeRectangle, Color: "#ff0000", X: 10, Y: 20, Width: 100, Height: 100},
		},
	}}

	outcome, err := mgr.RunCommand(ctx, b.ID, "a red box", tr)
	if err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	if len(outcome.Applied.Created) != 1 {
		t.Fatalf("created %d shapes, want 1", len(outcome.Applied.Created))
	}

	// Mutation persisted.
	stored, _ := store.GetBoard(ctx, b.ID)
	if len(stored.Shapes) != 1 || stored.Shapes[0].Color != "#ff0000" {
		t.Errorf("stored board = %+v", stored.Shapes)
	}

	// History recorded.
	records, _ := store.ListCommands(ctx, b.ID, CommandListOptions{})
	if len(records) != 1 || records[0].Command != "a red box" || records[0].ActionCount != 1 {
		t.Errorf("history = %+v", records)
	}

	// Event broadcast.
	select {
	case event := <-ch:
		if event.Type != EventCommandApplied {
			t.Errorf("event type = %q", event.Type)
		}
	case <-time.After(time.Second):
		t.Error("no event broadcast")
	}
}

func TestManagerRunCommandPassesContext(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	mgr := NewManager(store, nil, nil, nil)

	b := &Board{Name: "demo", Shapes: []*Shape{{ID: "s1", Kind: KindCircle, Width: 50, Height: 50}}}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendCommand(ctx, &CommandRecord{BoardID: b.ID, Command: "earlier command"}); err != nil {
		t.Fatal(err)
	}

	tr := &fakeTranslator{result: &translate.Result{Provider: "fake"}}
	if _, err := mgr.RunCommand(ctx, b.ID, "do nothing", tr); err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}

	var snapshot struct {
		Shapes         []*Shape `json:"shapes"`
		RecentCommands []string `json:"recent_commands"`
	}
	if err := json.Unmarshal(tr.lastReq.CanvasContext, &snapshot); err != nil {
		t.Fatalf("canvas context not JSON: %v", err)
	}
	if len(snapshot.Shapes) != 1 || snapshot.Shapes[0].ID != "s1" {
		t.Errorf("context shapes = %+v", snapshot.Shapes)
	}
	if len(snapshot.RecentCommands) != 1 || snapshot.RecentCommands[0] != "earlier command" {
		t.Errorf("context history = %v", snapshot.RecentCommands)
	}
}

func TestManagerRunCommandTranslateError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	mgr := NewManager(store, nil, nil, nil)

	b := &Board{Name: "demo"}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("upstream down")
	tr := &fakeTranslator{err: wantErr}
	if _, err := mgr.RunCommand(ctx, b.ID, "anything", tr); !errors.Is(err, wantErr) {
		t.Errorf("RunCommand() error = %v, want %v", err, wantErr)
	}

	// Nothing recorded on failure.
	records, _ := store.ListCommands(ctx, b.ID, CommandListOptions{})
	if len(records) != 0 {
		t.Errorf("history has %d records after failure, want 0", len(records))
	}
}

func TestManagerRunCommandUnknownBoard(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), nil, nil, nil)
	tr := &fakeTranslator{result: &translate.Result{Provider: "fake"}}
	if _, err := mgr.RunCommand(context.Background(), "missing", "hi", tr); !errors.Is(err, ErrNotFound) {
		t.Errorf("RunCommand() error = %v, want ErrNotFound", err)
	}
}
