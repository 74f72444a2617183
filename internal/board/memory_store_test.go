package board

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryStoreBoardLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	b := &Board{Name: "sketch"}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatalf("CreateBoard() error = %v", err)
	}
	if b.ID == "" {
		t.Fatal("CreateBoard() did not assign an id")
	}

	got, err := store.GetBoard(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if got.Name != "sketch" {
		t.Errorf("Name = %q, want sketch", got.Name)
	}

	// Returned boards are copies; mutating them must not leak into the store.
	got.Name = "mutated"
	again, _ := store.GetBoard(ctx, b.ID)
	if again.Name != "sketch" {
		t.Error("GetBoard() returned a live reference, want a copy")
	}

	if err := store.DeleteBoard(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBoard() error = %v", err)
	}
	if _, err := store.GetBoard(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBoard() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCreateBoardDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := &Board{ID: "b1", Name: "one"}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateBoard(ctx, &Board{ID: "b1"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("CreateBoard() duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestMemoryStoreShapes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := &Board{Name: "shapes"}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatal(err)
	}

	s1 := &Shape{Kind: KindRectangle, X: 1, Y: 2, Width: 3, Height: 4, Color: "#ff0000"}
	if err := store.UpsertShape(ctx, b.ID, s1); err != nil {
		t.Fatalf("UpsertShape() error = %v", err)
	}
	s2 := &Shape{Kind: KindText, Content: "hello", Width: 100, Height: 25}
	if err := store.UpsertShape(ctx, b.ID, s2); err != nil {
		t.Fatal(err)
	}

	got, _ := store.GetBoard(ctx, b.ID)
	if len(got.Shapes) != 2 {
		t.Fatalf("got %d shapes, want 2", len(got.Shapes))
	}
	if got.Shapes[0].ID != s1.ID || got.Shapes[1].ID != s2.ID {
		t.Error("shapes not in insertion order")
	}

	// Upsert with an existing id replaces in place.
	s1.X = 99
	if err := store.UpsertShape(ctx, b.ID, s1); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetBoard(ctx, b.ID)
	if len(got.Shapes) != 2 || got.Shapes[0].X != 99 {
		t.Errorf("upsert did not replace: %d shapes, X = %v", len(got.Shapes), got.Shapes[0].X)
	}

	if err := store.UpsertShape(ctx, "missing", s1); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpsertShape() on missing board error = %v, want ErrNotFound", err)
	}

	if err := store.DeleteShape(ctx, b.ID, s2.ID); err != nil {
		t.Fatalf("DeleteShape() error = %v", err)
	}
	if err := store.DeleteShape(ctx, b.ID, s2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteShape() twice error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCommandHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	b := &Board{Name: "history"}
	if err := store.CreateBoard(ctx, b); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		record := &CommandRecord{BoardID: b.ID, Command: fmt.Sprintf("cmd-%d", i)}
		if err := store.AppendCommand(ctx, record); err != nil {
			t.Fatalf("AppendCommand() error = %v", err)
		}
	}

	got, err := store.ListCommands(ctx, b.ID, CommandListOptions{Limit: 3})
	if err != nil {
		t.Fatalf("ListCommands() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	// Newest first.
	if got[0].Command != "cmd-4" || got[2].Command != "cmd-2" {
		t.Errorf("order wrong: %q ... %q", got[0].Command, got[2].Command)
	}

	if _, err := store.ListCommands(ctx, "missing", CommandListOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListCommands() on missing board error = %v, want ErrNotFound", err)
	}
}
