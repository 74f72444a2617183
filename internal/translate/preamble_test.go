package translate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPreambleLoaderEmptyPath(t *testing.T) {
	l, err := NewPreambleLoader("", nil)
	if err != nil {
		t.Fatalf("NewPreambleLoader() error = %v", err)
	}
	if got := l.Text(); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
}

func TestPreambleLoaderMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preamble.txt")
	l, err := NewPreambleLoader(path, nil)
	if err != nil {
		t.Fatalf("NewPreambleLoader() error = %v for missing file", err)
	}
	if got := l.Text(); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
}

func TestPreambleLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preamble.txt")
	if err := os.WriteFile(path, []byte("Draw boldly.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := NewPreambleLoader(path, nil)
	if err != nil {
		t.Fatalf("NewPreambleLoader() error = %v", err)
	}
	if got := l.Text(); got != "Draw boldly." {
		t.Errorf("Text() = %q, want trimmed file contents", got)
	}
}
