package commandbar

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/haasonsaas/easel/internal/translate"
)

// State is the bar's lifecycle state.
type State string

const (
	// StateIdle: bar hidden, no text.
	StateIdle State = "idle"
	// StateComposing: bar visible, accepting keystrokes.
	StateComposing State = "composing"
	// StateSubmitting: request in flight, input disabled.
	StateSubmitting State = "submitting"
)

var (
	// ErrNotComposing reports a submit outside the Composing state. While a
	// request is in flight this is the single-flight rejection.
	ErrNotComposing = errors.New("commandbar: not composing")

	// ErrBlankInput reports a submit with only whitespace in the input.
	ErrBlankInput = errors.New("commandbar: input is blank")
)

// Submitter sends a resolved command to the translation endpoint.
type Submitter interface {
	Submit(ctx context.Context, command string, canvasContext json.RawMessage) (*translate.Result, error)
}

// ResultFunc receives a successful submission: the translation result and the
// original pre-resolution text the user typed.
type ResultFunc func(result *translate.Result, originalText string)

// Bar is the command bar state machine. All methods are safe for concurrent
// use; submission is single-flight per bar instance.
type Bar struct {
	submitter Submitter
	history   *History
	onResult  ResultFunc
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	text    string
	lastErr string
}

// New creates an idle bar. onResult may be nil.
func New(submitter Submitter, history *History, onResult ResultFunc, logger *slog.Logger) *Bar {
	if history == nil {
		history = NewHistory(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bar{
		submitter: submitter,
		history:   history,
		onResult:  onResult,
		logger:    logger.With("component", "commandbar"),
		state:     StateIdle,
	}
}

// State returns the current state.
func (b *Bar) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Text returns the composed input.
func (b *Bar) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Err returns the last submission error message, retained across the
// Submitting→Composing transition so the user sees why the retry is needed.
func (b *Bar) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Open shows the bar (the keyboard-shortcut transition). No-op unless Idle.
func (b *Bar) Open() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateIdle {
		b.state = StateComposing
	}
}

// Cancel hides the bar and clears its input. No-op while a request is in
// flight.
func (b *Bar) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateComposing {
		b.state = StateIdle
		b.text = ""
		b.lastErr = ""
	}
}

// SetText replaces the composed input. Ignored unless Composing.
func (b *Bar) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateComposing {
		b.text = text
	}
}

// History exposes the bar's command history.
func (b *Bar) History() *History { return b.history }

// Submit resolves references in the composed text, sends it, and transitions
// per the outcome: success returns to Idle with input cleared and the result
// dispatched; failure returns to Composing with the text and error retained.
// A submit while one is already in flight fails with ErrNotComposing.
func (b *Bar) Submit(ctx context.Context, canvasContext json.RawMessage) error {
	b.mu.Lock()
	if b.state != StateComposing {
		state := b.state
		b.mu.Unlock()
		b.logger.Debug("submit rejected", "state", string(state))
		return ErrNotComposing
	}
	original := b.text
	if strings.TrimSpace(original) == "" {
		b.mu.Unlock()
		return ErrBlankInput
	}
	b.state = StateSubmitting
	b.mu.Unlock()

	resolved := Resolve(original, b.history)
	if resolved != original {
		b.logger.Debug("resolved references", "original", original, "resolved", resolved)
	}

	result, err := b.submitter.Submit(ctx, resolved, canvasContext)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateComposing
		b.lastErr = err.Error()
		return err
	}

	b.state = StateIdle
	b.text = ""
	b.lastErr = ""
	b.history.Add(Entry{Command: original, Resolved: resolved})

	if b.onResult != nil {
		// Hand the executor both the translation and the literal user
		// phrasing.
		b.onResult(result, original)
	}
	return nil
}
