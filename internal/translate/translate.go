// Package translate turns free-text whiteboard commands into typed canvas
// actions by calling an LLM backend. One Translator interface, two backends:
// OpenAI speaks the function-calling protocol, Anthropic the JSON-object
// protocol. Both share the prompt builder and the action decoding in
// pkg/actions, so defaults and vocabulary can never drift between providers.
package translate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/haasonsaas/easel/pkg/actions"
)

// Defaults applied by both backends when the corresponding config field is
// unset.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultMaxTokens  = 2048
)

// Request is one translation call. CanvasContext is an opaque snapshot of the
// current board, embedded verbatim in the prompt; the translator never parses
// it.
type Request struct {
	Command       string
	CanvasContext json.RawMessage
}

// Result is the outcome of a translation. An empty Actions list is valid and
// means no actionable intent was recognized.
type Result struct {
	Actions  []actions.Action
	Command  string
	Provider string
	Model    string
}

// Translator converts a command into an ordered action list.
//
// Implementations return ErrEmptyCommand for blank input without touching the
// upstream, and *UpstreamError for transport failures, deadline expiry, or
// model output that cannot be parsed into the action schema.
type Translator interface {
	Translate(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// validateCommand rejects blank commands before any upstream work happens.
func validateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}
	return nil
}

// withDeadline bounds the upstream call. A zero timeout falls back to
// DefaultTimeout; a request that would otherwise hang surfaces as a timeout
// UpstreamError instead of blocking forever.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
