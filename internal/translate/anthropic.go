package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/haasonsaas/easel/pkg/actions"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// jsonProtocolInstructions is appended to the shared system prompt for the
// JSON-object protocol. An explicit empty-actions document is the documented
// way to signal "command not understood".
const jsonProtocolInstructions = `Respond with a single JSON object of the form {"actions": [...]} and nothing else — no prose, no markdown. Each element is one action object carrying a "type" field naming the action plus that action's fields. If the command has no actionable intent, respond with exactly {"actions": []}.`

// AnthropicConfig configures the JSON-object backend.
type AnthropicConfig struct {
	// APIKey is required; the constructor fails without it. Both backends
	// enforce the key at startup so deployments fail fast consistently.
	APIKey string

	// BaseURL overrides the API endpoint. Used by tests to point at a fake
	// upstream.
	BaseURL string

	// Model defaults to claude-sonnet-4-20250514.
	Model string

	// Timeout bounds each upstream call. Default 30s.
	Timeout time.Duration

	// MaxRetries and RetryDelay shape the retry loop for transient
	// failures. Delay doubles per attempt.
	MaxRetries int
	RetryDelay time.Duration

	// Preamble supplies the optional operator prompt preamble.
	Preamble *PreambleLoader

	Logger *slog.Logger
}

// AnthropicTranslator implements Translator over a strict JSON-object
// protocol: the model is instructed to emit {"actions":[...]} and nothing
// else, and the document decodes through the shared action schema. Safe for
// concurrent use.
type AnthropicTranslator struct {
	client     anthropic.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	preamble   *PreambleLoader
	logger     *slog.Logger
}

// NewAnthropicTranslator validates the config and builds the backend.
func NewAnthropicTranslator(cfg AnthropicConfig) (*AnthropicTranslator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("translate: anthropic API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultAnthropicModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	options := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicTranslator{
		client:     anthropic.NewClient(options...),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		preamble:   cfg.Preamble,
		logger:     cfg.Logger.With("provider", "anthropic"),
	}, nil
}

// Name returns "anthropic".
func (t *AnthropicTranslator) Name() string { return "anthropic" }

// Translate sends the command under the JSON-object protocol and parses the
// returned document into actions. Unparseable output surfaces as an
// UpstreamError carrying the raw text for diagnostics.
func (t *AnthropicTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	if err := validateCommand(req.Command); err != nil {
		return nil, err
	}
	if tmpl := templateActions(req.Command); tmpl != nil {
		return &Result{Actions: tmpl, Command: req.Command, Provider: t.Name(), Model: t.model}, nil
	}

	ctx, cancel := withDeadline(ctx, t.timeout)
	defer cancel()

	system := BuildSystemPrompt(PromptOptions{CanvasContext: req.CanvasContext, Preamble: t.preamble.Text()}) +
		"\n\n" + jsonProtocolInstructions

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(t.model),
		MaxTokens: DefaultMaxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Command)),
		},
	}

	msg, err := t.complete(ctx, params)
	if err != nil {
		return nil, t.wrapError(err)
	}

	decoded, err := t.decodeResponse(msg)
	if err != nil {
		return nil, err
	}

	return &Result{
		Actions:  decoded,
		Command:  req.Command,
		Provider: t.Name(),
		Model:    t.model,
	}, nil
}

// complete runs the Messages call with exponential-backoff retries for
// transient failures.
func (t *AnthropicTranslator) complete(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := t.retryDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		msg, err := t.client.Messages.New(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if !IsRetryable(t.wrapError(err)) {
			return nil, err
		}
		t.logger.Warn("anthropic call failed, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// decodeResponse extracts the text blocks, strips any markdown fencing, and
// parses the {"actions":[...]} document.
func (t *AnthropicTranslator) decodeResponse(msg *anthropic.Message) ([]actions.Action, error) {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	raw := strings.TrimSpace(sb.String())

	cleaned := stripCodeFence(raw)

	var doc struct {
		Actions []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &UpstreamError{
			Reason:      ReasonBadResponse,
			Provider:    t.Name(),
			Model:       t.model,
			Message:     "model output is not a JSON actions document",
			RawResponse: raw,
			Cause:       err,
		}
	}

	out := []actions.Action{}
	for _, item := range doc.Actions {
		act, err := actions.Unmarshal(item)
		if err != nil {
			if errors.Is(err, actions.ErrUnknownAction) {
				t.logger.Debug("skipping unknown action type", "payload", string(item))
				continue
			}
			return nil, &UpstreamError{
				Reason:      ReasonBadResponse,
				Provider:    t.Name(),
				Model:       t.model,
				Message:     "action object does not match the schema",
				RawResponse: raw,
				Cause:       err,
			}
		}
		out = append(out, act)
	}
	return out, nil
}

// stripCodeFence unwraps ```json ... ``` style fencing some models add
// despite the instructions.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json").
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

type anthropicErrorPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *AnthropicTranslator) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsUpstreamError(err) {
		return err
	}
	upErr := NewUpstreamError(t.Name(), t.model, err)
	if errors.Is(err, context.DeadlineExceeded) {
		upErr.Reason = ReasonTimeout
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		upErr = upErr.WithStatus(apiErr.StatusCode)
		if raw := apiErr.RawJSON(); raw != "" {
			var payload anthropicErrorPayload
			if json.Unmarshal([]byte(raw), &payload) == nil {
				if payload.Error.Message != "" {
					upErr = upErr.WithMessage(payload.Error.Message)
				}
				if payload.Error.Type != "" {
					upErr = upErr.WithCode(payload.Error.Type)
				}
			}
		}
	}
	return upErr
}
