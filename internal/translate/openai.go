package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/haasonsaas/easel/pkg/actions"
)

const defaultOpenAIModel = openai.GPT4o

// OpenAIConfig configures the function-calling backend.
type OpenAIConfig struct {
	// APIKey is required; the constructor fails without it so a
	// misconfigured deployment dies at startup, not on the first command.
	APIKey string

	// BaseURL overrides the API endpoint. Used by tests to point at a fake
	// upstream.
	BaseURL string

	// Model defaults to gpt-4o.
	Model string

	// Timeout bounds each upstream call. Default 30s.
	Timeout time.Duration

	// MaxRetries and RetryDelay shape the retry loop for transient
	// failures. Delay grows linearly per attempt.
	MaxRetries int
	RetryDelay time.Duration

	// Preamble supplies the optional operator prompt preamble.
	Preamble *PreambleLoader

	Logger *slog.Logger
}

// OpenAITranslator implements Translator over OpenAI's function-calling
// protocol: the five action variants are declared as tools, and each tool
// call in the response decodes into one Action. Safe for concurrent use.
type OpenAITranslator struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	preamble   *PreambleLoader
	logger     *slog.Logger
}

// NewOpenAITranslator validates the config and builds the backend.
func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("translate: openai API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
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

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAITranslator{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		preamble:   cfg.Preamble,
		logger:     cfg.Logger.With("provider", "openai"),
	}, nil
}

// Name returns "openai".
func (t *OpenAITranslator) Name() string { return "openai" }

// Translate sends the command with the action vocabulary declared as tools
// and decodes the returned tool calls. Unknown tool names are skipped; a
// response with no tool calls yields an empty action list.
func (t *OpenAITranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	if err := validateCommand(req.Command); err != nil {
		return nil, err
	}
	if tmpl := templateActions(req.Command); tmpl != nil {
		return &Result{Actions: tmpl, Command: req.Command, Provider: t.Name(), Model: t.model}, nil
	}

	ctx, cancel := withDeadline(ctx, t.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: BuildSystemPrompt(PromptOptions{CanvasContext: req.CanvasContext, Preamble: t.preamble.Text()}),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Command,
			},
		},
		Tools:     t.tools(),
		MaxTokens: DefaultMaxTokens,
	}

	resp, err := t.complete(ctx, chatReq)
	if err != nil {
		return nil, t.wrapError(err)
	}

	decoded, err := t.decodeResponse(resp)
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

// complete runs the chat completion with linear-backoff retries for
// transient failures. MaxRetries counts retries after the first attempt, so
// both backends make at most maxRetries+1 calls.
func (t *OpenAITranslator) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, ctx.Err()
			case <-time.After(t.retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := t.client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsRetryable(t.wrapError(err)) {
			return openai.ChatCompletionResponse{}, err
		}
		t.logger.Warn("openai call failed, retrying", "attempt", attempt+1, "error", err)
	}
	return openai.ChatCompletionResponse{}, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (t *OpenAITranslator) decodeResponse(resp openai.ChatCompletionResponse) ([]actions.Action, error) {
	out := []actions.Action{}
	if len(resp.Choices) == 0 {
		return out, nil
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		act, err := actions.Decode(call.Function.Name, []byte(call.Function.Arguments))
		if err != nil {
			if errors.Is(err, actions.ErrUnknownAction) {
				t.logger.Debug("skipping unknown tool call", "name", call.Function.Name)
				continue
			}
			return nil, &UpstreamError{
				Reason:      ReasonBadResponse,
				Provider:    t.Name(),
				Model:       t.model,
				Message:     fmt.Sprintf("tool call %s: %v", call.Function.Name, err),
				RawResponse: call.Function.Arguments,
				Cause:       err,
			}
		}
		out = append(out, act)
	}
	return out, nil
}

// tools declares the action vocabulary in OpenAI's tool format. The schema
// documents come straight from the shared definitions.
func (t *OpenAITranslator) tools() []openai.Tool {
	defs := actions.Definitions()
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        string(def.Name),
				Description: def.Description,
				Parameters:  def.Schema,
			},
		})
	}
	return out
}

func (t *OpenAITranslator) wrapError(err error) error {
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
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		upErr = upErr.WithStatus(apiErr.HTTPStatusCode).WithMessage(apiErr.Message)
		if code, ok := apiErr.Code.(string); ok {
			upErr = upErr.WithCode(code)
		}
	}
	return upErr
}
