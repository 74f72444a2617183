package commandbar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haasonsaas/easel/internal/translate"
	"github.com/haasonsaas/easel/pkg/actions"
)

// Client submits commands to the /ai-command endpoint and maps the response
// envelope back onto the translate types, so bar callers see the same
// contract whether they run in-process or over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = translate.DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type commandRequest struct {
	Command       string          `json:"command"`
	CanvasContext json.RawMessage `json:"canvasContext,omitempty"`
}

type commandResponse struct {
	Actions   []json.RawMessage `json:"actions"`
	Command   string            `json:"command"`
	Timestamp string            `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Submit posts a command and decodes the returned action list.
func (c *Client) Submit(ctx context.Context, command string, canvasContext json.RawMessage) (*translate.Result, error) {
	body, err := json.Marshal(commandRequest{Command: command, CanvasContext: canvasContext})
	if err != nil {
		return nil, fmt.Errorf("commandbar: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai-command", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("commandbar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, translate.NewUpstreamError("server", "", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, translate.NewUpstreamError("server", "", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, payload)
	}

	var envelope commandResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &translate.UpstreamError{
			Reason:      translate.ReasonBadResponse,
			Provider:    "server",
			Message:     "response envelope is not valid JSON",
			RawResponse: string(payload),
			Cause:       err,
		}
	}

	decoded := make([]actions.Action, 0, len(envelope.Actions))
	for i, item := range envelope.Actions {
		act, err := actions.Unmarshal(item)
		if err != nil {
			return nil, fmt.Errorf("commandbar: action %d: %w", i, err)
		}
		decoded = append(decoded, act)
	}

	return &translate.Result{Actions: decoded, Command: envelope.Command}, nil
}

func decodeError(status int, payload []byte) error {
	var body errorResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		body.Error = string(payload)
	}

	// Only the blank-command rejection maps back to ErrEmptyCommand; other
	// 400s (e.g. a malformed request body) stay upstream errors.
	if status == http.StatusBadRequest && body.Error == "Command is required" {
		return translate.ErrEmptyCommand
	}

	upErr := &translate.UpstreamError{
		Provider:    "server",
		Reason:      translate.ReasonUnknown,
		Message:     body.Error,
		RawResponse: body.Details,
	}
	return upErr.WithStatus(status)
}
