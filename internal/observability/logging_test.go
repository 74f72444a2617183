package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func parseRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("no log output")
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, line)
	}
	return record
}

func TestLoggerRedactsAPIKeys(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		secret string
	}{
		{
			name:   "anthropic key",
			msg:    "configured with sk-ant-REDACTED",
			secret: "sk-ant-api03",
		},
		{
			name:   "openai key",
			msg:    "configured with sk-aaaaaaaaaaaaaaaabbbbbbbbbbbbbbbbcccccccccccccccc",
			secret: "sk-aaaa",
		},
		{
			name:   "inline api key assignment",
			msg:    "api_key=verysecretvalue12345678",
			secret: "verysecretvalue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(LogConfig{Output: &buf})
			logger.Info(context.Background(), tt.msg)

			out := buf.String()
			if strings.Contains(out, tt.secret) {
				t.Errorf("secret leaked into log output: %s", out)
			}
			if !strings.Contains(out, "[REDACTED]") {
				t.Errorf("expected [REDACTED] marker, got: %s", out)
			}
		})
	}
}

func TestLoggerRedactsMapValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf})
	logger.Info(context.Background(), "loading config", "llm", map[string]any{
		"api_key": "plaintext-secret",
		"model":   "gpt-4",
	})

	out := buf.String()
	if strings.Contains(out, "plaintext-secret") {
		t.Errorf("map secret leaked: %s", out)
	}
	if !strings.Contains(out, "gpt-4") {
		t.Errorf("non-sensitive map value dropped: %s", out)
	}
}

func TestLoggerContextCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf})

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithBoardID(ctx, "board-9")
	ctx = WithProvider(ctx, "openai")
	logger.Info(ctx, "translated command", "actions", 3)

	record := parseRecord(t, &buf)
	if record["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", record["request_id"])
	}
	if record["board_id"] != "board-9" {
		t.Errorf("board_id = %v, want board-9", record["board_id"])
	}
	if record["provider"] != "openai" {
		t.Errorf("provider = %v, want openai", record["provider"])
	}
	if record["actions"] != float64(3) {
		t.Errorf("actions = %v, want 3", record["actions"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Debug(context.Background(), "noise")
	logger.Info(context.Background(), "still noise")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}

	logger.Warn(context.Background(), "kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %s", buf.String())
	}
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: "text", Output: &buf})
	logger.Info(context.Background(), "hello")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected text format, got JSON: %s", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("message missing: %s", out)
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Output: &buf}).WithFields("component", "translator")
	logger.Info(context.Background(), "ready")

	record := parseRecord(t, &buf)
	if record["component"] != "translator" {
		t.Errorf("component = %v, want translator", record["component"])
	}
}

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		if got := LogLevelFromString(tt.in).String(); got != tt.want {
			t.Errorf("LogLevelFromString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
