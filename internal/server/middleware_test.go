package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/haasonsaas/easel/internal/board"
	"github.com/haasonsaas/easel/internal/observability"
	"github.com/haasonsaas/easel/internal/translate"
)

func TestMiddlewareEmitsRequestSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})

	// An endpoint-less tracer resolves through the global provider, so the
	// recorder above sees its spans.
	tracer, shutdown := observability.NewTracer(observability.TraceConfig{})
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	manager := board.NewManager(board.NewMemoryStore(), board.NewHub(), nil, nil)
	srv := New(Config{}, &fakeTranslator{result: &translate.Result{}}, manager, nil, nil, tracer)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var span sdktrace.ReadOnlySpan
	for _, ended := range recorder.Ended() {
		if ended.Name() == "http.request" {
			span = ended
			break
		}
	}
	if span == nil {
		t.Fatal("no http.request span recorded")
	}

	attrs := map[string]string{}
	var status int64
	for _, attr := range span.Attributes() {
		switch string(attr.Key) {
		case "http.status_code":
			status = attr.Value.AsInt64()
		default:
			attrs[string(attr.Key)] = attr.Value.AsString()
		}
	}
	if attrs["http.method"] != http.MethodGet {
		t.Errorf("http.method = %q, want GET", attrs["http.method"])
	}
	if attrs["http.path"] != "/healthz" {
		t.Errorf("http.path = %q, want /healthz", attrs["http.path"])
	}
	if status != http.StatusOK {
		t.Errorf("http.status_code = %d, want 200", status)
	}
}
