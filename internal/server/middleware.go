package server

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/haasonsaas/easel/internal/observability"
)

// responseWriter captures the status code for logging and metrics.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack forwards to the underlying writer so websocket upgrades still work
// through the wrapper.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

// withMiddleware wraps the mux with CORS, request correlation, tracing,
// logging, and metrics. CORS headers go on every response, preflight included.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		setCORSHeaders(w)

		ctx := observability.WithRequestID(r.Context(), uuid.NewString())
		ctx, span := s.tracer.TraceHTTPRequest(ctx, r.Method, r.URL.Path)
		r = r.WithContext(ctx)

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		s.metrics.RequestStarted()
		next.ServeHTTP(wrapped, r)
		s.metrics.RequestFinished()

		span.SetAttributes(attribute.Int("http.status_code", wrapped.status))
		span.End()

		s.metrics.RecordRequest(r.Method, routeLabel(r.URL.Path), strconv.Itoa(wrapped.status), time.Since(start))
		s.logger.Debug(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// routeLabel collapses board subtree paths to fixed labels so the metric's
// cardinality stays bounded.
func routeLabel(path string) string {
	id, rest, ok := splitBoardPath(path)
	if !ok || id == "" {
		return path
	}
	switch rest {
	case "":
		return "/boards/{id}"
	case "commands":
		return "/boards/{id}/commands"
	case "stream":
		return "/boards/{id}/stream"
	default:
		return "/boards/{id}/..."
	}
}
