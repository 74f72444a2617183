// Package server exposes the whiteboard command API over HTTP: the
// /ai-command translation endpoint, board CRUD and command execution, a
// websocket event stream per board, and the health and metrics routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haasonsaas/easel/internal/board"
	"github.com/haasonsaas/easel/internal/observability"
	"github.com/haasonsaas/easel/internal/translate"
)

const shutdownTimeout = 5 * time.Second

// Config holds the listen address.
type Config struct {
	Host string
	Port int
}

// Server serves the command API. Construct with New, start with Start, stop
// with Shutdown.
type Server struct {
	config     Config
	translator translate.Translator
	manager    *board.Manager
	logger     *observability.Logger
	metrics    *observability.HTTPMetrics
	tracer     *observability.Tracer

	httpServer *http.Server
	listener   net.Listener
}

// New wires a server. metrics and tracer may be nil; recording and spans
// become no-ops.
func New(config Config, translator translate.Translator, manager *board.Manager, logger *observability.Logger, metrics *observability.HTTPMetrics, tracer *observability.Tracer) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.LogConfig{})
	}
	return &Server{
		config:     config,
		translator: translator,
		manager:    manager,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
	}
}

// Handler builds the full route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ai-command", s.handleAICommand)
	mux.HandleFunc("/boards", s.handleBoards)
	mux.HandleFunc("/boards/", s.handleBoardSubtree)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	return s.withMiddleware(mux)
}

// Start listens and serves in the background. It returns once the listener is
// bound, so the port is live when Start returns.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "http server error", "error", err)
		}
	}()

	s.logger.Info(ctx, "server listening", "addr", listener.Addr().String())
	return nil
}

// Addr reports the bound address, useful when Port was 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains in-flight requests. A nil ctx gets a 5s fallback deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
	}
	err := s.httpServer.Shutdown(ctx)
	s.httpServer = nil
	s.listener = nil
	return err
}
