// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package observability serves Prometheus metrics and health probes over HTTP.
package observability

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker reports whether the process can serve traffic. A nil
// error means ready.
type ReadinessChecker func(ctx context.Context) error

// readinessTimeout bounds one readiness check.
const readinessTimeout = 2 * time.Second

// Server provides /metrics, /healthz/liveness and /healthz/readiness.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	ready      ReadinessChecker
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer creates a server listening on addr ("127.0.0.1:9100", or ":0"
// for an ephemeral port). A nil ready checker always reports ready; a nil
// logger means slog.Default().
func NewServer(addr string, ready ReadinessChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		addr:     addr,
		registry: registry,
		ready:    ready,
		logger:   logger,
	}
}

// Registry is where application collectors are registered before Start.
func (s *Server) Registry() prometheus.Registerer {
	return s.registry
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)
	return mux
}

// Start begins serving. The returned channel receives a serve failure and is
// closed once the server stops.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Code("OBSERVABILITY_RUNNING").Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("OBSERVABILITY_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop shuts the server down gracefully. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.running.Store(true)
		return oops.Code("OBSERVABILITY_SHUTDOWN_FAILED").Wrap(err)
	}

	s.logger.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "ok\n")
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.ready == nil {
		writeStatus(w, http.StatusOK, "ok\n")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()
	if err := s.ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "readiness check failed", "error", err)
		writeStatus(w, http.StatusServiceUnavailable, "not ready\n")
		return
	}
	writeStatus(w, http.StatusOK, "ok\n")
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // health check write error is acceptable, client may disconnect
	w.Write([]byte(body))
}
