// Package prometheus serves the default Prometheus registry.
package prometheus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Opts holds prometheus opts.
type Opts struct {
	Disable bool `long:"disable" env:"DISABLE" description:"Set to true to disable prometheus metrics"`
	Port    int  `long:"port" env:"PORT" description:"Port to serve Prometheus metrics on" default:"13434"`
}

func (o *Opts) Enabled() bool {
	return o != nil && !o.Disable
}

type Server struct {
	opts   *Opts
	log    *slog.Logger
	mutex  sync.Mutex
	server *http.Server
}

func NewServer(opts *Opts) *Server {
	return &Server{
		opts: opts,
		log:  slog.Default(),
	}
}

func (s *Server) WithLogger(logger *slog.Logger) *Server {
	s.log = logger
	return s
}

// Handler returns the handler serving /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve serves metrics until Stop is called. It returns immediately when metrics are disabled.
func (s *Server) Serve(ctx context.Context) error {
	if !s.opts.Enabled() {
		return nil
	}
	s.mutex.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.Handler(),
	}
	server := s.server
	s.mutex.Unlock()

	s.log.InfoContext(ctx, "serving Prometheus metrics", "port", s.opts.Port, "endpoint", "/metrics")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("prometheus server exited unexpectedly: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mutex.Lock()
	server := s.server
	s.mutex.Unlock()
	if server == nil {
		return nil
	}

	s.log.Info("stopping Prometheus server")
	if err := server.Shutdown(ctx); err != nil {
		s.log.Error("Prometheus server forced to shutdown", "error", err)
		return err
	}
	s.log.Info("Prometheus server stopped gracefully")
	return nil
}
