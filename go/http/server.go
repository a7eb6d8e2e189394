// Package http serves registered routes over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/malonaz/fileicon/go/logging"
)

// Opts holds HTTP server options.
type Opts struct {
	Port                int           `long:"port" env:"PORT" description:"Port to serve HTTP on" default:"8080"`
	ReadTimeout         time.Duration `long:"read-timeout" env:"READ_TIMEOUT" description:"HTTP read timeout" default:"30s"`
	WriteTimeout        time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" description:"HTTP write timeout" default:"30s"`
	IdleTimeout         time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT"  description:"HTTP idle timeout" default:"120s"`
	GracefulStopTimeout int           `long:"graceful-stop-timeout" env:"GRACEFUL_STOP_TIMEOUT" description:"How many seconds to wait for graceful stop." default:"30"`
}

// Server holds the HTTP server state.
type Server struct {
	opts       *Opts
	log        *slog.Logger
	mux        *http.ServeMux
	patternSet map[string]struct{}

	mutex      sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(opts *Opts) *Server {
	return &Server{
		opts:       opts,
		log:        slog.Default(),
		mux:        http.NewServeMux(),
		patternSet: map[string]struct{}{},
	}
}

func (s *Server) WithLogger(logger *slog.Logger) *Server {
	s.log = logger
	return s
}

// RegisterRoute registers handler for pattern. Registering a pattern twice is an error.
func (s *Server) RegisterRoute(pattern string, handler func(http.ResponseWriter, *http.Request)) error {
	if _, ok := s.patternSet[pattern]; ok {
		return fmt.Errorf("duplicate pattern registered [%s]", pattern)
	}
	s.patternSet[pattern] = struct{}{}
	s.mux.HandleFunc(pattern, handler)
	return nil
}

// Handler returns the handler serving the registered routes.
// Every request gets a request id, attached to its context for logging and echoed in the X-Request-Id header.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := logging.WithAttrs(r.Context(), "request_id", requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(recorder, r.WithContext(ctx))
		s.log.DebugContext(ctx, "served request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start),
		)
	})
}

// Serve the HTTP server.
func (s *Server) Serve(ctx context.Context) error {
	s.mutex.Lock()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}
	httpServer := s.httpServer
	s.mutex.Unlock()

	s.log.InfoContext(ctx, "starting HTTP server", "port", s.opts.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server exited unexpectedly: %w", err)
	}
	return nil
}

func (s *Server) server() *http.Server {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.httpServer
}

// Stop immediately stops the HTTP server.
func (s *Server) Stop() error {
	httpServer := s.server()
	if httpServer == nil {
		return nil
	}
	s.log.Info("stopping HTTP server")
	return httpServer.Close()
}

// GracefulStop gracefully stops the HTTP server.
func (s *Server) GracefulStop() error {
	httpServer := s.server()
	if httpServer == nil {
		return nil
	}
	s.log.Info("gracefully stopping HTTP server")
	duration := time.Duration(s.opts.GracefulStopTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	err := httpServer.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.log.Warn("graceful shutdown timed out")
		// Force close any remaining connections
		return s.Stop()
	}
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
