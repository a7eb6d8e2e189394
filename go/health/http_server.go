package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/malonaz/fileicon/go/routine"
)

// Status of a registered check.
type Status string

const (
	StatusUnknown    Status = "UNKNOWN"
	StatusServing    Status = "SERVING"
	StatusNotServing Status = "NOT_SERVING"
)

// Opts holds health opts.
type Opts struct {
	Disable         bool `long:"disable" env:"DISABLE" description:"Set to true to disable health check"`
	Port            int  `long:"port" env:"PORT" description:"Port to serve Health on" default:"4040"`
	IntervalSeconds int  `long:"interval-seconds" env:"INTERVAL_SECONDS" description:"Health check interval in seconds" default:"10"`
	TimeoutSeconds  int  `long:"timeout-seconds" env:"TIMEOUT_SECONDS" description:"Health check timeout in seconds" default:"30"`
}

// Server serves /liveness and /readiness. Registered checks run periodically and readiness
// reports the worst of their statuses.
type Server struct {
	opts       *Opts
	log        *slog.Logger
	mutex      sync.RWMutex
	ready      bool
	checks     map[string]Check
	statuses   map[string]Status
	httpServer *http.Server
}

// NewServer creates a new health check server.
func NewServer(opts *Opts) *Server {
	return &Server{
		opts:     opts,
		log:      slog.Default(),
		checks:   map[string]Check{},
		statuses: map[string]Status{},
	}
}

func (s *Server) WithLogger(logger *slog.Logger) *Server {
	s.log = logger
	return s
}

// Register registers checks under name. Its status is unknown until the checks first run.
func (s *Server) Register(name string, checks ...Check) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.checks[name] = CombineChecks(checks...)
	s.statuses[name] = StatusUnknown
	s.log.Debug("registered health check", "name", name, "checks", len(checks))
}

// MarkReady marks the server as ready to serve traffic.
// This should be called when your application has finished initialization.
func (s *Server) MarkReady() {
	s.mutex.Lock()
	s.ready = true
	s.mutex.Unlock()
	s.log.Info("health server marked as ready")
}

func (s *Server) isReady() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.ready
}

// RunChecks runs every registered check once and records the results.
func (s *Server) RunChecks(ctx context.Context) {
	s.mutex.RLock()
	checks := maps.Clone(s.checks)
	s.mutex.RUnlock()

	var wg sync.WaitGroup
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := s.runCheck(ctx, name, check)
			s.mutex.Lock()
			s.statuses[name] = status
			s.mutex.Unlock()
		}()
	}
	wg.Wait()
}

func (s *Server) runCheck(ctx context.Context, name string, check Check) Status {
	checkCtx, cancel := context.WithTimeout(ctx, time.Duration(s.opts.TimeoutSeconds)*time.Second)
	defer cancel()
	err := check(checkCtx)
	if err == nil {
		return StatusServing
	}
	log := s.log.With("name", name, "error", err)
	switch {
	case errors.Is(err, context.Canceled):
		log.DebugContext(ctx, "health check cancelled")
		return StatusUnknown
	case errors.Is(err, context.DeadlineExceeded):
		log.DebugContext(ctx, "health check timed out")
		return StatusUnknown
	default:
		log.WarnContext(ctx, "health check failed")
		return StatusNotServing
	}
}

// Status returns the worst status over every registered check, and the status of each.
func (s *Server) Status() (Status, map[string]Status) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	overall := StatusServing
	for _, status := range s.statuses {
		if status == StatusNotServing {
			overall = StatusNotServing
			break
		}
		if status == StatusUnknown {
			overall = StatusUnknown
		}
	}
	return overall, maps.Clone(s.statuses)
}

// CheckFn returns a check that fails unless the server is ready and every registered check is serving.
func (s *Server) CheckFn() Check {
	return func(ctx context.Context) error {
		if !s.isReady() {
			return errors.New("server not ready")
		}
		if status, _ := s.Status(); status != StatusServing {
			return fmt.Errorf("health check returned %s", status)
		}
		return nil
	}
}

type readinessResponse struct {
	Status   Status            `json:"status"`
	Statuses map[string]Status `json:"statuses"`
}

// Handler returns the handler serving /liveness and /readiness.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", func(w http.ResponseWriter, r *http.Request) {
		if s.isReady() {
			w.Write([]byte("ok"))
		} else {
			http.Error(w, "server not ready", http.StatusServiceUnavailable)
		}
	})
	mux.HandleFunc("/readiness", func(w http.ResponseWriter, r *http.Request) {
		if !s.isReady() {
			s.log.DebugContext(r.Context(), "readiness check failed: server not ready")
			http.Error(w, "server not ready", http.StatusServiceUnavailable)
			return
		}
		status, statuses := s.Status()
		w.Header().Set("Content-Type", "application/json")
		if status != StatusServing {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(&readinessResponse{Status: status, Statuses: statuses}); err != nil {
			s.log.ErrorContext(r.Context(), "failed to write readiness response", "error", err)
		}
	})
	return mux
}

// Serve runs the registered checks every interval and serves the probes until the context is done or Stop is called.
func (s *Server) Serve(ctx context.Context) error {
	if s.opts.Disable {
		return nil
	}
	interval := time.Duration(max(s.opts.IntervalSeconds, 1)) * time.Second
	checks := routine.New("health-checks", func(ctx context.Context) error {
		s.RunChecks(ctx)
		return nil
	}, nil).WithLogger(s.log).WithTicker(interval).Start(ctx)
	defer checks.Close()

	s.mutex.Lock()
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.opts.Port),
		Handler: s.Handler(),
	}
	httpServer := s.httpServer
	s.mutex.Unlock()

	s.log.InfoContext(ctx, "serving health check", "port", s.opts.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server exited unexpectedly: %w", err)
	}
	return nil
}

// Stop stops the health server.
func (s *Server) Stop(ctx context.Context) error {
	s.mutex.RLock()
	httpServer := s.httpServer
	s.mutex.RUnlock()
	if httpServer == nil {
		return nil
	}
	s.log.Info("stopping health server")
	return httpServer.Shutdown(ctx)
}
