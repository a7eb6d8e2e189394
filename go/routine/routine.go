// Package routine runs a function in a background loop, on a ticker or on demand.
package routine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PermanentError stops a routine instead of retrying.
type PermanentError struct{ Err error }

// Error implements the error interface.
func (e *PermanentError) Error() string { return fmt.Sprintf("permanent error: %v", e.Err) }

// Unwrap returns the wrapped error.
func (e *PermanentError) Unwrap() error { return e.Err }

// NewPermanentError instantiates and returns a new permanent error.
func NewPermanentError(format string, args ...any) *PermanentError {
	return &PermanentError{Err: fmt.Errorf(format, args...)}
}

// FN is a routine function.
type FN func(context.Context) error

// Routine executes a function in a loop in its own goroutine.
// The function runs once on Start, then again on every tick or trigger, and after a backoff when it fails.
type Routine struct {
	log *slog.Logger

	name             string
	fn               FN
	onPermanentError func(error)
	trigger          chan struct{}
	exited           chan struct{}
	closeOnce        sync.Once
	cancel           context.CancelFunc

	timeout              time.Duration
	interval             time.Duration
	backOff              backoff.BackOff
	maxConsecutiveErrors int
}

// New instantiates and returns a new Routine. onPermanentError is called from the routine's goroutine, and may be nil.
func New(name string, fn FN, onPermanentError func(error)) *Routine {
	return &Routine{
		log:              slog.Default(),
		name:             name,
		fn:               fn,
		onPermanentError: onPermanentError,
		trigger:          make(chan struct{}, 1),
		exited:           make(chan struct{}),
		cancel:           func() {},
		backOff:          &backoff.StopBackOff{},
	}
}

func (r *Routine) WithLogger(logger *slog.Logger) *Routine {
	r.log = logger
	return r
}

// WithMaxConsecutiveErrors stops the routine once fn fails this many times in a row.
func (r *Routine) WithMaxConsecutiveErrors(maxConsecutiveErrors int) *Routine {
	r.maxConsecutiveErrors = maxConsecutiveErrors
	return r
}

// WithTimeout bounds each execution of fn.
func (r *Routine) WithTimeout(timeout time.Duration) *Routine {
	r.timeout = timeout
	return r
}

// WithTicker executes fn every interval.
func (r *Routine) WithTicker(interval time.Duration) *Routine {
	r.interval = interval
	return r
}

// WithConstantBackOff retries a failed execution after interval rather than waiting for the next tick.
func (r *Routine) WithConstantBackOff(interval time.Duration) *Routine {
	r.backOff = backoff.NewConstantBackOff(interval)
	return r
}

// WithExponentialBackOff retries a failed execution after an exponentially growing delay capped at maxInterval.
func (r *Routine) WithExponentialBackOff(initial, maxInterval time.Duration) *Routine {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = 0
	r.backOff = b
	return r
}

// Trigger requests an execution of fn. It never blocks; triggers received while one is pending are coalesced.
func (r *Routine) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Done is closed once the routine has exited its loop.
func (r *Routine) Done() <-chan struct{} { return r.exited }

// Start starts the routine. It does not block.
func (r *Routine) Start(ctx context.Context) *Routine {
	ctx, r.cancel = context.WithCancel(ctx)
	r.log = r.log.With("routine", r.name)
	r.log.InfoContext(ctx, "started routine")
	getMetrics().running.WithLabelValues(r.name).Set(1)

	go func() {
		defer func() {
			getMetrics().running.WithLabelValues(r.name).Set(0)
			close(r.exited)
		}()
		var tick <-chan time.Time
		if r.interval > 0 {
			ticker := time.NewTicker(r.interval)
			defer ticker.Stop()
			tick = ticker.C
		}
		r.backOff.Reset()
		consecutiveErrors := 0
		for {
			var retry <-chan time.Time
			err := r.execute(ctx)
			switch {
			case err == nil:
				consecutiveErrors = 0
				r.backOff.Reset()
			case ctx.Err() != nil:
				r.log.InfoContext(ctx, "context done", "error", ctx.Err())
				return
			default:
				consecutiveErrors++
				if r.maxConsecutiveErrors > 0 && consecutiveErrors >= r.maxConsecutiveErrors {
					err = NewPermanentError("exceeded max consecutive errors (%d): %w", r.maxConsecutiveErrors, err)
				}
				var permanent *PermanentError
				if errors.As(err, &permanent) {
					r.log.ErrorContext(ctx, "exiting due to permanent error", "error", err)
					if r.onPermanentError != nil {
						r.onPermanentError(err)
					}
					return
				}
				r.log.ErrorContext(ctx, "executing fn", "error", err)
				if next := r.backOff.NextBackOff(); next != backoff.Stop {
					retry = time.After(next)
				}
			}

			select {
			case <-ctx.Done():
				r.log.InfoContext(ctx, "context done", "error", ctx.Err())
				return
			case <-tick:
			case <-r.trigger:
				r.log.DebugContext(ctx, "triggered")
			case <-retry:
				r.log.DebugContext(ctx, "retrying")
			}
		}
	}()
	return r
}

// Close stops the routine and blocks until it has exited its loop. It must only be called after Start.
func (r *Routine) Close() {
	r.closeOnce.Do(func() {
		r.log.Info("closing")
		r.cancel()
		<-r.exited
		r.log.Info("closed")
	})
}

func (r *Routine) execute(ctx context.Context) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()
	err := r.fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	getMetrics().executionsTotal.WithLabelValues(r.name, status).Inc()
	getMetrics().durationSeconds.WithLabelValues(r.name).Observe(time.Since(start).Seconds())
	return err
}

// CloseInParallelFN returns a function closing routines in parallel and blocking until all of them have exited their loop.
func CloseInParallelFN(routines []*Routine) func() {
	return func() {
		var wg sync.WaitGroup
		for _, r := range routines {
			wg.Add(1)
			go func() { defer wg.Done(); r.Close() }()
		}
		wg.Wait()
	}
}
