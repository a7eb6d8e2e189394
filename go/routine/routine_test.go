package routine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRoutineTicker(t *testing.T) {
	var calls atomic.Int32
	r := New("ticker", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil).WithTicker(5 * time.Millisecond).Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	r.Close()

	select {
	case <-r.Done():
	default:
		t.Fatal("routine did not exit")
	}
	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, after, calls.Load())
}

func TestRoutineTrigger(t *testing.T) {
	calls := make(chan struct{}, 10)
	r := New("trigger", func(ctx context.Context) error {
		calls <- struct{}{}
		return nil
	}, nil).Start(context.Background())
	defer r.Close()

	<-calls
	select {
	case <-calls:
		t.Fatal("routine ran without a trigger")
	case <-time.After(20 * time.Millisecond):
	}
	r.Trigger()
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("trigger did not run the routine")
	}
}

func TestRoutineBackOff(t *testing.T) {
	var calls atomic.Int32
	r := New("backoff", func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("not yet")
		}
		return nil
	}, nil).WithConstantBackOff(time.Millisecond).Start(context.Background())
	defer r.Close()
	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, time.Millisecond)
}

func TestRoutinePermanentError(t *testing.T) {
	tests := []struct {
		name    string
		fn      FN
		max     int
		wantErr string
	}{
		{
			name:    "permanent error",
			fn:      func(ctx context.Context) error { return NewPermanentError("bad %s", "config") },
			wantErr: "permanent error: bad config",
		},
		{
			name:    "wrapped permanent error",
			fn:      func(ctx context.Context) error { return errors.Join(errors.New("outer"), NewPermanentError("inner")) },
			wantErr: "inner",
		},
		{
			name:    "max consecutive errors",
			fn:      func(ctx context.Context) error { return errors.New("flaky") },
			max:     3,
			wantErr: "exceeded max consecutive errors (3): flaky",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := make(chan error, 1)
			r := New(tt.name, tt.fn, func(err error) { errs <- err }).
				WithMaxConsecutiveErrors(tt.max).
				WithConstantBackOff(time.Millisecond).
				Start(context.Background())
			select {
			case err := <-errs:
				require.ErrorContains(t, err, tt.wantErr)
			case <-time.After(time.Second):
				t.Fatal("no permanent error")
			}
			<-r.Done()
			r.Close()
		})
	}
}

func TestRoutineTimeout(t *testing.T) {
	errs := make(chan error, 1)
	r := New("timeout", func(ctx context.Context) error {
		<-ctx.Done()
		return NewPermanentError("%w", ctx.Err())
	}, func(err error) { errs <- err }).WithTimeout(time.Millisecond).Start(context.Background())
	defer r.Close()
	require.ErrorIs(t, <-errs, context.DeadlineExceeded)
}

func TestCloseInParallel(t *testing.T) {
	fn := func(ctx context.Context) error { return nil }
	routines := []*Routine{
		New("a", fn, nil).Start(context.Background()),
		New("b", fn, nil).WithTicker(time.Millisecond).Start(context.Background()),
	}
	CloseInParallelFN(routines)()
	for _, r := range routines {
		<-r.Done()
	}
}

func TestRoutineMetrics(t *testing.T) {
	var calls atomic.Int32
	r := New("metrics", func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("first call fails")
		}
		return nil
	}, nil).WithConstantBackOff(time.Millisecond).Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	require.Equal(t, float64(1), testutil.ToFloat64(getMetrics().running.WithLabelValues("metrics")))
	r.Close()

	require.Equal(t, float64(0), testutil.ToFloat64(getMetrics().running.WithLabelValues("metrics")))
	require.Equal(t, float64(1), testutil.ToFloat64(getMetrics().executionsTotal.WithLabelValues("metrics", "error")))
	require.GreaterOrEqual(t, testutil.ToFloat64(getMetrics().executionsTotal.WithLabelValues("metrics", "ok")), float64(1))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, name := range []string{
		"fileicon_routine_executions_total",
		"fileicon_routine_execution_duration_seconds",
		"fileicon_routine_running",
	} {
		require.True(t, names[name], "metric %s is not registered", name)
	}
}
