package routine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "fileicon"
	metricsSubsystem = "routine"
)

var (
	metricsOnce sync.Once
	metrics     *routineMetrics
)

type routineMetrics struct {
	executionsTotal *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	running         *prometheus.GaugeVec
}

// getMetrics registers the routine metrics on first use, so that binaries without routines export none.
func getMetrics() *routineMetrics {
	metricsOnce.Do(func() {
		metrics = &routineMetrics{
			executionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: metricsSubsystem,
					Name:      "executions_total",
					Help:      "Executions of a routine's function, by outcome (ok or error)",
				},
				[]string{"routine", "status"},
			),
			durationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: metricsSubsystem,
					Name:      "execution_duration_seconds",
					Help:      "Duration of a routine's function",
					Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
				},
				[]string{"routine"},
			),
			running: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: metricsSubsystem,
					Name:      "running",
					Help:      "1 while the routine's loop is running",
				},
				[]string{"routine"},
			),
		}
	})
	return metrics
}
