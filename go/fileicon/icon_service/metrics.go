package icon_service

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/malonaz/fileicon/go/fileicon"
)

var (
	metricsOnce sync.Once
	metrics     *serviceMetrics
)

type serviceMetrics struct {
	rendersTotal    *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
}

func getMetrics() *serviceMetrics {
	metricsOnce.Do(func() {
		metrics = &serviceMetrics{
			rendersTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "fileicon_renders_total",
					Help: "Total number of rendered icons",
				},
				[]string{"type", "labelled", "format"},
			),
			durationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "fileicon_render_duration_seconds",
					Help:    "Duration of icon renders, including serialization",
					Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
				},
				[]string{"route"},
			),
		}
	})
	return metrics
}

// Unrecognized types share a label value to bound cardinality.
func typeLabel(typ fileicon.Type) string {
	switch {
	case typ == "":
		return "none"
	case !typ.Valid():
		return "unknown"
	default:
		return typ.String()
	}
}

func observeRender(route, format string, opts *fileicon.Options, start time.Time) {
	m := getMetrics()
	m.rendersTotal.WithLabelValues(typeLabel(opts.Type), strconv.FormatBool(opts.Extension != nil), strings.TrimPrefix(format, ".")).Inc()
	m.durationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
