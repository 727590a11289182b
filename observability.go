package segid

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/segid/internal/logging"
	"github.com/arloliu/segid/internal/metrics"
)

// NewPrometheusMetrics returns a MetricsCollector that registers segid metrics
// with reg on first use.
//
// Parameters:
//   - reg: Registerer for the collectors (prometheus.DefaultRegisterer when nil)
//
// Returns:
//   - MetricsCollector: Collector for WithMetrics
//
// Example:
//
//	alloc, err := segid.New(&cfg, counters, segid.WithMetrics(segid.NewPrometheusMetrics(nil)))
//	http.Handle("/metrics", promhttp.Handler())
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsCollector {
	return metrics.NewPrometheus(reg, "")
}

// NewSlogLogger adapts a *slog.Logger to Logger (slog.Default() when nil).
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return logging.NewSlogDefault()
	}

	return logging.NewSlog(logger)
}
