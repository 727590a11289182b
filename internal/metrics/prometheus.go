package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arloliu/segid/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use, so constructing a
// PrometheusCollector that is never exercised leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	idsServed       *prometheus.CounterVec
	bufferOccupancy *prometheus.GaugeVec
	refills         *prometheus.CounterVec
	refillsSkipped  *prometheus.CounterVec
	acquireLatency  *prometheus.HistogramVec
	conflictRetries *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "segid" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "segid"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		factory := promauto.With(p.reg)

		p.idsServed = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "ids_served_total",
			Help:      "Total ids handed to callers by code and path (fast,slow).",
		}, []string{"code", "path"})

		p.bufferOccupancy = factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "buffered_ids",
			Help:      "Ids reserved from the store but not yet handed out.",
		}, []string{"code"})

		p.refills = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "refills_total",
			Help:      "Range acquisitions by code, reason (slow_path,threshold) and result (success,failure).",
		}, []string{"code", "reason", "result"})

		p.refillsSkipped = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "allocator",
			Name:      "refills_skipped_total",
			Help:      "Threshold triggers ignored because a refill was already running.",
		}, []string{"code"})

		p.acquireLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "acquire_duration_seconds",
			Help:      "Latency of single AcquireRange attempts in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms .. ~4s
		}, []string{"code", "success"})

		p.conflictRetries = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "conflict_retries_total",
			Help:      "Retries caused by optimistic-concurrency conflicts.",
		}, []string{"code"})
	})
}

// RecordIDServed increments the served-id counter for code and path.
func (p *PrometheusCollector) RecordIDServed(code string, path string) {
	p.ensureRegistered()
	p.idsServed.WithLabelValues(code, path).Inc()
}

// RecordBufferOccupancy sets the buffered-id gauge.
func (p *PrometheusCollector) RecordBufferOccupancy(code string, count int) {
	p.ensureRegistered()
	p.bufferOccupancy.WithLabelValues(code).Set(float64(count))
}

// RecordRefill counts a range acquisition outcome.
func (p *PrometheusCollector) RecordRefill(code string, reason types.RefillReason, success bool) {
	p.ensureRegistered()
	result := "failure"
	if success {
		result = "success"
	}
	p.refills.WithLabelValues(code, reason.String(), result).Inc()
}

// RecordRefillSkipped counts a threshold trigger that found a refill already running.
func (p *PrometheusCollector) RecordRefillSkipped(code string) {
	p.ensureRegistered()
	p.refillsSkipped.WithLabelValues(code).Inc()
}

// RecordAcquireDuration observes one AcquireRange attempt.
func (p *PrometheusCollector) RecordAcquireDuration(code string, duration float64, success bool) {
	p.ensureRegistered()
	p.acquireLatency.WithLabelValues(code, strconv.FormatBool(success)).Observe(duration)
}

// RecordConflictRetry counts a conflict-driven retry.
func (p *PrometheusCollector) RecordConflictRetry(code string) {
	p.ensureRegistered()
	p.conflictRetries.WithLabelValues(code).Inc()
}
