package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unrouted/endpoint/pkg/common"
)

// Metrics collects Prometheus metrics for endpoint invocations.
type Metrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewMetrics creates invocation metrics and registers them with reg.
// Namespace and subsystem follow the usual Prometheus naming conventions and
// may be empty.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of invocations",
		}, []string{"method", "path"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of invocations that failed with an error",
		}, []string{"method", "path"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Invocation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_in_flight",
			Help:      "Number of invocations currently being processed",
		}),
	}
	reg.MustRegister(m.requests, m.errors, m.duration, m.inflight)
	return m
}

// Middleware returns a chain middleware that records the request count,
// error count, in-flight gauge, and duration histogram for each invocation.
func (m *Metrics) Middleware() common.Middleware {
	return func(ctx context.Context, req *common.Request, next common.Next) (any, error) {
		method := req.HTTP.Method
		path := req.HTTP.URL.Path

		m.inflight.Inc()
		start := time.Now()

		result, err := next(nil)

		m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		m.inflight.Dec()
		m.requests.WithLabelValues(method, path).Inc()
		if err != nil {
			m.errors.WithLabelValues(method, path).Inc()
		}

		return result, err
	}
}
