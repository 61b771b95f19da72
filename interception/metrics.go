package interception

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsBehavior collects metrics about invocations
type MetricsBehavior struct {
	collector MetricsCollector
}

// MetricsCollector defines the interface for collecting invocation metrics
type MetricsCollector interface {
	IncrementInvocationCount(method string)
	RecordInvocationTime(method string, duration time.Duration)
	IncrementErrorCount(method string, errorType string)
}

// NewMetricsBehavior creates a new metrics behavior
func NewMetricsBehavior(collector MetricsCollector) *MetricsBehavior {
	return &MetricsBehavior{collector: collector}
}

// Intercept implements Behavior
func (b *MetricsBehavior) Intercept(ctx context.Context, inv *Invocation, next Invoker) (any, error) {
	start := time.Now()

	b.collector.IncrementInvocationCount(inv.Method)

	result, err := next.Invoke(ctx, inv)
	duration := time.Since(start)

	b.collector.RecordInvocationTime(inv.Method, duration)

	if err != nil {
		b.collector.IncrementErrorCount(inv.Method, "invocation_error")
	}

	return result, err
}

// Name implements Behavior
func (b *MetricsBehavior) Name() string {
	return "MetricsBehavior"
}

// PrometheusCollector is a MetricsCollector backed by Prometheus
type PrometheusCollector struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
}

// NewPrometheusCollector creates a collector and registers its metrics with
// the given registerer
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weave_invocations_total",
			Help: "Total number of intercepted invocations.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weave_invocation_duration_seconds",
			Help:    "Invocation duration through the behavior chain.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weave_invocation_errors_total",
			Help: "Total number of failed invocations.",
		}, []string{"method", "errorType"}),
	}

	for _, col := range []prometheus.Collector{c.invocations, c.duration, c.errors} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// IncrementInvocationCount implements MetricsCollector
func (c *PrometheusCollector) IncrementInvocationCount(method string) {
	c.invocations.WithLabelValues(method).Inc()
}

// RecordInvocationTime implements MetricsCollector
func (c *PrometheusCollector) RecordInvocationTime(method string, duration time.Duration) {
	c.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncrementErrorCount implements MetricsCollector
func (c *PrometheusCollector) IncrementErrorCount(method string, errorType string) {
	c.errors.WithLabelValues(method, errorType).Inc()
}
