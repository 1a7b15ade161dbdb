// Package metrics provides the RED+F (rate, errors, duration, failure
// duration) metric group used across gemini's commands, and the concrete
// metric instances each stage observes.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RedFMetrics bundles the four counters/histograms one operation needs to
// answer "how often did this run, how long did it take, and how often did
// it fail".
type RedFMetrics struct {
	Count    *prometheus.CounterVec
	Duration *prometheus.HistogramVec

	ErrorCount    *prometheus.CounterVec
	ErrorDuration *prometheus.HistogramVec
}

// Observe records one call of duration d, routing to the error or success
// counters depending on err.
func (m *RedFMetrics) Observe(d time.Duration, err error, lvals ...string) {
	if err != nil {
		m.ErrorCount.WithLabelValues(lvals...).Inc()
		m.ErrorDuration.WithLabelValues(lvals...).Observe(d.Seconds())
		return
	}
	m.Count.WithLabelValues(lvals...).Inc()
	m.Duration.WithLabelValues(lvals...).Observe(d.Seconds())
}

type redfMetricOptions struct {
	countHelp          string
	durationHelp       string
	errorsCountHelp    string
	errorsDurationHelp string
	labels             []string
	durationBuckets    []float64
}

// RedfMetricsOption alters the default behavior of NewRedfMetrics.
type RedfMetricsOption func(o *redfMetricOptions)

// WithLabels overrides the default (empty) label set for all four metrics.
func WithLabels(labels ...string) RedfMetricsOption {
	return func(o *redfMetricOptions) { o.labels = labels }
}

// WithDurationBuckets overrides the default histogram buckets.
func WithDurationBuckets(buckets []float64) RedfMetricsOption {
	return func(o *redfMetricOptions) {
		if len(buckets) != 0 {
			o.durationBuckets = buckets
		}
	}
}

// NewRedfMetrics constructs and registers a RedFMetrics group named name.
func NewRedfMetrics(name string, overrides ...RedfMetricsOption) *RedFMetrics {
	options := &redfMetricOptions{
		countHelp:          fmt.Sprintf("Number of successful %s operations", name),
		durationHelp:       fmt.Sprintf("Time in seconds spent performing %s operations", name),
		errorsCountHelp:    fmt.Sprintf("Number of failed %s operations", name),
		errorsDurationHelp: fmt.Sprintf("Time in seconds spent performing failed %s operations", name),
		durationBuckets:    prometheus.DefBuckets,
	}
	for _, o := range overrides {
		o(options)
	}

	count := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: fmt.Sprintf("%s_total", name),
		Help: options.countHelp,
	}, options.labels)

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    fmt.Sprintf("%s_duration_seconds", name),
		Help:    options.durationHelp,
		Buckets: options.durationBuckets,
	}, options.labels)

	errorCount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: fmt.Sprintf("%s_errors_total", name),
		Help: options.errorsCountHelp,
	}, options.labels)

	errorDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    fmt.Sprintf("%s_errors_duration_seconds", name),
		Help:    options.errorsDurationHelp,
		Buckets: options.durationBuckets,
	}, options.labels)

	prometheus.MustRegister(count, duration, errorCount, errorDuration)

	return &RedFMetrics{
		Count:         count,
		Duration:      duration,
		ErrorCount:    errorCount,
		ErrorDuration: errorDuration,
	}
}
