package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// RecordOperation counts one operation and observes its duration.
// Example: m.RecordOperation("qdrant", "get_all_ids", time.Since(start), err)
func (m *Metrics) RecordOperation(component, operation string, duration time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.operationsTotal.WithLabelValues(component, operation, status).Inc()
	m.operationDuration.WithLabelValues(component, operation).Observe(duration.Seconds())
}

// AddItems counts items produced or consumed by an operation. Non-positive
// values are ignored.
func (m *Metrics) AddItems(component, operation string, n int64) {
	if n <= 0 {
		return
	}
	m.itemsTotal.WithLabelValues(component, operation).Add(float64(n))
}

// IncrementDegraded counts a failure that was absorbed into an empty result.
func (m *Metrics) IncrementDegraded(component, operation string) {
	m.degradedTotal.WithLabelValues(component, operation).Inc()
}

// createCounterVec defines a new CounterVec with standard options.
func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
