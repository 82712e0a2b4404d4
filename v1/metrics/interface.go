package metrics

import "time"

// MetricsCollector provides an interface for collecting and exposing vector store metrics.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// RecordOperation counts one operation and observes its duration.
	RecordOperation(component, operation string, duration time.Duration, err error)

	// AddItems counts items produced or consumed by an operation.
	AddItems(component, operation string, n int64)

	// IncrementDegraded counts a failure that was absorbed into an empty result.
	IncrementDegraded(component, operation string)
}
