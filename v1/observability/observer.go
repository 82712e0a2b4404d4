// Package observability defines the hooks components use to report what they do.
//
// Components accept an Observer and a Logger; both are optional. The metrics
// package provides a Prometheus-backed Observer, the logger package provides a
// zap-backed Logger.
package observability

import "time"

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "qdrant" or "embedding".
	Component string

	// Operation is the logical operation name, e.g. "get_all_ids".
	Operation string

	// Resource is the primary target, usually a collection name or endpoint.
	Resource string

	// SubResource is an optional secondary target.
	SubResource string

	Duration time.Duration
	Error    error

	// Size is the number of items the operation produced or consumed.
	Size int64

	Metadata map[string]interface{}
}

// Observer receives operation notifications.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}
