package metrics

import (
	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

// OperationObserver feeds observability.OperationContext notifications into
// the vector store metrics.
type OperationObserver struct {
	collector MetricsCollector
}

// NewOperationObserver returns an observer recording into collector.
func NewOperationObserver(collector MetricsCollector) *OperationObserver {
	return &OperationObserver{collector: collector}
}

// ObserveOperation implements observability.Observer.
//
// Operations carrying Metadata["degraded"] == true are absorbed failures:
// they count as errors and bump the degraded counter.
func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	if o == nil || o.collector == nil {
		return
	}
	o.collector.RecordOperation(ctx.Component, ctx.Operation, ctx.Duration, ctx.Error)
	o.collector.AddItems(ctx.Component, ctx.Operation, ctx.Size)

	if degraded, ok := ctx.Metadata["degraded"].(bool); ok && degraded {
		o.collector.IncrementDegraded(ctx.Component, ctx.Operation)
	}
}
