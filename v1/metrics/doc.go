// Package metrics provides Prometheus-based monitoring for the vector store
// and embedding components.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: Defines the contract for metrics operations
//   - Metrics struct: Concrete implementation backed by a dedicated registry
//   - OperationObserver: observability.Observer that turns OperationContext
//     notifications into counter and histogram updates
//
// Exposed metrics (all carry a constant service label):
//   - vectorstore_operations_total{component,operation,status}
//   - vectorstore_operation_duration_seconds{component,operation}
//   - vectorstore_operation_items_total{component,operation}
//   - vectorstore_degraded_results_total{component,operation}
//
// The degraded counter is the signal for read paths that answered "no data"
// because the backend failed while the lenient store wrapper was active.
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:     ":9090",
//		ServiceName: "ragstore",
//	})
//	go m.Server.ListenAndServe()
//
//	adapter := qdrant.NewAdapter(points, embedder, "docs",
//		qdrant.WithObserver(metrics.NewOperationObserver(m)))
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule, // provides *Metrics, MetricsCollector, observability.Observer
//		fx.Supply(metrics.DefaultConfig("ragstore")),
//	)
//
// # Configuration
//
//	metrics:
//	  address: ":9090"
//	  enable_default_collectors: true
//	  namespace: rag
//	  service_name: ragstore
//
// All methods are safe for concurrent use by multiple goroutines.
package metrics
