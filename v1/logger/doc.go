// Package logger provides structured logging for the vector store services.
//
// LoggerClient wraps a zap JSON logger and exposes the
// Info/Debug/Warn/Error(msg, err, fields...) method set that the rest of the
// module consumes through observability.Logger. Adapters, the embedding client
// and the factory never import zap directly.
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       "info",
//		ServiceName: "ragstore",
//	})
//
//	log.Info("collection scanned", nil, map[string]interface{}{
//		"collection": "docs",
//		"ids":        42,
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		fx.Supply(logger.DefaultConfig("ragstore")),
//		logger.FXModule, // provides *LoggerClient and observability.Logger
//	)
//
// # Context-Aware Logging
//
// With EnableTracing set, InfoWithContext and ErrorWithContext add the
// OpenTelemetry trace_id and span_id of the active span:
//
//	log.ErrorWithContext(ctx, "command failed", err, nil)
//
// # Configuration
//
// Loaded by the config package under the "logger" key:
//
//	logger:
//	  level: debug            # debug, info, warning, error
//	  service_name: ragstore
//	  enable_tracing: true
//
// All methods are safe for concurrent use.
package logger
