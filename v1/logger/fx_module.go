package logger

import (
	"context"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"go.uber.org/fx"
)

// FXModule defines the Fx module for the logger package.
//
// The module provides *LoggerClient and exposes it as observability.Logger,
// then registers a shutdown hook that flushes buffered entries.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(logger.DefaultConfig("ragstore")),
//	    logger.FXModule,
//	)
//
// Dependencies required by this module:
// - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		func(l *LoggerClient) observability.Logger { return l },
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
// The OnStop hook calls Sync() so no log entries are lost on shutdown.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on some platforms; ignore it.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
