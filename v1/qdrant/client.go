package qdrant

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

//
// ──────────────────────────────────────────────────────────────
//   QDRANT CLIENT WRAPPER
// ──────────────────────────────────────────────────────────────
//
// This file defines a thin wrapper around the official Qdrant Go client.
// It owns the gRPC connection, validates connectivity on startup and offers
// the administrative collection helpers. Document operations live on the
// Adapter, which only needs the points API of the wrapped client.
//

// QdrantClient wraps the official Qdrant Go client.
type QdrantClient struct {
	api     *qdrant.Client
	cfg     *Config
	logger  observability.Logger
	started bool
}

// NewQdrantClient constructs a new instance of QdrantClient and validates
// connectivity via a health check unless Config.SkipHealthCheck is set.
//
// The Qdrant Go SDK creates lightweight gRPC connections, so this method
// performs an immediate health check to fail fast if the service is unreachable.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(cfg, log)
func NewQdrantClient(cfg *Config, logger observability.Logger) (*QdrantClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()
	if logger == nil {
		logger = observability.NopLogger{}
	}

	logger.Info("[Qdrant] connecting", nil, map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"tls":  cfg.UseTLS,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	qc := &QdrantClient{
		api:     client,
		cfg:     cfg,
		logger:  logger,
		started: true,
	}

	if !cfg.SkipHealthCheck {
		if err := qc.healthCheck(context.Background()); err != nil {
			_ = client.Close()
			return nil, err
		}
	}

	logger.Info("[Qdrant] client connected", nil, nil)
	return qc, nil
}

// healthCheck verifies the availability of the Qdrant service.
func (c *QdrantClient) healthCheck(ctx context.Context) error {
	if !c.started || c.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	c.logger.Debug("[Qdrant] health check passed", nil, map[string]interface{}{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
		"host":    c.cfg.Host,
	})
	return nil
}

// Client returns the underlying Qdrant SDK client. It satisfies PointsClient.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Config returns the effective configuration.
func (c *QdrantClient) Config() *Config {
	return c.cfg
}

// Close shuts down the gRPC connection. Calling it more than once is safe.
func (c *QdrantClient) Close() error {
	if !c.started {
		return nil
	}
	c.started = false

	c.logger.Info("[Qdrant] closing client", nil, nil)
	if err := c.api.Close(); err != nil {
		return fmt.Errorf("[Qdrant] close failed: %w", err)
	}
	return nil
}
