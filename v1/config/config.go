package config

import (
	"fmt"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/embedding"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/logger"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/metrics"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/tracer"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectorstore"
)

// DefaultServiceName is used when no service name is configured.
const DefaultServiceName = "ragstore"

// Config is the complete runtime configuration of a ragstore process.
//
// YAML layout:
//
//	logger:
//	  level: info
//	embedding:
//	  endpoint: https://tei.internal/embed
//	vectorstore:
//	  mode: qdrant
//	  collection_name: documents
//	  connection_string: http://localhost:6333
//	  qdrant:
//	    api_key: secret
type Config struct {
	Logger      logger.Config      `yaml:"logger" koanf:"logger"`
	Metrics     metrics.Config     `yaml:"metrics" koanf:"metrics"`
	Tracer      tracer.Config      `yaml:"tracer" koanf:"tracer"`
	Embedding   embedding.Config   `yaml:"embedding" koanf:"embedding"`
	VectorStore vectorstore.Config `yaml:"vectorstore" koanf:"vectorstore"`
}

// Default returns the configuration Load starts from. The metrics and tracer
// service names stay empty so they follow the logger's.
func Default() Config {
	return Config{
		Logger:      logger.DefaultConfig(DefaultServiceName),
		Metrics:     metrics.DefaultConfig(""),
		Tracer:      tracer.Config{},
		Embedding:   *embedding.DefaultConfig(),
		VectorStore: vectorstore.DefaultConfig(),
	}
}

// applyDefaults fills values left empty by the sources and propagates the
// logger's service name to the other sections.
func applyDefaults(cfg *Config) {
	if cfg.Logger.ServiceName == "" {
		cfg.Logger.ServiceName = DefaultServiceName
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = logger.Info
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = cfg.Logger.ServiceName
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = metrics.DefaultMetricsAddress
	}
	if cfg.Tracer.ServiceName == "" {
		cfg.Tracer.ServiceName = cfg.Logger.ServiceName
	}
	cfg.Embedding.ApplyDefaults()
	cfg.VectorStore.Qdrant.ApplyDefaults()
	cfg.VectorStore.Mongo.ApplyDefaults()
}

// Validate reports settings that would make the process fail at startup.
func (c *Config) Validate() error {
	switch c.Logger.Level {
	case logger.Debug, logger.Info, logger.Warning, logger.Error:
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logger.Level)
	}
	if err := c.Embedding.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := vectorstore.ValidateMode(c.VectorStore.Mode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.VectorStore.CollectionName == "" {
		return fmt.Errorf("config: vectorstore.collection_name is required")
	}
	return nil
}
