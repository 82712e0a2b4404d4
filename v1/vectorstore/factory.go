package vectorstore

import (
	"context"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/mongo"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/pgvector"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/qdrant"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// Option customizes the store built by New.
type Option func(*options)

type options struct {
	logger   observability.Logger
	observer observability.Observer
}

// WithLogger passes l to the backend store and the lenient wrapper.
func WithLogger(l observability.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver passes obs to the backend store and the lenient wrapper.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New builds the store selected by cfg.Mode:
//
//   - "sync":        pgvector.GormStore (gorm, database/sql pool)
//   - "async":       pgvector.PoolStore (pgxpool)
//   - "atlas-mongo": mongo.AtlasStore
//   - "qdrant":      qdrant.Adapter
//
// Any other mode fails with an error wrapping ErrInvalidMode. When
// cfg.Lenient is set the store is wrapped with vectordb.NewLenientStore.
//
// Example:
//
//	store, err := vectorstore.New(ctx, vectorstore.DefaultConfig().
//	    WithConnectionString("http://localhost:6333").
//	    WithCollection("documents"), embedder)
func New(ctx context.Context, cfg Config, embedder vectordb.Embedder, opts ...Option) (vectordb.Store, error) {
	o := options{logger: observability.NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		store vectordb.Store
		err   error
	)
	switch mode := cfg.Mode; mode {
	case ModeSync:
		store, err = pgvector.NewGormStore(ctx, postgresConfig(cfg), embedder,
			pgvector.WithLogger(o.logger), pgvector.WithObserver(o.observer))
	case ModeAsync:
		store, err = pgvector.NewPoolStore(ctx, postgresConfig(cfg), embedder,
			pgvector.WithLogger(o.logger), pgvector.WithObserver(o.observer))
	case ModeAtlasMongo:
		store, err = mongo.NewAtlasStoreFromConfig(ctx, mongoConfig(cfg), embedder,
			mongo.WithLogger(o.logger), mongo.WithObserver(o.observer))
	case ModeQdrant:
		var qc *qdrant.Config
		if qc, err = qdrantConfig(cfg); err == nil {
			store, err = qdrant.NewAdapterFromConfig(qc, embedder,
				qdrant.WithLogger(o.logger), qdrant.WithObserver(o.observer))
		}
	default:
		return nil, invalidMode(mode)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("vector store ready", nil, map[string]interface{}{
		"mode":       cfg.Mode,
		"collection": cfg.CollectionName,
		"lenient":    cfg.Lenient,
	})

	if cfg.Lenient {
		return vectordb.NewLenientStore(store, o.logger, o.observer), nil
	}
	return store, nil
}

func postgresConfig(cfg Config) *pgvector.Config {
	pc := pgvector.DefaultConfig().
		WithConnectionString(cfg.ConnectionString).
		WithCollection(cfg.CollectionName)
	pc.ConnectionDetails = cfg.Postgres
	pc.ApplyDefaults()
	return pc
}

func mongoConfig(cfg Config) *mongo.Config {
	mc := cfg.Mongo
	mc.URI = cfg.ConnectionString
	mc.Collection = cfg.CollectionName
	if cfg.SearchIndex != "" {
		mc.SearchIndex = cfg.SearchIndex
	}
	mc.ApplyDefaults()
	return &mc
}

// qdrantConfig overlays the shared connection string and collection on the
// qdrant section. An empty connection string keeps the section's host.
func qdrantConfig(cfg Config) (*qdrant.Config, error) {
	qc := cfg.Qdrant
	if cfg.ConnectionString != "" {
		parsed, err := qdrant.FromConnectionString(cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		qc.Host, qc.Port, qc.UseTLS = parsed.Host, parsed.Port, parsed.UseTLS
	}
	qc.Collection = cfg.CollectionName
	qc.ApplyDefaults()
	return &qc, nil
}
