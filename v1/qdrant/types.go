package qdrant

import (
	"context"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

//go:generate mockgen -source=types.go -destination=mock_points_client_test.go -package=qdrant

// PointsClient is the subset of *qdrant.Client the Adapter needs.
type PointsClient interface {
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	ScrollAndOffset(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// upsertBatchSize bounds the number of points per Upsert request.
const upsertBatchSize = 200

// AdapterOption customizes an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l observability.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver sets the observer notified after every operation.
func WithObserver(o observability.Observer) AdapterOption {
	return func(a *Adapter) { a.observer = o }
}

// WithContentKey sets the payload field holding the document text.
// Default "page_content".
func WithContentKey(key string) AdapterOption {
	return func(a *Adapter) {
		if key != "" {
			a.contentKey = key
		}
	}
}

// WithPageSize sets the scroll page size used by the enumeration operations.
// Default 100.
func WithPageSize(n int) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

// WithBatchSize sets the number of points per Upsert request. Default 200.
func WithBatchSize(n int) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.batchSize = n
		}
	}
}
