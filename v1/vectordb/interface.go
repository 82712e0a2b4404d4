package vectordb

import "context"

// Store is the common interface for all vector store backends.
// It provides a database-agnostic abstraction keyed by file_id, allowing
// applications to switch between Postgres/pgvector, MongoDB Atlas and Qdrant
// without changing application code.
//
// Example usage:
//
//	func NewIngestService(store vectordb.Store) *IngestService {
//	    return &IngestService{store: store}
//	}
//
//	// Works with any implementation returned by vectorstore.New.
type Store interface {
	// AddDocuments stores docs, docs[i] under file_id ids[i], and returns ids.
	// The caller's documents are not modified.
	AddDocuments(ctx context.Context, docs []Document, ids []string) ([]string, error)

	// SimilaritySearchWithScoreByVector returns up to k nearest documents in
	// backend order. Metadata keys starting with ReservedPrefix are removed.
	SimilaritySearchWithScoreByVector(ctx context.Context, embedding []float32, k int, filter *FilterSet) ([]ScoredDocument, error)

	// SimilaritySearchWithScore embeds query and runs the vector search.
	SimilaritySearchWithScore(ctx context.Context, query string, k int, filter *FilterSet) ([]ScoredDocument, error)

	// GetAllIDs returns every distinct file_id in the collection.
	GetAllIDs(ctx context.Context) ([]string, error)

	// GetFilteredIDs returns the distinct members of ids present in the collection.
	GetFilteredIDs(ctx context.Context, ids []string) ([]string, error)

	// GetDocumentsByIDs returns every stored document (chunk) whose file_id is in ids.
	GetDocumentsByIDs(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes every stored document whose file_id is in ids.
	// An empty ids slice is a no-op.
	Delete(ctx context.Context, ids []string) error

	// Close releases the backend connection owned by the store, if any.
	Close(ctx context.Context) error
}

// Embedder turns text into vectors. *embedding.Client implements it.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
