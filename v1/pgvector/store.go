package pgvector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgv "github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

var tracer = otel.Tracer("github.com/Aleph-Alpha/rag-vectorstore/v1/pgvector")

// conn is the slice of a database handle the stores need. Statements use "?"
// placeholders; implementations rewrite them for their driver.
type conn interface {
	exec(ctx context.Context, query string, args ...any) error
	query(ctx context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error
	transaction(ctx context.Context, fn func(tx conn) error) error
	close() error
}

// Option configures a store.
type Option func(*store)

// WithLogger sets the logger used for operation failures.
func WithLogger(logger observability.Logger) Option {
	return func(s *store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver reports every operation to observer.
func WithObserver(observer observability.Observer) Option {
	return func(s *store) {
		s.observer = observer
	}
}

// store implements vectordb.Store on the langchain_pg_* tables. GormStore
// and PoolStore differ only in the conn they pass in.
type store struct {
	conn         conn
	mode         string
	embedder     vectordb.Embedder
	collection   string
	collectionID string
	logger       observability.Logger
	observer     observability.Observer
}

func newStore(ctx context.Context, c conn, mode, collection string, embedder vectordb.Embedder, opts ...Option) (*store, error) {
	s := &store{
		conn:       c,
		mode:       mode,
		embedder:   embedder,
		collection: collection,
		logger:     observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	id, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}
	s.collectionID = id
	return s, nil
}

// Collection returns the collection name the store operates on.
func (s *store) Collection() string {
	return s.collection
}

// AddDocuments embeds docs and inserts one row per document in a single
// transaction, docs[i] under custom_id ids[i].
func (s *store) AddDocuments(ctx context.Context, docs []vectordb.Document, ids []string) (_ []string, err error) {
	ctx, done := s.begin(ctx, "add_documents", len(docs))
	defer func() { done(err) }()

	prepared, err := vectordb.PrepareDocuments(docs, ids)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return ids, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("[pgvector] no embedder configured")
	}

	texts := make([]string, len(prepared))
	for i, doc := range prepared {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] embedding documents: %w", err)
	}
	if len(vectors) != len(prepared) {
		return nil, fmt.Errorf("[pgvector] embedder returned %d vectors for %d documents", len(vectors), len(prepared))
	}

	err = s.conn.transaction(ctx, func(tx conn) error {
		for i, doc := range prepared {
			meta, err := json.Marshal(doc.Metadata)
			if err != nil {
				return fmt.Errorf("document %d metadata: %w", i, err)
			}
			err = tx.exec(ctx, insertEmbeddingSQL,
				uuid.NewString(), s.collectionID, pgv.NewVector(vectors[i]), doc.Content, string(meta), ids[i])
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("[pgvector] insert failed: %w", err)
	}
	return ids, nil
}

// SimilaritySearchWithScoreByVector returns up to k rows ordered by cosine
// distance, nearest first. Score is the distance.
func (s *store) SimilaritySearchWithScoreByVector(ctx context.Context, embedding []float32, k int, filter *vectordb.FilterSet) (_ []vectordb.ScoredDocument, err error) {
	ctx, done := s.begin(ctx, "similarity_search", k)
	defer func() { done(err) }()

	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", vectordb.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", vectordb.ErrInvalidInput, k)
	}

	where, filterArgs, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}

	query := searchSQL
	args := []any{pgv.NewVector(embedding), s.collectionID}
	if where != "" {
		query += " AND " + where
		args = append(args, filterArgs...)
	}
	query += " ORDER BY distance LIMIT ?"
	args = append(args, k)

	results := []vectordb.ScoredDocument{}
	err = s.conn.query(ctx, query, args, func(scan func(...any) error) error {
		var (
			content, meta string
			distance      float64
		)
		if err := scan(&content, &meta, &distance); err != nil {
			return err
		}
		md, err := decodeMetadata(meta)
		if err != nil {
			return err
		}
		results = append(results, vectordb.ScoredDocument{
			Document: vectordb.Document{Content: content, Metadata: vectordb.StripReserved(md)},
			Score:    float32(distance),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("[pgvector] search failed: %w", err)
	}
	return results, nil
}

// SimilaritySearchWithScore embeds query and runs the vector search.
func (s *store) SimilaritySearchWithScore(ctx context.Context, query string, k int, filter *vectordb.FilterSet) ([]vectordb.ScoredDocument, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("[pgvector] no embedder configured")
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("[pgvector] embedding query: %w", err)
	}
	return s.SimilaritySearchWithScoreByVector(ctx, vec, k, filter)
}

// GetAllIDs returns every distinct custom_id of the collection.
func (s *store) GetAllIDs(ctx context.Context) (_ []string, err error) {
	ctx, done := s.begin(ctx, "get_all_ids", 0)
	defer func() { done(err) }()

	ids, err := s.collectIDs(ctx, allIDsSQL, s.collectionID)
	if err != nil {
		return nil, s.enumerationError("get_all_ids", err)
	}
	return ids, nil
}

// GetFilteredIDs returns the distinct members of ids present in the collection.
func (s *store) GetFilteredIDs(ctx context.Context, ids []string) (_ []string, err error) {
	ctx, done := s.begin(ctx, "get_filtered_ids", len(ids))
	defer func() { done(err) }()

	if len(ids) == 0 {
		return []string{}, nil
	}
	found, err := s.collectIDs(ctx, filteredIDsSQL, s.collectionID, textArray(ids))
	if err != nil {
		return nil, s.enumerationError("get_filtered_ids", err)
	}
	return found, nil
}

// GetDocumentsByIDs returns every row whose custom_id is in ids, with
// metadata as stored.
func (s *store) GetDocumentsByIDs(ctx context.Context, ids []string) (_ []vectordb.Document, err error) {
	ctx, done := s.begin(ctx, "get_documents_by_ids", len(ids))
	defer func() { done(err) }()

	docs := []vectordb.Document{}
	if len(ids) == 0 {
		return docs, nil
	}

	err = s.conn.query(ctx, documentsByIDsSQL, []any{s.collectionID, textArray(ids)}, func(scan func(...any) error) error {
		var content, meta string
		if err := scan(&content, &meta); err != nil {
			return err
		}
		md, err := decodeMetadata(meta)
		if err != nil {
			return err
		}
		docs = append(docs, vectordb.Document{Content: content, Metadata: md})
		return nil
	})
	if err != nil {
		return nil, s.enumerationError("get_documents_by_ids", err)
	}
	return docs, nil
}

// Delete removes every row whose custom_id is in ids. An empty ids is a no-op.
func (s *store) Delete(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	ctx, done := s.begin(ctx, "delete", len(ids))
	defer func() { done(err) }()

	if err := s.conn.exec(ctx, deleteSQL, s.collectionID, textArray(ids)); err != nil {
		return s.enumerationError("delete", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *store) Close(ctx context.Context) error {
	return s.conn.close()
}

func (s *store) collectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	set := vectordb.NewIDSet()
	err := s.conn.query(ctx, query, args, func(scan func(...any) error) error {
		var id string
		if err := scan(&id); err != nil {
			return err
		}
		set.Add(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set.Slice(), nil
}

func (s *store) enumerationError(op string, err error) error {
	return vectordb.NewEnumerationError(op, s.collection, err, classifyError)
}

// begin starts the span for op and returns the finisher that ends it and
// reports the operation to the observer.
func (s *store) begin(ctx context.Context, op string, size int) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "pgvector."+op)
	span.SetAttributes(
		attribute.String("collection", s.collection),
		attribute.String("mode", s.mode),
		attribute.Int("size", size),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("[pgvector] operation failed", err, map[string]interface{}{
				"operation":  op,
				"collection": s.collection,
				"mode":       s.mode,
			})
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if s.observer != nil {
			s.observer.ObserveOperation(observability.OperationContext{
				Component:   "pgvector",
				Operation:   op,
				Resource:    s.collection,
				SubResource: s.mode,
				Duration:    time.Since(start),
				Error:       err,
				Size:        int64(size),
			})
		}
	}
}

// decodeMetadata parses the cmetadata column. Integral numbers come back as
// int64, other numbers as float64.
func decodeMetadata(raw string) (map[string]any, error) {
	meta := map[string]any{}
	if raw == "" {
		return meta, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding cmetadata: %w", err)
	}
	for k, v := range meta {
		meta[k] = normalizeNumbers(v)
	}
	return meta, nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumbers(inner)
		}
		return t
	default:
		return v
	}
}
