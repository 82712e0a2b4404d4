package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

var tracer = otel.Tracer("github.com/Aleph-Alpha/rag-vectorstore/v1/qdrant")

// Adapter implements vectordb.Store on top of a Qdrant collection.
//
// Every point carries its document text under the content key and the
// document metadata, file_id included, as flat payload fields. All id based
// operations select on the file_id payload field, so one document may span
// many points (chunks).
//
// The Adapter is strict: failed enumerations and deletes return a
// *vectordb.EnumerationError. Wrap it with vectordb.NewLenientStore for the
// availability-first behavior.
type Adapter struct {
	points     PointsClient
	embedder   vectordb.Embedder
	collection string
	contentKey string
	pageSize   int
	batchSize  int
	logger     observability.Logger
	observer   observability.Observer

	// owned is closed by Close when the adapter created the connection.
	owned *QdrantClient
}

var _ vectordb.Store = (*Adapter)(nil)

// NewAdapter creates an adapter for collection using an existing client.
// The collection must already exist.
//
// Example:
//
//	client, _ := qdrant.NewQdrantClient(cfg, log)
//	store := qdrant.NewAdapter(client.Client(), embedder, "documents")
func NewAdapter(points PointsClient, embedder vectordb.Embedder, collection string, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		points:     points,
		embedder:   embedder,
		collection: collection,
		contentKey: DefaultContentKey,
		pageSize:   DefaultPageSize,
		batchSize:  upsertBatchSize,
		logger:     observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewAdapterFromConfig opens a connection described by cfg and returns an
// adapter owning it. Config.ContentKey and Config.PageSize apply unless opts
// override them.
func NewAdapterFromConfig(cfg *Config, embedder vectordb.Embedder, opts ...AdapterOption) (*Adapter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()
	if cfg.Collection == "" {
		return nil, fmt.Errorf("[Qdrant] collection name cannot be empty")
	}

	base := []AdapterOption{WithContentKey(cfg.ContentKey), WithPageSize(cfg.PageSize)}
	a := NewAdapter(nil, embedder, cfg.Collection, append(base, opts...)...)

	client, err := NewQdrantClient(cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.points = client.Client()
	a.owned = client
	return a, nil
}

// Collection returns the collection name the adapter operates on.
func (a *Adapter) Collection() string {
	return a.collection
}

// AddDocuments embeds docs and upserts them, docs[i] under file_id ids[i].
// Points are written in batches and each batch waits for the write to apply.
func (a *Adapter) AddDocuments(ctx context.Context, docs []vectordb.Document, ids []string) (_ []string, err error) {
	ctx, done := a.begin(ctx, "add_documents", len(docs))
	defer func() { done(err) }()

	prepared, err := vectordb.PrepareDocuments(docs, ids)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return ids, nil
	}
	if a.embedder == nil {
		return nil, fmt.Errorf("[Qdrant] no embedder configured")
	}

	texts := make([]string, len(prepared))
	for i, doc := range prepared {
		texts[i] = doc.Content
	}
	vectors, err := a.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] embedding documents: %w", err)
	}
	if len(vectors) != len(prepared) {
		return nil, fmt.Errorf("[Qdrant] embedder returned %d vectors for %d documents", len(vectors), len(prepared))
	}

	keys := pointIDs(ids)
	points := make([]*qdrant.PointStruct, len(prepared))
	for i, doc := range prepared {
		payload, err := buildPayload(doc.Metadata, a.contentKey, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] document %d: %w", i, err)
		}
		points[i] = &qdrant.PointStruct{
			Id:      keys[i],
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payload,
		}
	}

	for start := 0; start < len(points); start += a.batchSize {
		end := min(start+a.batchSize, len(points))
		_, err := a.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: a.collection,
			Points:         points[start:end],
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] batch upsert failed at [%d:%d]: %w", start, end, err)
		}
		a.logger.Debug("[Qdrant] inserted batch", nil, map[string]interface{}{
			"collection": a.collection,
			"start":      start,
			"end":        end,
		})
	}

	return ids, nil
}

// SimilaritySearchWithScoreByVector returns up to k nearest documents in the
// order Qdrant ranks them. Reserved metadata keys are removed from results.
func (a *Adapter) SimilaritySearchWithScoreByVector(ctx context.Context, embedding []float32, k int, filter *vectordb.FilterSet) (_ []vectordb.ScoredDocument, err error) {
	ctx, done := a.begin(ctx, "similarity_search", k)
	defer func() { done(err) }()

	if err := validateSearchInput(embedding, k); err != nil {
		return nil, err
	}
	qf, err := convertFilterSet(filter)
	if err != nil {
		return nil, err
	}

	resp, err := a.points.Query(ctx, &qdrant.QueryPoints{
		CollectionName: a.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         qf,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] search failed: %w", err)
	}

	results := make([]vectordb.ScoredDocument, 0, len(resp))
	for _, point := range resp {
		doc := toDocument(point.GetPayload(), a.contentKey)
		vectordb.StripReserved(doc.Metadata)
		results = append(results, vectordb.ScoredDocument{Document: doc, Score: point.GetScore()})
	}
	return results, nil
}

// SimilaritySearchWithScore embeds query and runs the vector search.
func (a *Adapter) SimilaritySearchWithScore(ctx context.Context, query string, k int, filter *vectordb.FilterSet) ([]vectordb.ScoredDocument, error) {
	if a.embedder == nil {
		return nil, fmt.Errorf("[Qdrant] no embedder configured")
	}
	vec, err := a.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] embedding query: %w", err)
	}
	return a.SimilaritySearchWithScoreByVector(ctx, vec, k, filter)
}

// GetAllIDs returns every distinct file_id in the collection in scroll order.
func (a *Adapter) GetAllIDs(ctx context.Context) (_ []string, err error) {
	ctx, done := a.begin(ctx, "get_all_ids", 0)
	defer func() { done(err) }()

	ids, err := a.collectIDs(ctx, nil)
	if err != nil {
		return nil, a.enumerationError("get_all_ids", err)
	}
	return ids, nil
}

// GetFilteredIDs returns the distinct members of ids that exist in the collection.
func (a *Adapter) GetFilteredIDs(ctx context.Context, ids []string) (_ []string, err error) {
	ctx, done := a.begin(ctx, "get_filtered_ids", len(ids))
	defer func() { done(err) }()

	if len(ids) == 0 {
		return []string{}, nil
	}

	found, err := a.collectIDs(ctx, fileIDFilter(ids))
	if err != nil {
		return nil, a.enumerationError("get_filtered_ids", err)
	}
	return found, nil
}

// GetDocumentsByIDs returns every stored chunk whose file_id is in ids.
// Metadata is returned as stored, file_id included.
func (a *Adapter) GetDocumentsByIDs(ctx context.Context, ids []string) (_ []vectordb.Document, err error) {
	ctx, done := a.begin(ctx, "get_documents_by_ids", len(ids))
	defer func() { done(err) }()

	docs := []vectordb.Document{}
	if len(ids) == 0 {
		return docs, nil
	}

	err = a.scroll(ctx, fileIDFilter(ids), qdrant.NewWithPayload(true), func(p *qdrant.RetrievedPoint) {
		docs = append(docs, toDocument(p.GetPayload(), a.contentKey))
	})
	if err != nil {
		return nil, a.enumerationError("get_documents_by_ids", err)
	}
	return docs, nil
}

// Delete removes every point whose file_id is in ids. An empty ids is a no-op.
func (a *Adapter) Delete(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	ctx, done := a.begin(ctx, "delete", len(ids))
	defer func() { done(err) }()

	resp, err := a.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: a.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: fileIDFilter(ids)},
		},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return a.enumerationError("delete", err)
	}

	a.logger.Debug("[Qdrant] delete completed", nil, map[string]interface{}{
		"collection": a.collection,
		"status":     resp.GetStatus().String(),
		"ids":        len(ids),
	})
	return nil
}

// Close closes the connection if the adapter opened it.
func (a *Adapter) Close(ctx context.Context) error {
	if a.owned == nil {
		return nil
	}
	return a.owned.Close()
}

// collectIDs scrolls the points matching filter and returns their distinct
// file_ids in first-seen order.
func (a *Adapter) collectIDs(ctx context.Context, filter *qdrant.Filter) ([]string, error) {
	set := vectordb.NewIDSet()
	err := a.scroll(ctx, filter, qdrant.NewWithPayloadInclude(vectordb.FileIDKey), func(p *qdrant.RetrievedPoint) {
		if id, ok := stringField(p.GetPayload(), vectordb.FileIDKey); ok {
			set.Add(id)
		}
	})
	if err != nil {
		return nil, err
	}
	return set.Slice(), nil
}

// scroll pages through the points matching filter until Qdrant reports no
// next offset.
func (a *Adapter) scroll(ctx context.Context, filter *qdrant.Filter, payload *qdrant.WithPayloadSelector, fn func(*qdrant.RetrievedPoint)) error {
	var offset *qdrant.PointId
	for {
		points, next, err := a.points.ScrollAndOffset(ctx, &qdrant.ScrollPoints{
			CollectionName: a.collection,
			Filter:         filter,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(a.pageSize)),
			WithPayload:    payload,
		})
		if err != nil {
			return err
		}
		for _, p := range points {
			fn(p)
		}
		if next == nil {
			return nil
		}
		offset = next
	}
}

func (a *Adapter) enumerationError(op string, err error) error {
	return vectordb.NewEnumerationError(op, a.collection, err, classifyError)
}

// begin starts the span for op and returns the finisher that ends it and
// reports the operation to the observer.
func (a *Adapter) begin(ctx context.Context, op string, size int) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "qdrant."+op)
	span.SetAttributes(
		attribute.String("collection", a.collection),
		attribute.Int("size", size),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			a.logger.Error("[Qdrant] operation failed", err, map[string]interface{}{
				"operation":  op,
				"collection": a.collection,
			})
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if a.observer != nil {
			a.observer.ObserveOperation(observability.OperationContext{
				Component: "qdrant",
				Operation: op,
				Resource:  a.collection,
				Duration:  time.Since(start),
				Error:     err,
				Size:      int64(size),
			})
		}
	}
}
