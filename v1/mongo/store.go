package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

var tracer = otel.Tracer("github.com/Aleph-Alpha/rag-vectorstore/v1/mongo")

// scoreKey carries the $vectorSearch score through the pipeline. The leading
// underscore keeps it out of result metadata.
const scoreKey = "_score"

// Collection is the part of *mongo.Collection the store uses.
type Collection interface {
	Name() string
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}, opts ...*options.DistinctOptions) ([]interface{}, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Option configures an AtlasStore.
type Option func(*AtlasStore)

func WithLogger(logger observability.Logger) Option {
	return func(s *AtlasStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(observer observability.Observer) Option {
	return func(s *AtlasStore) {
		s.observer = observer
	}
}

// WithSearchIndex sets the Atlas Vector Search index name.
func WithSearchIndex(name string) Option {
	return func(s *AtlasStore) {
		if name != "" {
			s.index = name
		}
	}
}

// WithKeys sets the fields holding the text and the vector.
func WithKeys(textKey, embeddingKey string) Option {
	return func(s *AtlasStore) {
		if textKey != "" {
			s.textKey = textKey
		}
		if embeddingKey != "" {
			s.embeddingKey = embeddingKey
		}
	}
}

// WithCandidatesFactor sets numCandidates to factor*k.
func WithCandidatesFactor(factor int) Option {
	return func(s *AtlasStore) {
		if factor > 0 {
			s.candidates = factor
		}
	}
}

// AtlasStore implements vectordb.Store on a MongoDB Atlas collection with a
// Vector Search index.
//
// Each MongoDB document is one chunk: the text under the text key, the vector
// under the embedding key and the metadata, file_id included, as top level
// fields.
type AtlasStore struct {
	coll         Collection
	embedder     vectordb.Embedder
	index        string
	textKey      string
	embeddingKey string
	candidates   int
	logger       observability.Logger
	observer     observability.Observer

	// client is disconnected by Close when the store opened it.
	client *mongo.Client
}

var _ vectordb.Store = (*AtlasStore)(nil)

// NewAtlasStore wraps an existing collection.
func NewAtlasStore(coll Collection, embedder vectordb.Embedder, opts ...Option) *AtlasStore {
	s := &AtlasStore{
		coll:         coll,
		embedder:     embedder,
		index:        DefaultSearchIndex,
		textKey:      DefaultTextKey,
		embeddingKey: DefaultEmbeddingKey,
		candidates:   defaultCandidates,
		logger:       observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAtlasStoreFromConfig connects to cfg.URI, pings the deployment and
// returns a store owning the client.
func NewAtlasStoreFromConfig(ctx context.Context, cfg *Config, embedder vectordb.Embedder, opts ...Option) (*AtlasStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	database, err := databaseName(cfg.URI, cfg.Database)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("[Mongo] failed to connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("[Mongo] ping failed: %w", err)
	}

	base := []Option{
		WithSearchIndex(cfg.SearchIndex),
		WithKeys(cfg.TextKey, cfg.EmbeddingKey),
		WithCandidatesFactor(cfg.CandidatesFactor),
	}
	s := NewAtlasStore(client.Database(database).Collection(cfg.Collection), embedder, append(base, opts...)...)
	s.client = client
	return s, nil
}

// databaseName returns the database in the URI path, or fallback.
func databaseName(uri, fallback string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("[Mongo] invalid connection URI: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	if fallback == "" {
		return "", fmt.Errorf("[Mongo] no database in URI and none configured")
	}
	return fallback, nil
}

// AddDocuments embeds docs and inserts one MongoDB document per chunk.
func (s *AtlasStore) AddDocuments(ctx context.Context, docs []vectordb.Document, ids []string) (_ []string, err error) {
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
		return nil, fmt.Errorf("[Mongo] no embedder configured")
	}

	texts := make([]string, len(prepared))
	for i, doc := range prepared {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("[Mongo] embedding documents: %w", err)
	}
	if len(vectors) != len(prepared) {
		return nil, fmt.Errorf("[Mongo] embedder returned %d vectors for %d documents", len(vectors), len(prepared))
	}

	records := make([]interface{}, len(prepared))
	for i, doc := range prepared {
		rec := bson.M{}
		for k, v := range doc.Metadata {
			if k == "_id" {
				continue
			}
			rec[k] = v
		}
		rec[s.textKey] = doc.Content
		rec[s.embeddingKey] = vectors[i]
		records[i] = rec
	}

	if _, err := s.coll.InsertMany(ctx, records); err != nil {
		return nil, fmt.Errorf("[Mongo] insert failed: %w", err)
	}
	return ids, nil
}

// SimilaritySearchWithScoreByVector runs a $vectorSearch stage and returns
// the hits with their vectorSearchScore, best first.
func (s *AtlasStore) SimilaritySearchWithScoreByVector(ctx context.Context, embedding []float32, k int, filter *vectordb.FilterSet) (_ []vectordb.ScoredDocument, err error) {
	ctx, done := s.begin(ctx, "similarity_search", k)
	defer func() { done(err) }()

	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", vectordb.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", vectordb.ErrInvalidInput, k)
	}

	pipeline, err := s.searchPipeline(embedding, k, filter)
	if err != nil {
		return nil, err
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("[Mongo] search failed: %w", err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("[Mongo] reading search results: %w", err)
	}

	results := make([]vectordb.ScoredDocument, 0, len(raw))
	for _, m := range raw {
		score, _ := m[scoreKey].(float64)
		doc := s.toDocument(m)
		vectordb.StripReserved(doc.Metadata)
		results = append(results, vectordb.ScoredDocument{Document: doc, Score: float32(score)})
	}
	return results, nil
}

func (s *AtlasStore) searchPipeline(embedding []float32, k int, filter *vectordb.FilterSet) (mongo.Pipeline, error) {
	search := bson.D{
		{Key: "index", Value: s.index},
		{Key: "path", Value: s.embeddingKey},
		{Key: "queryVector", Value: embedding},
		{Key: "numCandidates", Value: k * s.candidates},
		{Key: "limit", Value: k},
	}
	mql, err := convertFilterSet(filter)
	if err != nil {
		return nil, err
	}
	if mql != nil {
		search = append(search, bson.E{Key: "filter", Value: mql})
	}

	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$set", Value: bson.D{{Key: scoreKey, Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}}}}},
		{{Key: "$project", Value: bson.D{{Key: s.embeddingKey, Value: 0}}}},
	}, nil
}

// SimilaritySearchWithScore embeds query and runs the vector search.
func (s *AtlasStore) SimilaritySearchWithScore(ctx context.Context, query string, k int, filter *vectordb.FilterSet) ([]vectordb.ScoredDocument, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("[Mongo] no embedder configured")
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("[Mongo] embedding query: %w", err)
	}
	return s.SimilaritySearchWithScoreByVector(ctx, vec, k, filter)
}

// GetAllIDs returns every distinct file_id in the collection.
func (s *AtlasStore) GetAllIDs(ctx context.Context) (_ []string, err error) {
	ctx, done := s.begin(ctx, "get_all_ids", 0)
	defer func() { done(err) }()

	ids, err := s.distinctIDs(ctx, bson.D{})
	if err != nil {
		return nil, s.enumerationError("get_all_ids", err)
	}
	return ids, nil
}

// GetFilteredIDs returns the distinct members of ids present in the collection.
func (s *AtlasStore) GetFilteredIDs(ctx context.Context, ids []string) (_ []string, err error) {
	ctx, done := s.begin(ctx, "get_filtered_ids", len(ids))
	defer func() { done(err) }()

	if len(ids) == 0 {
		return []string{}, nil
	}
	found, err := s.distinctIDs(ctx, fileIDFilter(ids))
	if err != nil {
		return nil, s.enumerationError("get_filtered_ids", err)
	}
	return found, nil
}

// GetDocumentsByIDs returns every chunk whose file_id is in ids.
func (s *AtlasStore) GetDocumentsByIDs(ctx context.Context, ids []string) (_ []vectordb.Document, err error) {
	ctx, done := s.begin(ctx, "get_documents_by_ids", len(ids))
	defer func() { done(err) }()

	docs := []vectordb.Document{}
	if len(ids) == 0 {
		return docs, nil
	}

	cur, err := s.coll.Find(ctx, fileIDFilter(ids), options.Find().SetProjection(bson.D{{Key: s.embeddingKey, Value: 0}}))
	if err != nil {
		return nil, s.enumerationError("get_documents_by_ids", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, s.enumerationError("get_documents_by_ids", err)
		}
		docs = append(docs, s.toDocument(m))
	}
	if err := cur.Err(); err != nil {
		return nil, s.enumerationError("get_documents_by_ids", err)
	}
	return docs, nil
}

// Delete removes every chunk whose file_id is in ids. An empty ids is a no-op.
func (s *AtlasStore) Delete(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	ctx, done := s.begin(ctx, "delete", len(ids))
	defer func() { done(err) }()

	res, err := s.coll.DeleteMany(ctx, fileIDFilter(ids))
	if err != nil {
		return s.enumerationError("delete", err)
	}
	s.logger.Debug("[Mongo] delete completed", nil, map[string]interface{}{
		"collection": s.coll.Name(),
		"deleted":    res.DeletedCount,
	})
	return nil
}

// Close disconnects the client if the store opened it.
func (s *AtlasStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *AtlasStore) distinctIDs(ctx context.Context, filter bson.D) ([]string, error) {
	values, err := s.coll.Distinct(ctx, vectordb.FileIDKey, filter)
	if err != nil {
		return nil, err
	}
	set := vectordb.NewIDSet()
	for _, v := range values {
		if id, ok := v.(string); ok {
			set.Add(id)
		}
	}
	return set.Slice(), nil
}

// toDocument splits a MongoDB document into text and metadata. The _id and
// the vector are not metadata.
func (s *AtlasStore) toDocument(m bson.M) vectordb.Document {
	content, _ := m[s.textKey].(string)
	meta := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "_id", s.textKey, s.embeddingKey:
			continue
		}
		meta[k] = normalizeValue(v)
	}
	return vectordb.Document{Content: content, Metadata: meta}
}

// normalizeValue converts bson container and number types to plain Go ones.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int32:
		return int64(t)
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeValue(inner)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}

func (s *AtlasStore) enumerationError(op string, err error) error {
	return vectordb.NewEnumerationError(op, s.coll.Name(), err, classifyError)
}

// begin starts the span for op and returns the finisher that ends it and
// reports the operation to the observer.
func (s *AtlasStore) begin(ctx context.Context, op string, size int) (context.Context, func(error)) {
	start := time.Now()
	collection := s.coll.Name()
	ctx, span := tracer.Start(ctx, "mongo."+op)
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.String("index", s.index),
		attribute.Int("size", size),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("[Mongo] operation failed", err, map[string]interface{}{
				"operation":  op,
				"collection": collection,
			})
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		if s.observer != nil {
			s.observer.ObserveOperation(observability.OperationContext{
				Component: "mongo",
				Operation: op,
				Resource:  collection,
				Duration:  time.Since(start),
				Error:     err,
				Size:      int64(size),
			})
		}
	}
}
