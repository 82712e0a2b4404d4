// Package qdrant implements vectordb.Store on top of the Qdrant vector database.
//
// The package has two layers:
//
//   - QdrantClient owns the gRPC connection, runs a health check on startup
//     and offers collection administration (EnsureCollection, GetCollection,
//     ListCollections).
//   - Adapter implements the document operations of vectordb.Store against a
//     single collection. It only needs the points API (PointsClient), which
//     *qdrant.Client satisfies.
//
// # Storage layout
//
// Each point holds one document chunk. Its payload is the document metadata,
// flat, plus the text under the content key ("page_content" by default). The
// application identifier lives in the "file_id" payload field and every id
// based operation (GetAllIDs, GetFilteredIDs, GetDocumentsByIDs, Delete)
// selects on it, so a document split into many chunks is handled as one.
//
// Point ids are derived from file_ids: UUIDs and unsigned integers are used
// as-is, other strings are hashed into a name-based UUID. Repeats of an id in
// one AddDocuments call get their own points.
//
// # Basic Usage
//
//	cfg, err := qdrant.FromConnectionString("https://qdrant.internal:6333")
//	if err != nil {
//	    return err
//	}
//	cfg.APIKey = apiKey
//	cfg.Collection = "documents"
//
//	store, err := qdrant.NewAdapterFromConfig(cfg, embedder, qdrant.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
//	_, err = store.AddDocuments(ctx, []vectordb.Document{
//	    {Content: "Qdrant is a vector database", Metadata: map[string]any{"source": "wiki"}},
//	}, []string{"doc-1"})
//
//	hits, err := store.SimilaritySearchWithScore(ctx, "what is qdrant?", 5,
//	    vectordb.NewFilterSet(vectordb.Must(vectordb.NewMatch("source", "wiki"))))
//
// # Failures
//
// Enumerations and deletes fail with *vectordb.EnumerationError, classified
// from the gRPC status: Unavailable is "unavailable", DeadlineExceeded is
// "timeout", and InvalidArgument, NotFound, PermissionDenied,
// Unauthenticated or FailedPrecondition are "rejected". Wrap the adapter in
// vectordb.NewLenientStore to get empty results instead.
//
// # Fx Integration
//
//	app := fx.New(
//	    fx.Provide(func() *qdrant.Config { return cfg }),
//	    qdrant.FXModule,
//	    fx.Invoke(func(c *qdrant.QdrantClient) error {
//	        return c.EnsureCollection(context.Background(), "documents", 1024)
//	    }),
//	)
//
// # Observability
//
// Every Adapter operation opens an OpenTelemetry span named "qdrant.<op>" on
// the global tracer provider and, when an observer is set with WithObserver,
// reports an observability.OperationContext with component "qdrant".
package qdrant
