// Package mongo implements vectordb.Store on MongoDB Atlas Vector Search.
//
// Documents follow the langchain MongoDBAtlasVectorSearch layout: the chunk
// text under "text", the vector under "embedding" and every metadata key,
// file_id included, as a top level field. Search runs a $vectorSearch stage
// against a pre-created Atlas index and reports vectorSearchScore, higher
// meaning closer. Index management is left to the operator.
//
// Basic usage:
//
//	cfg := mongo.DefaultConfig().
//	    WithURI("mongodb+srv://user:pw@cluster.mongodb.net/rag").
//	    WithCollection("documents").
//	    WithSearchIndex("vector_index")
//
//	store, err := mongo.NewAtlasStoreFromConfig(ctx, cfg, embedder)
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
// Enumerations and deletes fail with *vectordb.EnumerationError. Network and
// shutdown errors are "unavailable", timeouts are "timeout", and
// authorization or namespace errors are "rejected".
package mongo
