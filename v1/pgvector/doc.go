// Package pgvector implements vectordb.Store on PostgreSQL with the pgvector
// extension.
//
// Two stores share one implementation and differ only in the driver:
//
//   - GormStore ("sync" mode) runs on gorm with gorm.io/driver/postgres.
//   - PoolStore ("async" mode) runs on a native pgx connection pool.
//
// Both use the table layout of the langchain PGVector store:
// langchain_pg_collection holds one row per collection and
// langchain_pg_embedding one row per document chunk, with the text in
// "document", the metadata in the "cmetadata" JSONB column and the file_id in
// "custom_id". Constructors create the tables when missing and register the
// collection row.
//
// Search orders by cosine distance (the <=> operator) and reports the
// distance as the score, so lower is closer.
//
// # Filters
//
// vectordb.FilterSet is translated to predicates over cmetadata. Dotted field
// names address nested keys. Keys are restricted to letters, digits, "_", "-"
// and ":"; anything else is rejected with vectordb.ErrInvalidInput.
//
// # Basic Usage
//
//	cfg := pgvector.DefaultConfig().
//	    WithConnectionString("postgresql+psycopg2://rag:secret@db:5432/rag").
//	    WithCollection("documents")
//
//	store, err := pgvector.NewPoolStore(ctx, cfg, embedder, pgvector.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
// # Failures
//
// Enumerations and deletes fail with *vectordb.EnumerationError classified by
// SQLSTATE: connection exceptions and operator intervention are
// "unavailable", query_canceled is "timeout", and authorization, syntax and
// data exceptions are "rejected".
package pgvector
