package pgvector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// The tables follow the layout of the langchain PGVector store so existing
// collections can be served unchanged.
var schemaSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS langchain_pg_collection (
		uuid UUID PRIMARY KEY,
		name VARCHAR NOT NULL,
		cmetadata JSON
	)`,
	`CREATE TABLE IF NOT EXISTS langchain_pg_embedding (
		uuid UUID PRIMARY KEY,
		collection_id UUID REFERENCES langchain_pg_collection (uuid) ON DELETE CASCADE,
		embedding VECTOR,
		document VARCHAR,
		cmetadata JSONB,
		custom_id VARCHAR
	)`,
}

const (
	selectCollectionSQL = `SELECT uuid::text FROM langchain_pg_collection WHERE name = ? LIMIT 1`

	insertCollectionSQL = `INSERT INTO langchain_pg_collection (uuid, name, cmetadata) VALUES (CAST(? AS uuid), ?, '{}')`

	insertEmbeddingSQL = `INSERT INTO langchain_pg_embedding (uuid, collection_id, embedding, document, cmetadata, custom_id)
		VALUES (CAST(? AS uuid), CAST(? AS uuid), CAST(? AS vector), ?, CAST(? AS jsonb), ?)`

	searchSQL = `SELECT COALESCE(document, ''), COALESCE(cmetadata, '{}'::jsonb)::text, embedding <=> CAST(? AS vector) AS distance
		FROM langchain_pg_embedding WHERE collection_id = CAST(? AS uuid)`

	allIDsSQL = `SELECT DISTINCT custom_id FROM langchain_pg_embedding
		WHERE collection_id = CAST(? AS uuid) AND custom_id IS NOT NULL ORDER BY custom_id`

	filteredIDsSQL = `SELECT DISTINCT custom_id FROM langchain_pg_embedding
		WHERE collection_id = CAST(? AS uuid) AND custom_id = ANY(CAST(? AS text[])) ORDER BY custom_id`

	documentsByIDsSQL = `SELECT COALESCE(document, ''), COALESCE(cmetadata, '{}'::jsonb)::text FROM langchain_pg_embedding
		WHERE collection_id = CAST(? AS uuid) AND custom_id = ANY(CAST(? AS text[]))`

	deleteSQL = `DELETE FROM langchain_pg_embedding WHERE collection_id = CAST(? AS uuid) AND custom_id = ANY(CAST(? AS text[]))`
)

func (s *store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if err := s.conn.exec(ctx, stmt); err != nil {
			return fmt.Errorf("[pgvector] creating schema: %w", err)
		}
	}
	return nil
}

// ensureCollection returns the uuid of the collection row, creating the row
// when it does not exist yet.
func (s *store) ensureCollection(ctx context.Context) (string, error) {
	var id string
	err := s.conn.transaction(ctx, func(tx conn) error {
		err := tx.query(ctx, selectCollectionSQL, []any{s.collection}, func(scan func(...any) error) error {
			return scan(&id)
		})
		if err != nil || id != "" {
			return err
		}
		id = uuid.NewString()
		return tx.exec(ctx, insertCollectionSQL, id, s.collection)
	})
	if err != nil {
		return "", fmt.Errorf("[pgvector] ensuring collection %q: %w", s.collection, err)
	}
	return id, nil
}
