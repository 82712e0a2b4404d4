package qdrant

import (
	"context"
	"fmt"
	"slices"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// EnsureCollection ──────────────────────────────────────────────────────────────
// EnsureCollection
// ──────────────────────────────────────────────────────────────
//
// EnsureCollection verifies if a given collection exists, and creates it with
// cosine distance and vectorSize dimensions if missing.
//
// It's safe to call this multiple times. Store operations never call it;
// provisioning is left to operators and tests.
func (c *QdrantClient) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}

	collections, err := c.api.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}

	if slices.Contains(collections, name) {
		c.logger.Debug("[Qdrant] collection already exists", nil, map[string]interface{}{"collection": name})
		return nil
	}

	req := &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	}

	if err := c.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] failed to create collection '%s': %w", name, err)
	}

	c.logger.Info("[Qdrant] created collection", nil, map[string]interface{}{
		"collection":  name,
		"vector_size": vectorSize,
	})
	return nil
}

// GetCollection ──────────────────────────────────────────────────────────────
// GetCollection
// ──────────────────────────────────────────────────────────────
//
// GetCollection retrieves metadata about a specific collection: status,
// point and vector counts, vector size and distance metric.
//
// Example:
//
//	collection, err := client.GetCollection(ctx, "documents")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s: points=%d size=%d distance=%s\n",
//	    collection.Name, collection.PointCount, collection.VectorSize, collection.Distance)
func (c *QdrantClient) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if c.api == nil {
		return nil, fmt.Errorf("[Qdrant] client not initialized")
	}
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	info, err := c.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}

	size, distance := extractVectorDetails(info)

	return &vectordb.Collection{
		Name:        name,
		Status:      info.GetStatus().String(),
		VectorCount: derefUint64(info.IndexedVectorsCount),
		PointCount:  derefUint64(info.PointsCount),
		VectorSize:  size,
		Distance:    distance,
	}, nil
}

// ListCollections returns the names of all existing collections.
func (c *QdrantClient) ListCollections(ctx context.Context) ([]string, error) {
	if c.api == nil {
		return nil, fmt.Errorf("[Qdrant] client not initialized")
	}

	names, err := c.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}

	c.logger.Debug("[Qdrant] listed collections", nil, map[string]interface{}{"count": len(names)})
	return names, nil
}
