package qdrant

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// validateSearchInput validates common search parameters.
func validateSearchInput(vector []float32, k int) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: vector cannot be empty", vectordb.ErrInvalidInput)
	}
	if k <= 0 {
		return fmt.Errorf("%w: k must be greater than 0", vectordb.ErrInvalidInput)
	}
	return nil
}

// extractVectorDetails returns the vector size and distance metric of a
// collection, or (0, "") when the collection uses named or sparse vectors.
//
// Qdrant represents vector configuration data using a deeply nested protobuf
// structure with "oneof" wrappers, hence the nil guards.
func extractVectorDetails(info *qdrant.CollectionInfo) (int, string) {
	if info == nil ||
		info.Config == nil ||
		info.Config.Params == nil ||
		info.Config.Params.VectorsConfig == nil ||
		info.Config.Params.VectorsConfig.Config == nil {
		return 0, ""
	}

	if cfg, ok := info.Config.Params.VectorsConfig.Config.(*qdrant.VectorsConfig_Params); ok {
		return int(cfg.Params.Size), cfg.Params.Distance.String()
	}

	return 0, ""
}

// derefUint64 safely dereferences a *uint64 pointer.
func derefUint64(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return 0
}
