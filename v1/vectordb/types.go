package vectordb

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// FileIDKey is the metadata key carrying the application document identifier.
// Every stored point/row/document has it; all id-based operations select on it.
const FileIDKey = "file_id"

// ReservedPrefix marks backend bookkeeping metadata that search results never expose.
const ReservedPrefix = "_"

// ErrInvalidInput is returned for malformed arguments (mismatched lengths, k <= 0, empty vectors).
var ErrInvalidInput = errors.New("vectordb: invalid input")

// Document is a text body with free-form metadata. Identity is imposed
// externally through the file_id metadata key.
type Document struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// ScoredDocument is a search hit. Score semantics (distance or similarity)
// are defined by the backend and passed through unchanged.
type ScoredDocument struct {
	Document
	Score float32 `json:"score"`
}

// Collection contains metadata about a vector collection.
type Collection struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	VectorSize  int    `json:"vectorSize"`
	Distance    string `json:"distance"`
	VectorCount uint64 `json:"vectorCount"`
	PointCount  uint64 `json:"pointCount"`
}

// PrepareDocuments pairs docs with ids and returns copies whose metadata
// carries file_id. The caller's documents and metadata maps are not modified.
func PrepareDocuments(docs []Document, ids []string) ([]Document, error) {
	if len(docs) != len(ids) {
		return nil, fmt.Errorf("%w: %d documents but %d ids", ErrInvalidInput, len(docs), len(ids))
	}
	out := make([]Document, len(docs))
	for i, doc := range docs {
		meta := make(map[string]any, len(doc.Metadata)+1)
		maps.Copy(meta, doc.Metadata)
		meta[FileIDKey] = ids[i]
		out[i] = Document{Content: doc.Content, Metadata: meta}
	}
	return out, nil
}

// StripReserved removes keys starting with ReservedPrefix in place and
// returns the map for chaining.
func StripReserved(meta map[string]any) map[string]any {
	for k := range meta {
		if strings.HasPrefix(k, ReservedPrefix) {
			delete(meta, k)
		}
	}
	return meta
}

// IDSet accumulates identifiers, dropping duplicates and keeping first-seen order.
type IDSet struct {
	seen  map[string]struct{}
	order []string
}

// NewIDSet returns an empty set.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add inserts id unless it is already present.
func (s *IDSet) Add(id string) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

// Len reports the number of distinct ids.
func (s *IDSet) Len() int { return len(s.order) }

// Slice returns the ids in insertion order. The result is never nil.
func (s *IDSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
