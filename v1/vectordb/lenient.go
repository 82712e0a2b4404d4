package vectordb

import (
	"context"
	"errors"
	"time"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

// LenientStore keeps the availability-first contract of the legacy adapters:
// failed read enumerations answer with an empty result and a failed delete is
// a no-op. Every absorbed failure is logged at warn level and reported to the
// observer with Metadata["degraded"] = true.
//
// Inserts and searches pass through untouched, errors included.
type LenientStore struct {
	Store
	logger   observability.Logger
	observer observability.Observer
}

// NewLenientStore wraps store. logger and observer may be nil.
func NewLenientStore(store Store, logger observability.Logger, observer observability.Observer) *LenientStore {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &LenientStore{Store: store, logger: logger, observer: observer}
}

// Unwrap returns the strict store underneath.
func (s *LenientStore) Unwrap() Store { return s.Store }

func (s *LenientStore) GetAllIDs(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := s.Store.GetAllIDs(ctx)
	if err != nil {
		s.absorb("get_all_ids", start, err)
		return []string{}, nil
	}
	return ids, nil
}

func (s *LenientStore) GetFilteredIDs(ctx context.Context, ids []string) ([]string, error) {
	start := time.Now()
	found, err := s.Store.GetFilteredIDs(ctx, ids)
	if err != nil {
		s.absorb("get_filtered_ids", start, err)
		return []string{}, nil
	}
	return found, nil
}

func (s *LenientStore) GetDocumentsByIDs(ctx context.Context, ids []string) ([]Document, error) {
	start := time.Now()
	docs, err := s.Store.GetDocumentsByIDs(ctx, ids)
	if err != nil {
		s.absorb("get_documents_by_ids", start, err)
		return []Document{}, nil
	}
	return docs, nil
}

func (s *LenientStore) Delete(ctx context.Context, ids []string) error {
	start := time.Now()
	if err := s.Store.Delete(ctx, ids); err != nil {
		s.absorb("delete", start, err)
	}
	return nil
}

func (s *LenientStore) absorb(op string, start time.Time, err error) {
	fields := map[string]interface{}{
		"operation": op,
		"reason":    string(ReasonOf(err)),
	}
	var e *EnumerationError
	collection := ""
	if errors.As(err, &e) {
		collection = e.Collection
		fields["collection"] = collection
	}
	s.logger.Warn("vector store failure absorbed", err, fields)

	if s.observer != nil {
		s.observer.ObserveOperation(observability.OperationContext{
			Component: "vectordb",
			Operation: op,
			Resource:  collection,
			Duration:  time.Since(start),
			Error:     err,
			Metadata:  map[string]interface{}{"degraded": true},
		})
	}
}
