package vectordb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
)

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (f *failingStore) AddDocuments(context.Context, []Document, []string) ([]string, error) {
	return nil, f.err
}
func (f *failingStore) SimilaritySearchWithScoreByVector(context.Context, []float32, int, *FilterSet) ([]ScoredDocument, error) {
	return nil, f.err
}
func (f *failingStore) SimilaritySearchWithScore(context.Context, string, int, *FilterSet) ([]ScoredDocument, error) {
	return nil, f.err
}
func (f *failingStore) GetAllIDs(context.Context) ([]string, error) { return nil, f.err }
func (f *failingStore) GetFilteredIDs(context.Context, []string) ([]string, error) { return nil, f.err }
func (f *failingStore) GetDocumentsByIDs(context.Context, []string) ([]Document, error) { return nil, f.err }
func (f *failingStore) Delete(context.Context, []string) error { return f.err }
func (f *failingStore) Close(context.Context) error { return nil }

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, ctx)
}

type warnCounter struct {
	observability.NopLogger
	warns int
}

func (w *warnCounter) Warn(string, error, ...map[string]interface{}) { w.warns++ }

func TestLenientStoreAbsorbsReadFailures(t *testing.T) {
	ctx := context.Background()
	backendErr := NewEnumerationError("get_all_ids", "docs", errors.New("connection refused"), func(error) Reason {
		return ReasonUnavailable
	})

	obs := &recordingObserver{}
	log := &warnCounter{}
	store := NewLenientStore(&failingStore{err: backendErr}, log, obs)

	ids, err := store.GetAllIDs(ctx)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	filtered, err := store.GetFilteredIDs(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	docs, err := store.GetDocumentsByIDs(ctx, []string{"a"})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	assert.NoError(t, store.Delete(ctx, []string{"a"}))

	assert.Equal(t, 4, log.warns)
	require.Len(t, obs.ops, 4)
	for _, op := range obs.ops {
		assert.Equal(t, true, op.Metadata["degraded"])
		assert.Equal(t, "docs", op.Resource)
		assert.Error(t, op.Error)
	}
	assert.Equal(t, "delete", obs.ops[3].Operation)
}

func TestLenientStorePropagatesWriteAndSearchFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	store := NewLenientStore(&failingStore{err: boom}, nil, nil)

	_, err := store.AddDocuments(ctx, []Document{{Content: "x"}}, []string{"1"})
	assert.ErrorIs(t, err, boom)

	_, err = store.SimilaritySearchWithScoreByVector(ctx, []float32{1}, 1, nil)
	assert.ErrorIs(t, err, boom)

	_, err = store.SimilaritySearchWithScore(ctx, "q", 1, nil)
	assert.ErrorIs(t, err, boom)
}

func TestEnumerationErrorClassification(t *testing.T) {
	err := NewEnumerationError("get_all_ids", "docs", context.DeadlineExceeded, nil)
	assert.Equal(t, ReasonTimeout, err.Reason)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = NewEnumerationError("delete", "docs", errors.New("x"), nil)
	assert.Equal(t, ReasonUnknown, err.Reason)
	assert.Contains(t, err.Error(), `delete on collection "docs"`)

	wrapped := errors.Join(errors.New("outer"), err)
	assert.True(t, IsEnumerationError(wrapped))
	assert.Equal(t, ReasonUnknown, ReasonOf(wrapped))
	assert.False(t, IsEnumerationError(errors.New("plain")))
}
