package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgv "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

type recordedCall struct {
	query string
	args  []any
	inTx  bool
}

// fakeConn records statements and answers queries through onQuery.
type fakeConn struct {
	mu      sync.Mutex
	execs   []recordedCall
	queries []recordedCall
	txs     int
	closed  bool
	inTx    bool

	execErr func(query string) error
	onQuery func(query string, args []any) ([][]any, error)
}

func (f *fakeConn) exec(_ context.Context, query string, args ...any) error {
	f.mu.Lock()
	f.execs = append(f.execs, recordedCall{query: query, args: args, inTx: f.inTx})
	f.mu.Unlock()
	if f.execErr != nil {
		return f.execErr(query)
	}
	return nil
}

func (f *fakeConn) query(_ context.Context, query string, args []any, each func(scan func(dest ...any) error) error) error {
	f.mu.Lock()
	f.queries = append(f.queries, recordedCall{query: query, args: args, inTx: f.inTx})
	f.mu.Unlock()

	if f.onQuery == nil {
		return nil
	}
	rows, err := f.onQuery(query, args)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := each(scanInto(row)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeConn) transaction(_ context.Context, fn func(tx conn) error) error {
	f.txs++
	f.inTx = true
	defer func() { f.inTx = false }()
	return fn(f)
}

func (f *fakeConn) close() error {
	f.closed = true
	return nil
}

func scanInto(row []any) func(dest ...any) error {
	return func(dest ...any) error {
		if len(dest) != len(row) {
			return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
		}
		for i, d := range dest {
			switch p := d.(type) {
			case *string:
				*p = row[i].(string)
			case *float64:
				*p = row[i].(float64)
			default:
				return fmt.Errorf("scan: unsupported destination %T", d)
			}
		}
		return nil
	}
}

type fakeEmbedder struct {
	err error
}

func (e fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (e fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

const testCollectionID = "6f1c2b8e-3c52-4a4e-9a55-0b2d63a1f001"

// existingCollection answers the collection lookup with testCollectionID.
func existingCollection(next func(query string, args []any) ([][]any, error)) func(string, []any) ([][]any, error) {
	return func(query string, args []any) ([][]any, error) {
		if query == selectCollectionSQL {
			return [][]any{{testCollectionID}}, nil
		}
		if next == nil {
			return nil, nil
		}
		return next(query, args)
	}
}

func newTestStore(t *testing.T, fc *fakeConn, opts ...Option) *store {
	t.Helper()
	if fc.onQuery == nil {
		fc.onQuery = existingCollection(nil)
	}
	s, err := newStore(context.Background(), fc, "sync", "test", fakeEmbedder{}, opts...)
	require.NoError(t, err)
	fc.execs, fc.queries, fc.txs = nil, nil, 0
	return s
}

func TestNewStoreCreatesSchemaAndCollection(t *testing.T) {
	fc := &fakeConn{}
	s, err := newStore(context.Background(), fc, "sync", "docs", fakeEmbedder{})
	require.NoError(t, err)

	require.Len(t, fc.execs, len(schemaSQL)+1)
	for i, stmt := range schemaSQL {
		assert.Equal(t, stmt, fc.execs[i].query)
	}

	insert := fc.execs[len(schemaSQL)]
	assert.Equal(t, insertCollectionSQL, insert.query)
	assert.True(t, insert.inTx)
	assert.Equal(t, "docs", insert.args[1])
	assert.Equal(t, insert.args[0], s.collectionID)
	assert.NotEmpty(t, s.collectionID)
}

func TestNewStoreReusesExistingCollection(t *testing.T) {
	fc := &fakeConn{onQuery: existingCollection(nil)}
	s, err := newStore(context.Background(), fc, "async", "test", fakeEmbedder{})
	require.NoError(t, err)

	assert.Equal(t, testCollectionID, s.collectionID)
	assert.Len(t, fc.execs, len(schemaSQL))
	assert.Equal(t, []any{"test"}, fc.queries[0].args)
}

func TestNewStoreSchemaFailure(t *testing.T) {
	fc := &fakeConn{execErr: func(string) error { return errors.New("permission denied to create extension") }}
	_, err := newStore(context.Background(), fc, "sync", "test", fakeEmbedder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating schema")
}

func TestAddDocuments(t *testing.T) {
	fc := &fakeConn{}
	s := newTestStore(t, fc)

	meta := map[string]any{"source": "wiki"}
	docs := []vectordb.Document{
		{Content: "alpha", Metadata: meta},
		{Content: "beta"},
	}
	ids, err := s.AddDocuments(context.Background(), docs, []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)

	assert.Equal(t, 1, fc.txs, "inserts share one transaction")
	require.Len(t, fc.execs, 2)
	for i, call := range fc.execs {
		assert.Equal(t, insertEmbeddingSQL, call.query)
		assert.True(t, call.inTx)
		require.Len(t, call.args, 6)
		assert.Equal(t, testCollectionID, call.args[1])
		assert.IsType(t, pgv.Vector{}, call.args[2])
		assert.Equal(t, docs[i].Content, call.args[3])
		assert.Equal(t, ids[i], call.args[5])

		var stored map[string]any
		require.NoError(t, json.Unmarshal([]byte(call.args[4].(string)), &stored))
		assert.Equal(t, ids[i], stored[vectordb.FileIDKey])
	}

	assert.Equal(t, []float32{5, 1}, fc.execs[0].args[2].(pgv.Vector).Slice())
	assert.NotEqual(t, fc.execs[0].args[0], fc.execs[1].args[0])
	assert.Equal(t, map[string]any{"source": "wiki"}, meta, "caller metadata is not modified")
}

func TestAddDocumentsValidation(t *testing.T) {
	fc := &fakeConn{}
	s := newTestStore(t, fc)

	_, err := s.AddDocuments(context.Background(), []vectordb.Document{{Content: "a"}}, []string{"1", "2"})
	assert.ErrorIs(t, err, vectordb.ErrInvalidInput)

	ids, err := s.AddDocuments(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, fc.execs)
}

func TestAddDocumentsEmbedFailure(t *testing.T) {
	fc := &fakeConn{onQuery: existingCollection(nil)}
	s, err := newStore(context.Background(), fc, "sync", "test", fakeEmbedder{err: errors.New("endpoint down")})
	require.NoError(t, err)
	fc.execs = nil

	_, err = s.AddDocuments(context.Background(), []vectordb.Document{{Content: "a"}}, []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint down")
	assert.Empty(t, fc.execs)
}

func TestSimilaritySearch(t *testing.T) {
	fc := &fakeConn{}
	fc.onQuery = existingCollection(func(query string, args []any) ([][]any, error) {
		return [][]any{
			{"alpha", `{"file_id":"1","_internal":"x","page":3,"ratio":0.5}`, 0.1},
			{"beta", `{"file_id":"2"}`, 0.4},
		}, nil
	})
	s := newTestStore(t, fc)

	filter := vectordb.NewFilterSet(vectordb.Must(vectordb.NewMatch("source", "wiki")))
	hits, err := s.SimilaritySearchWithScoreByVector(context.Background(), []float32{1, 2}, 2, filter)
	require.NoError(t, err)

	require.Len(t, fc.queries, 1)
	q := fc.queries[0]
	assert.True(t, strings.HasPrefix(q.query, searchSQL))
	assert.Contains(t, q.query, ` AND COALESCE(cmetadata #> '{source}' = CAST(? AS jsonb), false)`)
	assert.True(t, strings.HasSuffix(q.query, " ORDER BY distance LIMIT ?"))
	require.Len(t, q.args, 4)
	assert.Equal(t, pgv.NewVector([]float32{1, 2}), q.args[0])
	assert.Equal(t, testCollectionID, q.args[1])
	assert.Equal(t, `"wiki"`, q.args[2])
	assert.Equal(t, 2, q.args[3])

	require.Len(t, hits, 2)
	assert.Equal(t, "alpha", hits[0].Content)
	assert.Equal(t, float32(0.1), hits[0].Score)
	assert.Equal(t, map[string]any{"file_id": "1", "page": int64(3), "ratio": 0.5}, hits[0].Metadata)
	assert.Equal(t, "beta", hits[1].Content)
}

func TestSimilaritySearchWithScoreEmbedsQuery(t *testing.T) {
	fc := &fakeConn{}
	s := newTestStore(t, fc)

	hits, err := s.SimilaritySearchWithScore(context.Background(), "abc", 3, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NotNil(t, hits)

	require.Len(t, fc.queries, 1)
	assert.Equal(t, pgv.NewVector([]float32{3, 1}), fc.queries[0].args[0])
	assert.NotContains(t, fc.queries[0].query, "COALESCE(cmetadata #>")
}

func TestSimilaritySearchValidation(t *testing.T) {
	s := newTestStore(t, &fakeConn{})

	_, err := s.SimilaritySearchWithScoreByVector(context.Background(), []float32{1}, 0, nil)
	assert.ErrorIs(t, err, vectordb.ErrInvalidInput)

	_, err = s.SimilaritySearchWithScoreByVector(context.Background(), nil, 1, nil)
	assert.ErrorIs(t, err, vectordb.ErrInvalidInput)

	_, err = s.SimilaritySearchWithScoreByVector(context.Background(), []float32{1}, 1,
		vectordb.NewFilterSet(vectordb.Must(vectordb.NewMatch("bad'key", 1))))
	assert.ErrorIs(t, err, vectordb.ErrInvalidInput)
}

func TestIDEnumeration(t *testing.T) {
	fc := &fakeConn{}
	fc.onQuery = existingCollection(func(query string, args []any) ([][]any, error) {
		switch query {
		case allIDsSQL:
			return [][]any{{"1"}, {"2"}, {"2"}}, nil
		case filteredIDsSQL:
			return [][]any{{"2"}}, nil
		}
		return nil, nil
	})
	s := newTestStore(t, fc)
	ctx := context.Background()

	all, err := s.GetAllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, all)
	assert.Equal(t, []any{testCollectionID}, fc.queries[0].args)

	found, err := s.GetFilteredIDs(ctx, []string{"2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, found)
	assert.Equal(t, []any{testCollectionID, textArray{"2", "3"}}, fc.queries[1].args)

	none, err := s.GetFilteredIDs(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, none)
	assert.Len(t, fc.queries, 2)
}

func TestGetDocumentsByIDs(t *testing.T) {
	fc := &fakeConn{}
	fc.onQuery = existingCollection(func(query string, args []any) ([][]any, error) {
		return [][]any{
			{"chunk one", `{"file_id":"1","_offset":0}`},
			{"chunk two", `{"file_id":"1","_offset":1}`},
		}, nil
	})
	s := newTestStore(t, fc)

	docs, err := s.GetDocumentsByIDs(context.Background(), []string{"1"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "chunk one", docs[0].Content)
	assert.Equal(t, map[string]any{"file_id": "1", "_offset": int64(0)}, docs[0].Metadata)
	assert.Equal(t, documentsByIDsSQL, fc.queries[0].query)

	empty, err := s.GetDocumentsByIDs(context.Background(), []string{})
	require.NoError(t, err)
	assert.Equal(t, []vectordb.Document{}, empty)
}

func TestDelete(t *testing.T) {
	fc := &fakeConn{}
	s := newTestStore(t, fc)

	require.NoError(t, s.Delete(context.Background(), nil))
	assert.Empty(t, fc.execs)

	require.NoError(t, s.Delete(context.Background(), []string{"1"}))
	require.Len(t, fc.execs, 1)
	assert.Equal(t, deleteSQL, fc.execs[0].query)
	assert.Equal(t, []any{testCollectionID, textArray{"1"}}, fc.execs[0].args)
}

func TestEnumerationErrorsAreTyped(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason vectordb.Reason
	}{
		{"connection failure", &pgconn.PgError{Code: "08006"}, vectordb.ReasonUnavailable},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, vectordb.ReasonTimeout},
		{"missing table", &pgconn.PgError{Code: "42P01"}, vectordb.ReasonRejected},
		{"deadline", context.DeadlineExceeded, vectordb.ReasonTimeout},
		{"other", errors.New("boom"), vectordb.ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeConn{}
			s := newTestStore(t, fc)
			fc.onQuery = func(string, []any) ([][]any, error) { return nil, tt.err }
			fc.execErr = func(string) error { return tt.err }
			ctx := context.Background()

			_, err := s.GetAllIDs(ctx)
			assert.Equal(t, tt.reason, vectordb.ReasonOf(err))
			assert.ErrorIs(t, err, tt.err)

			_, err = s.GetFilteredIDs(ctx, []string{"1"})
			assert.Equal(t, tt.reason, vectordb.ReasonOf(err))

			_, err = s.GetDocumentsByIDs(ctx, []string{"1"})
			assert.Equal(t, tt.reason, vectordb.ReasonOf(err))

			err = s.Delete(ctx, []string{"1"})
			require.True(t, vectordb.IsEnumerationError(err))
			assert.Equal(t, tt.reason, vectordb.ReasonOf(err))
		})
	}
}

func TestLenientWrapAbsorbsEnumerationFailures(t *testing.T) {
	fc := &fakeConn{}
	s := newTestStore(t, fc)
	fc.onQuery = func(string, []any) ([][]any, error) { return nil, &pgconn.PgError{Code: "08006"} }

	lenient := vectordb.NewLenientStore(s, nil, nil)
	ids, err := lenient.GetAllIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
}

func TestObserverReceivesOperations(t *testing.T) {
	var seen []observability.OperationContext
	observer := observability.ObserverFunc(func(c observability.OperationContext) { seen = append(seen, c) })

	fc := &fakeConn{}
	s := newTestStore(t, fc, WithObserver(observer))

	_, err := s.GetAllIDs(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.Close(context.Background()))

	require.Len(t, seen, 1)
	assert.Equal(t, "pgvector", seen[0].Component)
	assert.Equal(t, "get_all_ids", seen[0].Operation)
	assert.Equal(t, "test", seen[0].Resource)
	assert.Equal(t, "sync", seen[0].SubResource)
	assert.True(t, fc.closed)
}

func TestDecodeMetadata(t *testing.T) {
	meta, err := decodeMetadata(`{"n":1,"f":1.5,"nested":{"m":2},"list":[3,"x"]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":      int64(1),
		"f":      1.5,
		"nested": map[string]any{"m": int64(2)},
		"list":   []any{int64(3), "x"},
	}, meta)

	empty, err := decodeMetadata("")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, empty)

	_, err = decodeMetadata("{")
	assert.Error(t, err)
}
