package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/logger"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/observability"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/tracer"
	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// memoryStore keeps documents in insertion order, one per file_id.
type memoryStore struct {
	order   []string
	docs    map[string]vectordb.Document
	queries []string
	filter  *vectordb.FilterSet
	closed  bool
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string]vectordb.Document{}}
}

func (m *memoryStore) AddDocuments(_ context.Context, docs []vectordb.Document, ids []string) ([]string, error) {
	prepared, err := vectordb.PrepareDocuments(docs, ids)
	if err != nil {
		return nil, err
	}
	for i, d := range prepared {
		if _, ok := m.docs[ids[i]]; !ok {
			m.order = append(m.order, ids[i])
		}
		m.docs[ids[i]] = d
	}
	return ids, nil
}

func (m *memoryStore) SimilaritySearchWithScoreByVector(context.Context, []float32, int, *vectordb.FilterSet) ([]vectordb.ScoredDocument, error) {
	return nil, errors.New("not used")
}

func (m *memoryStore) SimilaritySearchWithScore(_ context.Context, query string, k int, filter *vectordb.FilterSet) ([]vectordb.ScoredDocument, error) {
	m.queries = append(m.queries, query)
	m.filter = filter
	var out []vectordb.ScoredDocument
	for _, id := range m.order {
		if len(out) == k {
			break
		}
		out = append(out, vectordb.ScoredDocument{Document: m.docs[id], Score: 0.5})
	}
	return out, nil
}

func (m *memoryStore) GetAllIDs(context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]string{}, m.order...), nil
}

func (m *memoryStore) GetFilteredIDs(_ context.Context, ids []string) ([]string, error) {
	out := []string{}
	for _, id := range ids {
		if _, ok := m.docs[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memoryStore) GetDocumentsByIDs(_ context.Context, ids []string) ([]vectordb.Document, error) {
	out := []vectordb.Document{}
	for _, id := range ids {
		if d, ok := m.docs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.docs, id)
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.docs[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
	return nil
}

func (m *memoryStore) Close(context.Context) error {
	m.closed = true
	return nil
}

// run executes the CLI against store and returns stdout.
func run(t *testing.T, store *memoryStore, args ...string) (string, error) {
	t.Helper()
	var stopped bool
	open := func(context.Context, globalOptions) (*session, error) {
		return &session{
			store: store,
			stop: func(ctx context.Context) error {
				stopped = true
				return store.Close(ctx)
			},
		}, nil
	}

	root := newRootCmd(open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		assert.True(t, stopped, "store must be shut down")
	}
	return out.String(), err
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestScenarioAddListDelete(t *testing.T) {
	store := newMemoryStore()

	_, err := run(t, store, "add", "--id", "1", "--content", "first")
	require.NoError(t, err)
	_, err = run(t, store, "add", "--id", "2", "--content", "second")
	require.NoError(t, err)

	out, err := run(t, store, "ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, decode[[]string](t, out))

	out, err = run(t, store, "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 id(s)\n", out)

	out, err = run(t, store, "ids")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, decode[[]string](t, out))
	assert.True(t, store.closed)
}

func TestIDsWithFilter(t *testing.T) {
	store := newMemoryStore()
	_, err := run(t, store, "add", "--id", "a", "--content", "x")
	require.NoError(t, err)

	out, err := run(t, store, "ids", "--filter", "a,b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, decode[[]string](t, out))
}

func TestIDsPropagatesStoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("backend down")

	_, err := run(t, store, "ids")
	assert.EqualError(t, err, "backend down")
}

func TestAddWithMetadataAndGet(t *testing.T) {
	store := newMemoryStore()
	_, err := run(t, store, "add", "--id", "doc-1", "--content", "hello",
		"--meta", "lang=en", "--meta", "page=3", "--meta", "draft=false", "--meta", "ratio=0.5")
	require.NoError(t, err)

	out, err := run(t, store, "get", "doc-1", "missing")
	require.NoError(t, err)

	docs := decode[[]vectordb.Document](t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "hello", docs[0].Content)
	assert.Equal(t, "doc-1", docs[0].Metadata["file_id"])
	assert.Equal(t, "en", docs[0].Metadata["lang"])
	assert.Equal(t, float64(3), docs[0].Metadata["page"])
	assert.Equal(t, false, docs[0].Metadata["draft"])
	assert.Equal(t, 0.5, docs[0].Metadata["ratio"])

	assert.Equal(t, int64(3), store.docs["doc-1"].Metadata["page"])
}

func TestAddRequiresFlags(t *testing.T) {
	_, err := run(t, newMemoryStore(), "add", "--content", "x")
	assert.Error(t, err)
}

func TestAddRejectsBadMeta(t *testing.T) {
	_, err := run(t, newMemoryStore(), "add", "--id", "1", "--content", "x", "--meta", "novalue")
	assert.ErrorContains(t, err, "expected key=value")

	_, err = run(t, newMemoryStore(), "add", "--id", "1", "--content", "x", "--meta", "file_id=2")
	assert.ErrorContains(t, err, "set from --id")
}

func TestSearch(t *testing.T) {
	store := newMemoryStore()
	for _, id := range []string{"1", "2", "3"} {
		_, err := run(t, store, "add", "--id", id, "--content", "doc "+id)
		require.NoError(t, err)
	}

	out, err := run(t, store, "search", "--query", "doc", "-k", "2",
		"--filter", `{"must":[{"field":"lang","equalTo":"en"}]}`)
	require.NoError(t, err)

	hits := decode[[]vectordb.ScoredDocument](t, out)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc 1", hits[0].Content)
	assert.Equal(t, float32(0.5), hits[0].Score)

	assert.Equal(t, []string{"doc"}, store.queries)
	require.NotNil(t, store.filter)
	require.NotNil(t, store.filter.Must)
	require.Len(t, store.filter.Must.Conditions, 1)
	match, ok := store.filter.Must.Conditions[0].(*vectordb.MatchCondition)
	require.True(t, ok)
	assert.Equal(t, "lang", match.Field)
	assert.Equal(t, "en", match.Value)
}

func TestSearchValidation(t *testing.T) {
	_, err := run(t, newMemoryStore(), "search", "--query", "q", "-k", "0")
	assert.ErrorContains(t, err, "-k must be at least 1")

	_, err = run(t, newMemoryStore(), "search", "--query", "q", "--filter", "{not json")
	assert.ErrorContains(t, err, "invalid --filter")
}

func TestOpenFailureIsReturned(t *testing.T) {
	root := newRootCmd(func(context.Context, globalOptions) (*session, error) {
		return nil, errors.New("no config")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"ids"})
	assert.EqualError(t, root.Execute(), "no config")
}

func TestTypedValue(t *testing.T) {
	assert.Equal(t, int64(42), typedValue("42"))
	assert.Equal(t, 1.5, typedValue("1.5"))
	assert.Equal(t, true, typedValue("true"))
	assert.Equal(t, "True", typedValue("True"))
	assert.Equal(t, "en", typedValue("en"))
	assert.Equal(t, "", typedValue(""))
}

func TestRunWithTracer(t *testing.T) {
	tr, err := tracer.NewClient(tracer.Config{ServiceName: "ragstore-test"}, observability.NopLogger{})
	require.NoError(t, err)
	defer func() { _ = tr.Shutdown(context.Background()) }()

	core, logs := observer.New(zapcore.DebugLevel)
	store := newMemoryStore()
	s := &session{store: store, tracer: tr, log: logger.NewFromZap(zap.New(core), true)}

	var sawSpan bool
	err = s.run(context.Background(), "ragstore.ids", func(ctx context.Context, _ vectordb.Store) error {
		sawSpan = trace.SpanContextFromContext(ctx).IsValid()
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.True(t, sawSpan)

	entries := logs.FilterMessage("command failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ragstore.ids", fields["command"])
	assert.NotEmpty(t, fields["trace_id"])
	assert.NotEmpty(t, fields["span_id"])
}
