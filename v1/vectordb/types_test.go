package vectordb

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDocuments(t *testing.T) {
	t.Run("sets file_id on copies", func(t *testing.T) {
		orig := []Document{
			{Content: "A", Metadata: map[string]any{"source": "x"}},
			{Content: "B"},
		}

		out, err := PrepareDocuments(orig, []string{"1", "2"})
		require.NoError(t, err)
		require.Len(t, out, 2)

		assert.Equal(t, map[string]any{"source": "x", FileIDKey: "1"}, out[0].Metadata)
		assert.Equal(t, map[string]any{FileIDKey: "2"}, out[1].Metadata)

		_, touched := orig[0].Metadata[FileIDKey]
		assert.False(t, touched, "caller metadata must not change")
		assert.Nil(t, orig[1].Metadata)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := PrepareDocuments([]Document{{Content: "A"}}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestStripReserved(t *testing.T) {
	meta := map[string]any{"_id": 1, "_collection_name": "docs", "source": "x", "a_b": true}
	StripReserved(meta)
	assert.Equal(t, map[string]any{"source": "x", "a_b": true}, meta)
}

func TestIDSet(t *testing.T) {
	s := NewIDSet()
	assert.Equal(t, []string{}, s.Slice())

	for _, id := range []string{"b", "a", "b", "c", "a"} {
		s.Add(id)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"b", "a", "c"}, s.Slice())
}

func TestFilterSetJSON(t *testing.T) {
	raw := `{
		"must": [{"field": "source", "equalTo": "x"}],
		"mustNot": [{"field": "lang", "anyOf": ["de", "fr"]}],
		"should": [{"field": "page", "greaterThan": 3}]
	}`

	var fs FilterSet
	require.NoError(t, json.Unmarshal([]byte(raw), &fs))

	require.NotNil(t, fs.Must)
	require.Len(t, fs.Must.Conditions, 1)
	match, ok := fs.Must.Conditions[0].(*MatchCondition)
	require.True(t, ok)
	assert.Equal(t, "source", match.Field)
	assert.Equal(t, "x", match.Value)

	anyOf, ok := fs.MustNot.Conditions[0].(*MatchAnyCondition)
	require.True(t, ok)
	assert.Equal(t, []any{"de", "fr"}, anyOf.Values)

	rng, ok := fs.Should.Conditions[0].(*NumericRangeCondition)
	require.True(t, ok)
	require.NotNil(t, rng.Range.Gt)
	assert.Equal(t, 3.0, *rng.Range.Gt)
}

func TestFileIDsFilter(t *testing.T) {
	fs := FileIDs("a", "b")
	require.NotNil(t, fs.Must)
	cond := fs.Must.Conditions[0].(*MatchAnyCondition)
	assert.Equal(t, FileIDKey, cond.Field)
	assert.Equal(t, []any{"a", "b"}, cond.Values)
}

func TestMatchAnyRejectsMixedTypes(t *testing.T) {
	assert.Panics(t, func() { NewMatchAny("k", "a", 1) })
}

func TestFilterSetJSONRoundTrip(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	three := 3.0
	fs := NewFilterSet(
		Must(NewNumericRange("page", NumericRange{Gte: &three}), NewTimeRange("created_at", TimeRange{Lt: &day})),
		MustNot(NewIsNull("owner"), NewIsEmpty("tags")),
	)

	data, err := json.Marshal(fs)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"field":"page","greaterThanOrEqualTo":3}`)
	assert.Contains(t, string(data), `{"field":"owner","isNull":true}`)

	var back FilterSet
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back.Must.Conditions, 2)
	require.Len(t, back.MustNot.Conditions, 2)
	assert.IsType(t, &TimeRangeCondition{}, back.Must.Conditions[1])
	assert.IsType(t, &IsEmptyCondition{}, back.MustNot.Conditions[1])

	again, err := json.Marshal(&back)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestFilterSetJSONRestoresIntegers(t *testing.T) {
	raw := `{"must": [{"field": "page", "equalTo": 3}, {"field": "year", "anyOf": [2023, 2024]}, {"field": "ratio", "equalTo": 0.5}]}`

	var fs FilterSet
	require.NoError(t, json.Unmarshal([]byte(raw), &fs))
	assert.Equal(t, int64(3), fs.Must.Conditions[0].(*MatchCondition).Value)
	assert.Equal(t, []any{int64(2023), int64(2024)}, fs.Must.Conditions[1].(*MatchAnyCondition).Values)
	assert.Equal(t, 0.5, fs.Must.Conditions[2].(*MatchCondition).Value)
}

func TestFilterSetJSONRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"unknown condition": `{"must": [{"field": "page", "near": 3}]}`,
		"mixed values":      `{"must": [{"field": "page", "noneOf": [1, "two"]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			var fs FilterSet
			err := json.Unmarshal([]byte(raw), &fs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestConditionKey(t *testing.T) {
	conds := []FilterCondition{
		NewMatch("a", "x"),
		NewMatchAny("b", "x"),
		NewMatchExcept("c", 1),
		NewNumericRange("d", NumericRange{}),
		NewTimeRange("e", TimeRange{}),
		NewIsNull("f"),
		NewIsEmpty("g"),
	}
	var keys []string
	for _, c := range conds {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, keys)
}
