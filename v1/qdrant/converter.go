package qdrant

import (
	"encoding/json"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// ── Filter Conversion ────────────────────────────────────────────────────────

// convertFilterSet converts a vectordb.FilterSet to a Qdrant filter.
// Field names are payload keys; dotted paths address nested keys.
// Conditions Qdrant cannot express fail with vectordb.ErrInvalidInput.
func convertFilterSet(filters *vectordb.FilterSet) (*qdrant.Filter, error) {
	if filters == nil {
		return nil, nil
	}

	filter := &qdrant.Filter{}
	for _, clause := range []struct {
		set *vectordb.ConditionSet
		dst *[]*qdrant.Condition
	}{
		{filters.Must, &filter.Must},
		{filters.Should, &filter.Should},
		{filters.MustNot, &filter.MustNot},
	} {
		conditions, err := convertConditionSet(clause.set)
		if err != nil {
			return nil, err
		}
		*clause.dst = conditions
	}

	// Return nil if no conditions were added
	if len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0 {
		return nil, nil
	}
	return filter, nil
}

// fileIDFilter selects points whose file_id is one of ids.
func fileIDFilter(ids []string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchKeywords(vectordb.FileIDKey, ids...)},
	}
}

func convertConditionSet(cs *vectordb.ConditionSet) ([]*qdrant.Condition, error) {
	if cs == nil {
		return nil, nil
	}

	var conditions []*qdrant.Condition
	for _, c := range cs.Conditions {
		cond, err := convertCondition(c)
		if err != nil {
			return nil, err
		}
		if cond != nil {
			conditions = append(conditions, cond)
		}
	}
	return conditions, nil
}

// convertCondition returns nil without error only for conditions that hold
// for every point, such as an except-match against an empty list.
func convertCondition(c vectordb.FilterCondition) (*qdrant.Condition, error) {
	switch cond := c.(type) {
	case *vectordb.MatchCondition:
		return convertMatchCondition(cond)
	case *vectordb.MatchAnyCondition:
		return convertMatchAnyCondition(cond)
	case *vectordb.MatchExceptCondition:
		return convertMatchExceptCondition(cond)
	case *vectordb.NumericRangeCondition:
		return convertNumericRangeCondition(cond)
	case *vectordb.TimeRangeCondition:
		return convertTimeRangeCondition(cond)
	case *vectordb.IsNullCondition:
		return qdrant.NewIsNull(cond.Field), nil
	case *vectordb.IsEmptyCondition:
		return qdrant.NewIsEmpty(cond.Field), nil
	default:
		return nil, fmt.Errorf("%w: unsupported filter condition %T", vectordb.ErrInvalidInput, c)
	}
}

// convertMatchCondition maps an exact match. Floats become a closed range
// on the value, since Qdrant only matches keywords, integers and booleans.
func convertMatchCondition(c *vectordb.MatchCondition) (*qdrant.Condition, error) {
	switch v := c.Value.(type) {
	case string:
		return qdrant.NewMatch(c.Field, v), nil
	case bool:
		return qdrant.NewMatchBool(c.Field, v), nil
	}
	if n, ok := toInt(c.Value); ok {
		return qdrant.NewMatchInt(c.Field, n), nil
	}
	if f, ok := toFloat(c.Value); ok {
		return equalRange(c.Field, f), nil
	}
	return nil, fmt.Errorf("%w: match value for %q has unsupported type %T", vectordb.ErrInvalidInput, c.Field, c.Value)
}

// convertMatchAnyCondition maps a membership test. An empty list matches
// nothing.
func convertMatchAnyCondition(c *vectordb.MatchAnyCondition) (*qdrant.Condition, error) {
	if len(c.Values) == 0 {
		return qdrant.NewMatchKeywords(c.Field), nil
	}
	if strs, ok := toStrings(c.Values); ok {
		return qdrant.NewMatchKeywords(c.Field, strs...), nil
	}
	if ints, ok := toInts(c.Values); ok {
		return qdrant.NewMatchInts(c.Field, ints...), nil
	}
	if ranges, ok := toEqualRanges(c.Field, c.Values); ok {
		return qdrant.NewFilterAsCondition(&qdrant.Filter{Should: ranges}), nil
	}
	if bools, ok := toBoolMatches(c.Field, c.Values); ok {
		return qdrant.NewFilterAsCondition(&qdrant.Filter{Should: bools}), nil
	}
	return nil, fmt.Errorf("%w: values for %q must share one type", vectordb.ErrInvalidInput, c.Field)
}

// convertMatchExceptCondition maps a negated membership test. An empty list
// excludes nothing, so no condition is emitted.
func convertMatchExceptCondition(c *vectordb.MatchExceptCondition) (*qdrant.Condition, error) {
	if len(c.Values) == 0 {
		return nil, nil
	}
	if strs, ok := toStrings(c.Values); ok {
		return qdrant.NewMatchExceptKeywords(c.Field, strs...), nil
	}
	if ints, ok := toInts(c.Values); ok {
		return qdrant.NewMatchExceptInts(c.Field, ints...), nil
	}
	if ranges, ok := toEqualRanges(c.Field, c.Values); ok {
		return qdrant.NewFilterAsCondition(&qdrant.Filter{MustNot: ranges}), nil
	}
	if bools, ok := toBoolMatches(c.Field, c.Values); ok {
		return qdrant.NewFilterAsCondition(&qdrant.Filter{MustNot: bools}), nil
	}
	return nil, fmt.Errorf("%w: values for %q must share one type", vectordb.ErrInvalidInput, c.Field)
}

func convertNumericRangeCondition(c *vectordb.NumericRangeCondition) (*qdrant.Condition, error) {
	r := &qdrant.Range{
		Gt:  c.Range.Gt,
		Gte: c.Range.Gte,
		Lt:  c.Range.Lt,
		Lte: c.Range.Lte,
	}
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil, fmt.Errorf("%w: numeric range on %q has no bounds", vectordb.ErrInvalidInput, c.Field)
	}
	return qdrant.NewRange(c.Field, r), nil
}

func convertTimeRangeCondition(c *vectordb.TimeRangeCondition) (*qdrant.Condition, error) {
	r := &qdrant.DatetimeRange{
		Gt:  toTimestamp(c.Range.Gt),
		Gte: toTimestamp(c.Range.Gte),
		Lt:  toTimestamp(c.Range.Lt),
		Lte: toTimestamp(c.Range.Lte),
	}
	if r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil {
		return nil, fmt.Errorf("%w: time range on %q has no bounds", vectordb.ErrInvalidInput, c.Field)
	}
	return qdrant.NewDatetimeRange(c.Field, r), nil
}

func equalRange(field string, v float64) *qdrant.Condition {
	return qdrant.NewRange(field, &qdrant.Range{Gte: &v, Lte: &v})
}

func toTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

// toStrings succeeds when every value is a string.
func toStrings(values []any) ([]string, bool) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// toInts succeeds when every value is a Go integer.
func toInts(values []any) ([]int64, bool) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		n, ok := toInt(v)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// toEqualRanges succeeds when every value is numeric, giving one closed
// range per value.
func toEqualRanges(field string, values []any) ([]*qdrant.Condition, bool) {
	out := make([]*qdrant.Condition, 0, len(values))
	for _, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out = append(out, equalRange(field, f))
	}
	return out, true
}

// toBoolMatches succeeds when every value is a boolean.
func toBoolMatches(field string, values []any) ([]*qdrant.Condition, bool) {
	out := make([]*qdrant.Condition, 0, len(values))
	for _, v := range values {
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}
		out = append(out, qdrant.NewMatchBool(field, b))
	}
	return out, true
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// ── Payload Conversion ───────────────────────────────────────────────────────

// buildPayload converts document metadata plus its content into a Qdrant payload.
// The content is stored under contentKey; metadata never overrides it.
func buildPayload(meta map[string]any, contentKey, content string) (map[string]*qdrant.Value, error) {
	payload := make(map[string]*qdrant.Value, len(meta)+1)
	for k, v := range meta {
		if k == contentKey {
			continue
		}
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", k, err)
		}
		payload[k] = val
	}
	payload[contentKey] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: content}}
	return payload, nil
}

// toValue converts a Go value into a Qdrant Value. Types without a direct
// mapping go through their JSON representation.
func toValue(v any) (*qdrant.Value, error) {
	switch val := v.(type) {
	case nil:
		return &qdrant.Value{Kind: &qdrant.Value_NullValue{NullValue: qdrant.NullValue_NULL_VALUE}}, nil
	case *qdrant.Value:
		return val, nil
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}, nil
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}, nil
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}, nil
	case int32:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}, nil
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}, nil
	case uint32:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}, nil
	case float32:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(val)}}, nil
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}, nil
	case time.Time:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val.Format(time.RFC3339Nano)}}, nil
	case []string:
		items := make([]*qdrant.Value, len(val))
		for i, s := range val {
			items[i] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: items}}}, nil
	case []any:
		items := make([]*qdrant.Value, len(val))
		for i, item := range val {
			converted, err := toValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: items}}}, nil
	case map[string]any:
		fields := make(map[string]*qdrant.Value, len(val))
		for k, item := range val {
			converted, err := toValue(item)
			if err != nil {
				return nil, err
			}
			fields[k] = converted
		}
		return &qdrant.Value{Kind: &qdrant.Value_StructValue{StructValue: &qdrant.Struct{Fields: fields}}}, nil
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("unsupported payload type %T: %w", v, err)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("unsupported payload type %T: %w", v, err)
		}
		return toValue(generic)
	}
}

// convertPayload converts Qdrant's protobuf payload to a generic map.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = fromValue(v)
	}
	return result
}

// fromValue recursively converts a Qdrant Value to a Go native type.
func fromValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = fromValue(item)
		}
		return items
	default:
		return nil
	}
}

// fieldsGetter is implemented by *qdrant.Struct and other record-shaped payloads.
type fieldsGetter interface {
	GetFields() map[string]*qdrant.Value
}

// extractField reads key from a payload in any of the shapes the client
// hands back: the protobuf value map, a record exposing GetFields, or an
// already converted generic map. The value is returned as a Go native type.
func extractField(payload any, key string) (any, bool) {
	switch p := payload.(type) {
	case nil:
		return nil, false
	case map[string]*qdrant.Value:
		v, ok := p[key]
		if !ok {
			return nil, false
		}
		return fromValue(v), true
	case map[string]any:
		v, ok := p[key]
		return v, ok
	case fieldsGetter:
		return extractField(p.GetFields(), key)
	default:
		return nil, false
	}
}

// stringField is extractField narrowed to strings. Numbers are formatted.
func stringField(payload any, key string) (string, bool) {
	v, ok := extractField(payload, key)
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case int64:
		return fmt.Sprintf("%d", s), true
	default:
		return fmt.Sprint(s), true
	}
}

// toDocument splits a payload into the stored content and the remaining metadata.
func toDocument(payload map[string]*qdrant.Value, contentKey string) vectordb.Document {
	meta := convertPayload(payload)
	content, _ := meta[contentKey].(string)
	delete(meta, contentKey)
	return vectordb.Document{Content: content, Metadata: meta}
}
