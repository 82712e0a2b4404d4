package vectordb

import (
	"encoding/json"
	"fmt"
	"math"
)

// NewFilterSet assembles a FilterSet from Must, Should and MustNot clauses.
//
// Example:
//
//	vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatch("lang", "en")),
//	    vectordb.MustNot(vectordb.NewMatchAny("status", "draft", "deleted")),
//	)
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must sets the conditions that all have to hold.
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) { fs.Must = &ConditionSet{Conditions: conditions} }
}

// Should sets the conditions of which at least one has to hold.
func Should(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) { fs.Should = &ConditionSet{Conditions: conditions} }
}

// MustNot sets the conditions none of which may hold.
func MustNot(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) { fs.MustNot = &ConditionSet{Conditions: conditions} }
}

func NewMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value}
}

// NewMatchAny panics if values mix strings, numbers and booleans.
func NewMatchAny(field string, values ...any) *MatchAnyCondition {
	mustBeHomogeneous(values)
	return &MatchAnyCondition{Field: field, Values: values}
}

// NewMatchExcept panics if values mix strings, numbers and booleans.
func NewMatchExcept(field string, values ...any) *MatchExceptCondition {
	mustBeHomogeneous(values)
	return &MatchExceptCondition{Field: field, Values: values}
}

func NewNumericRange(field string, r NumericRange) *NumericRangeCondition {
	return &NumericRangeCondition{Field: field, Range: r}
}

func NewTimeRange(field string, r TimeRange) *TimeRangeCondition {
	return &TimeRangeCondition{Field: field, Range: r}
}

func NewIsNull(field string) *IsNullCondition {
	return &IsNullCondition{Field: field}
}

func NewIsEmpty(field string) *IsEmptyCondition {
	return &IsEmptyCondition{Field: field}
}

// FileIDs selects every chunk whose file_id is one of ids.
func FileIDs(ids ...string) *FilterSet {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return NewFilterSet(Must(&MatchAnyCondition{Field: FileIDKey, Values: values}))
}

func (cs *ConditionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(cs.Conditions)
}

func (cs *ConditionSet) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cs.Conditions = make([]FilterCondition, 0, len(raw))
	for _, r := range raw {
		cond, err := parseCondition(r)
		if err != nil {
			return err
		}
		cs.Conditions = append(cs.Conditions, cond)
	}
	return nil
}

// conditionKinds lists, in priority order, the JSON keys that identify a
// condition type.
var conditionKinds = []struct {
	keys []string
	new  func() FilterCondition
}{
	{[]string{"equalTo"}, func() FilterCondition { return &MatchCondition{} }},
	{[]string{"anyOf"}, func() FilterCondition { return &MatchAnyCondition{} }},
	{[]string{"noneOf"}, func() FilterCondition { return &MatchExceptCondition{} }},
	{[]string{"greaterThan", "greaterThanOrEqualTo", "lessThan", "lessThanOrEqualTo"},
		func() FilterCondition { return &NumericRangeCondition{} }},
	{[]string{"after", "atOrAfter", "before", "atOrBefore"},
		func() FilterCondition { return &TimeRangeCondition{} }},
	{[]string{"isNull"}, func() FilterCondition { return &IsNullCondition{} }},
	{[]string{"isEmpty"}, func() FilterCondition { return &IsEmptyCondition{} }},
}

func parseCondition(data []byte) (FilterCondition, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	for _, kind := range conditionKinds {
		for _, key := range kind.keys {
			if _, ok := fields[key]; !ok {
				continue
			}
			cond := kind.new()
			if err := json.Unmarshal(data, cond); err != nil {
				return nil, err
			}
			return cond, restoreIntegers(cond)
		}
	}
	return nil, fmt.Errorf("%w: unknown filter condition %s", ErrInvalidInput, data)
}

// restoreIntegers turns whole JSON numbers of match conditions back into
// int64 so they compare equal to integer metadata, and checks list
// homogeneity.
func restoreIntegers(cond FilterCondition) error {
	var values []any
	switch c := cond.(type) {
	case *MatchCondition:
		c.Value = integral(c.Value)
		return nil
	case *MatchAnyCondition:
		values = c.Values
	case *MatchExceptCondition:
		values = c.Values
	default:
		return nil
	}
	for i, v := range values {
		values[i] = integral(v)
	}
	return checkHomogeneous(values)
}

func integral(v any) any {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return v
	}
	return int64(f)
}

func mustBeHomogeneous(values []any) {
	if err := checkHomogeneous(values); err != nil {
		panic(err.Error())
	}
}

// checkHomogeneous reports values that mix strings, numbers and booleans.
func checkHomogeneous(values []any) error {
	var want string
	for i, v := range values {
		kind := valueKind(v)
		if kind == "" {
			return fmt.Errorf("%w: unsupported value type %T at index %d", ErrInvalidInput, v, i)
		}
		if want == "" {
			want = kind
		} else if kind != want {
			return fmt.Errorf("%w: mixed value types, %s at index 0 but %s at index %d", ErrInvalidInput, want, kind, i)
		}
	}
	return nil
}

func valueKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int, int32, int64, float64:
		return "number"
	case bool:
		return "boolean"
	}
	return ""
}
