package vectordb

import (
	"encoding/json"
	"time"
)

// FilterCondition is one predicate on a metadata key. Each store translates
// conditions into its own filter language (a qdrant.Filter, a JSONB
// predicate, a $vectorSearch filter document) and rejects types it does not
// know with ErrInvalidInput.
type FilterCondition interface {
	// Key returns the metadata key the condition tests. Dotted keys address
	// nested values.
	Key() string
}

// FilterSet combines conditions: a document matches when every Must
// condition holds, at least one Should condition holds (if any are given)
// and no MustNot condition holds. Nil clauses are ignored.
//
// On the wire a clause is a plain list of conditions:
//
//	{
//	  "must":    [{"field": "lang", "equalTo": "en"}],
//	  "mustNot": [{"field": "status", "anyOf": ["draft", "deleted"]}]
//	}
type FilterSet struct {
	Must    *ConditionSet `json:"must,omitempty"`
	Should  *ConditionSet `json:"should,omitempty"`
	MustNot *ConditionSet `json:"mustNot,omitempty"`
}

// ConditionSet is the condition list of one clause.
type ConditionSet struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// MatchCondition holds when the value under Field equals Value. Value is a
// string, bool or integer.
type MatchCondition struct {
	Field string `json:"field"`
	Value any    `json:"equalTo"`
}

// MatchAnyCondition holds when the value under Field is one of Values.
type MatchAnyCondition struct {
	Field  string `json:"field"`
	Values []any  `json:"anyOf"`
}

// MatchExceptCondition holds when the value under Field is none of Values.
type MatchExceptCondition struct {
	Field  string `json:"field"`
	Values []any  `json:"noneOf"`
}

// NumericRange bounds a number. Nil bounds are open.
type NumericRange struct {
	Gt  *float64 `json:"greaterThan,omitempty"`
	Gte *float64 `json:"greaterThanOrEqualTo,omitempty"`
	Lt  *float64 `json:"lessThan,omitempty"`
	Lte *float64 `json:"lessThanOrEqualTo,omitempty"`
}

// TimeRange bounds an RFC 3339 timestamp. Nil bounds are open.
type TimeRange struct {
	Gt  *time.Time `json:"after,omitempty"`
	Gte *time.Time `json:"atOrAfter,omitempty"`
	Lt  *time.Time `json:"before,omitempty"`
	Lte *time.Time `json:"atOrBefore,omitempty"`
}

// NumericRangeCondition holds when the number under Field lies in Range.
// It serializes flat: {"field": "page", "greaterThan": 3}.
type NumericRangeCondition struct {
	Field string       `json:"field"`
	Range NumericRange `json:"-"`
}

// TimeRangeCondition holds when the timestamp under Field lies in Range.
// It serializes flat: {"field": "created_at", "before": "2025-01-01T00:00:00Z"}.
type TimeRangeCondition struct {
	Field string    `json:"field"`
	Range TimeRange `json:"-"`
}

// IsNullCondition holds when Field is present with a null value.
type IsNullCondition struct {
	Field string `json:"field"`
}

// IsEmptyCondition holds when Field is missing, null or an empty list.
type IsEmptyCondition struct {
	Field string `json:"field"`
}

func (c *MatchCondition) Key() string        { return c.Field }
func (c *MatchAnyCondition) Key() string     { return c.Field }
func (c *MatchExceptCondition) Key() string  { return c.Field }
func (c *NumericRangeCondition) Key() string { return c.Field }
func (c *TimeRangeCondition) Key() string    { return c.Field }
func (c *IsNullCondition) Key() string       { return c.Field }
func (c *IsEmptyCondition) Key() string      { return c.Field }

type flatNumericRange struct {
	Field string `json:"field"`
	NumericRange
}

func (c *NumericRangeCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatNumericRange{Field: c.Field, NumericRange: c.Range})
}

func (c *NumericRangeCondition) UnmarshalJSON(data []byte) error {
	var flat flatNumericRange
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	c.Field, c.Range = flat.Field, flat.NumericRange
	return nil
}

type flatTimeRange struct {
	Field string `json:"field"`
	TimeRange
}

func (c *TimeRangeCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatTimeRange{Field: c.Field, TimeRange: c.Range})
}

func (c *TimeRangeCondition) UnmarshalJSON(data []byte) error {
	var flat flatTimeRange
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	c.Field, c.Range = flat.Field, flat.TimeRange
	return nil
}

// The null and empty checks carry a marker key so they can be told apart
// when decoding.

func (c *IsNullCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"field": c.Field, "isNull": true})
}

func (c *IsEmptyCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"field": c.Field, "isEmpty": true})
}
