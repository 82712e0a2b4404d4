package pgvector

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// textArray is a text[] argument. Each connection binds it the way its
// driver expects.
type textArray []string

// metadataKey restricts the metadata keys that can be addressed by a filter.
// Keys are inlined into the JSON path literal, so anything that could leave
// it is refused.
var metadataKey = regexp.MustCompile(`^[A-Za-z0-9_\-:]+$`)

// buildWhere translates filter into a SQL predicate over the cmetadata column
// with "?" placeholders. It returns an empty string for an empty filter.
func buildWhere(filter *vectordb.FilterSet) (string, []any, error) {
	if filter == nil {
		return "", nil, nil
	}

	var (
		clauses []string
		args    []any
	)

	if filter.Must != nil {
		for _, c := range filter.Must.Conditions {
			sql, a, err := buildCondition(c)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, sql)
			args = append(args, a...)
		}
	}

	if filter.Should != nil && len(filter.Should.Conditions) > 0 {
		var alts []string
		for _, c := range filter.Should.Conditions {
			sql, a, err := buildCondition(c)
			if err != nil {
				return "", nil, err
			}
			alts = append(alts, sql)
			args = append(args, a...)
		}
		clauses = append(clauses, "("+strings.Join(alts, " OR ")+")")
	}

	if filter.MustNot != nil {
		for _, c := range filter.MustNot.Conditions {
			sql, a, err := buildCondition(c)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, "NOT "+sql)
			args = append(args, a...)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// buildCondition returns a predicate that is never NULL.
func buildCondition(cond vectordb.FilterCondition) (string, []any, error) {
	var (
		sql  string
		args []any
		err  error
	)

	switch c := cond.(type) {
	case *vectordb.MatchCondition:
		sql, args, err = matchSQL(c.Field, c.Value)
	case *vectordb.MatchAnyCondition:
		sql, args, err = matchAnySQL(c.Field, c.Values, false)
	case *vectordb.MatchExceptCondition:
		sql, args, err = matchAnySQL(c.Field, c.Values, true)
	case *vectordb.NumericRangeCondition:
		sql, args, err = numericRangeSQL(c)
	case *vectordb.TimeRangeCondition:
		sql, args, err = timeRangeSQL(c)
	case *vectordb.IsNullCondition:
		var p string
		if p, err = jsonPath(c.Field); err == nil {
			sql = fmt.Sprintf("jsonb_typeof(cmetadata #> %s) = 'null'", p)
		}
	case *vectordb.IsEmptyCondition:
		var p string
		if p, err = jsonPath(c.Field); err == nil {
			sql = fmt.Sprintf("(cmetadata #> %[1]s IS NULL OR cmetadata #> %[1]s = 'null'::jsonb OR cmetadata #> %[1]s = '[]'::jsonb)", p)
		}
	default:
		err = fmt.Errorf("%w: unsupported filter condition %T", vectordb.ErrInvalidInput, cond)
	}
	if err != nil {
		return "", nil, err
	}
	return "COALESCE(" + sql + ", false)", args, nil
}

func matchSQL(field string, value any) (string, []any, error) {
	p, err := jsonPath(field)
	if err != nil {
		return "", nil, err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return "", nil, fmt.Errorf("%w: match value for %q: %v", vectordb.ErrInvalidInput, field, err)
	}
	return fmt.Sprintf("cmetadata #> %s = CAST(? AS jsonb)", p), []any{string(v)}, nil
}

func matchAnySQL(field string, values []any, negate bool) (string, []any, error) {
	p, err := jsonPath(field)
	if err != nil {
		return "", nil, err
	}
	encoded := make(textArray, len(values))
	for i, value := range values {
		v, err := json.Marshal(value)
		if err != nil {
			return "", nil, fmt.Errorf("%w: match value for %q: %v", vectordb.ErrInvalidInput, field, err)
		}
		encoded[i] = string(v)
	}
	sql := fmt.Sprintf("cmetadata #> %s = ANY(CAST(? AS jsonb[]))", p)
	if negate {
		sql = "NOT (" + sql + ")"
	}
	return sql, []any{encoded}, nil
}

func numericRangeSQL(c *vectordb.NumericRangeCondition) (string, []any, error) {
	p, err := jsonPath(c.Field)
	if err != nil {
		return "", nil, err
	}
	expr := fmt.Sprintf("(CASE WHEN jsonb_typeof(cmetadata #> %[1]s) = 'number' THEN (cmetadata #>> %[1]s)::numeric END)", p)

	var (
		parts []string
		args  []any
	)
	add := func(op string, bound *float64) {
		if bound != nil {
			parts = append(parts, expr+" "+op+" ?")
			args = append(args, *bound)
		}
	}
	add(">", c.Range.Gt)
	add(">=", c.Range.Gte)
	add("<", c.Range.Lt)
	add("<=", c.Range.Lte)
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("%w: numeric range on %q has no bounds", vectordb.ErrInvalidInput, c.Field)
	}
	return "(" + strings.Join(parts, " AND ") + ")", args, nil
}

func timeRangeSQL(c *vectordb.TimeRangeCondition) (string, []any, error) {
	p, err := jsonPath(c.Field)
	if err != nil {
		return "", nil, err
	}
	expr := fmt.Sprintf("(CASE WHEN jsonb_typeof(cmetadata #> %[1]s) = 'string' THEN (cmetadata #>> %[1]s)::timestamptz END)", p)

	var (
		parts []string
		args  []any
	)
	if c.Range.Gt != nil {
		parts = append(parts, expr+" > ?")
		args = append(args, c.Range.Gt.UTC())
	}
	if c.Range.Gte != nil {
		parts = append(parts, expr+" >= ?")
		args = append(args, c.Range.Gte.UTC())
	}
	if c.Range.Lt != nil {
		parts = append(parts, expr+" < ?")
		args = append(args, c.Range.Lt.UTC())
	}
	if c.Range.Lte != nil {
		parts = append(parts, expr+" <= ?")
		args = append(args, c.Range.Lte.UTC())
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("%w: time range on %q has no bounds", vectordb.ErrInvalidInput, c.Field)
	}
	return "(" + strings.Join(parts, " AND ") + ")", args, nil
}

// jsonPath turns a dotted field into a quoted Postgres path literal, e.g.
// "author.name" becomes '{author,name}'.
func jsonPath(field string) (string, error) {
	segments := strings.Split(field, ".")
	for _, s := range segments {
		if !metadataKey.MatchString(s) {
			return "", fmt.Errorf("%w: unsupported metadata key %q", vectordb.ErrInvalidInput, field)
		}
	}
	return "'{" + strings.Join(segments, ",") + "}'", nil
}

// numberPlaceholders rewrites "?" placeholders to "$1", "$2", ... for pgx.
func numberPlaceholders(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
