package qdrant

import (
	"context"
	"fmt"
	"slices"
	"sync"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// memoryPoints is an in-memory PointsClient. It understands the keyword
// match filters the Adapter sends and pages scrolls like Qdrant does.
// Query does no ranking: matching points come back in insertion order.
type memoryPoints struct {
	mu      sync.Mutex
	order   []string
	points  map[string]*qdrant.PointStruct
	upserts int
	scrolls int
	queries int
}

func newMemoryPoints() *memoryPoints {
	return &memoryPoints{points: make(map[string]*qdrant.PointStruct)}
}

func pointKey(id *qdrant.PointId) string {
	if u := id.GetUuid(); u != "" {
		return "uuid:" + u
	}
	return fmt.Sprintf("num:%d", id.GetNum())
}

func (m *memoryPoints) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	for _, p := range req.GetPoints() {
		k := pointKey(p.GetId())
		if _, ok := m.points[k]; !ok {
			m.order = append(m.order, k)
		}
		m.points[k] = p
	}
	return &qdrant.UpdateResult{Status: qdrant.UpdateStatus_Completed}, nil
}

func (m *memoryPoints) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++

	var out []*qdrant.ScoredPoint
	for i, p := range m.matching(req.GetFilter()) {
		if uint64(len(out)) >= req.GetLimit() {
			break
		}
		out = append(out, &qdrant.ScoredPoint{
			Id:      p.GetId(),
			Payload: p.GetPayload(),
			Score:   1 - float32(i)/100,
		})
	}
	return out, nil
}

func (m *memoryPoints) ScrollAndOffset(_ context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrolls++

	matching := m.matching(req.GetFilter())
	start := 0
	if req.GetOffset() != nil {
		want := pointKey(req.GetOffset())
		start = slices.IndexFunc(matching, func(p *qdrant.PointStruct) bool { return pointKey(p.GetId()) == want })
		if start < 0 {
			return nil, nil, nil
		}
	}

	limit := int(req.GetLimit())
	if limit == 0 {
		limit = 10
	}
	end := min(start+limit, len(matching))

	include := req.GetWithPayload().GetInclude().GetFields()
	page := make([]*qdrant.RetrievedPoint, 0, end-start)
	for _, p := range matching[start:end] {
		page = append(page, &qdrant.RetrievedPoint{Id: p.GetId(), Payload: selectPayload(p.GetPayload(), include)})
	}

	var next *qdrant.PointId
	if end < len(matching) {
		next = matching[end].GetId()
	}
	return page, next, nil
}

func (m *memoryPoints) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.matching(req.GetPoints().GetFilter()) {
		k := pointKey(p.GetId())
		delete(m.points, k)
		m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == k })
	}
	return &qdrant.UpdateResult{Status: qdrant.UpdateStatus_Completed}, nil
}

func (m *memoryPoints) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points)
}

func (m *memoryPoints) matching(f *qdrant.Filter) []*qdrant.PointStruct {
	var out []*qdrant.PointStruct
	for _, k := range m.order {
		p := m.points[k]
		if filterMatches(p.GetPayload(), f) {
			out = append(out, p)
		}
	}
	return out
}

func selectPayload(payload map[string]*qdrant.Value, fields []string) map[string]*qdrant.Value {
	if len(fields) == 0 {
		return payload
	}
	out := make(map[string]*qdrant.Value, len(fields))
	for _, f := range fields {
		if v, ok := payload[f]; ok {
			out[f] = v
		}
	}
	return out
}

func filterMatches(payload map[string]*qdrant.Value, f *qdrant.Filter) bool {
	if f == nil {
		return true
	}
	for _, c := range f.GetMust() {
		if !conditionMatches(payload, c) {
			return false
		}
	}
	for _, c := range f.GetMustNot() {
		if conditionMatches(payload, c) {
			return false
		}
	}
	if should := f.GetShould(); len(should) > 0 {
		return slices.ContainsFunc(should, func(c *qdrant.Condition) bool { return conditionMatches(payload, c) })
	}
	return true
}

func conditionMatches(payload map[string]*qdrant.Value, c *qdrant.Condition) bool {
	if nested := c.GetFilter(); nested != nil {
		return filterMatches(payload, nested)
	}
	field := c.GetField()
	if field == nil {
		return false
	}
	v, ok := payload[field.GetKey()]
	if !ok {
		return false
	}
	if r := field.GetRange(); r != nil {
		return rangeMatches(v, r)
	}

	switch match := field.GetMatch().GetMatchValue().(type) {
	case *qdrant.Match_Keyword:
		return v.GetStringValue() == match.Keyword
	case *qdrant.Match_Keywords:
		return slices.Contains(match.Keywords.GetStrings(), v.GetStringValue())
	case *qdrant.Match_Boolean:
		return v.GetBoolValue() == match.Boolean
	case *qdrant.Match_Integer:
		return v.GetIntegerValue() == match.Integer
	default:
		return false
	}
}

func rangeMatches(v *qdrant.Value, r *qdrant.Range) bool {
	var n float64
	switch k := v.GetKind().(type) {
	case *qdrant.Value_IntegerValue:
		n = float64(k.IntegerValue)
	case *qdrant.Value_DoubleValue:
		n = k.DoubleValue
	default:
		return false
	}
	return (r.Gt == nil || n > *r.Gt) &&
		(r.Gte == nil || n >= *r.Gte) &&
		(r.Lt == nil || n < *r.Lt) &&
		(r.Lte == nil || n <= *r.Lte)
}
