package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// convertFilterSet turns filter into the MQL document accepted by the
// $vectorSearch "filter" option. It returns nil for an empty filter.
func convertFilterSet(filter *vectordb.FilterSet) (bson.D, error) {
	if filter == nil {
		return nil, nil
	}

	var clauses bson.A
	if filter.Must != nil {
		for _, c := range filter.Must.Conditions {
			doc, err := convertCondition(c)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, doc)
		}
	}
	if filter.Should != nil && len(filter.Should.Conditions) > 0 {
		docs, err := convertConditions(filter.Should.Conditions)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, bson.D{{Key: "$or", Value: docs}})
	}
	if filter.MustNot != nil && len(filter.MustNot.Conditions) > 0 {
		docs, err := convertConditions(filter.MustNot.Conditions)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, bson.D{{Key: "$nor", Value: docs}})
	}

	switch len(clauses) {
	case 0:
		return nil, nil
	case 1:
		return clauses[0].(bson.D), nil
	default:
		return bson.D{{Key: "$and", Value: clauses}}, nil
	}
}

func convertConditions(conds []vectordb.FilterCondition) (bson.A, error) {
	out := make(bson.A, 0, len(conds))
	for _, c := range conds {
		doc, err := convertCondition(c)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func convertCondition(cond vectordb.FilterCondition) (bson.D, error) {
	switch c := cond.(type) {
	case *vectordb.MatchCondition:
		return fieldOp(c.Field, "$eq", c.Value), nil
	case *vectordb.MatchAnyCondition:
		return fieldOp(c.Field, "$in", bson.A(c.Values)), nil
	case *vectordb.MatchExceptCondition:
		return fieldOp(c.Field, "$nin", bson.A(c.Values)), nil
	case *vectordb.NumericRangeCondition:
		ops := bson.D{}
		for _, b := range []struct {
			op    string
			bound *float64
		}{{"$gt", c.Range.Gt}, {"$gte", c.Range.Gte}, {"$lt", c.Range.Lt}, {"$lte", c.Range.Lte}} {
			if b.bound != nil {
				ops = append(ops, bson.E{Key: b.op, Value: *b.bound})
			}
		}
		if len(ops) == 0 {
			return nil, fmt.Errorf("%w: numeric range on %q has no bounds", vectordb.ErrInvalidInput, c.Field)
		}
		return bson.D{{Key: c.Field, Value: ops}}, nil
	case *vectordb.TimeRangeCondition:
		ops := bson.D{}
		for _, b := range []struct {
			op    string
			bound *time.Time
		}{{"$gt", c.Range.Gt}, {"$gte", c.Range.Gte}, {"$lt", c.Range.Lt}, {"$lte", c.Range.Lte}} {
			if b.bound != nil {
				ops = append(ops, bson.E{Key: b.op, Value: primitive.NewDateTimeFromTime(*b.bound)})
			}
		}
		if len(ops) == 0 {
			return nil, fmt.Errorf("%w: time range on %q has no bounds", vectordb.ErrInvalidInput, c.Field)
		}
		return bson.D{{Key: c.Field, Value: ops}}, nil
	case *vectordb.IsNullCondition:
		return fieldOp(c.Field, "$eq", nil), nil
	case *vectordb.IsEmptyCondition:
		return fieldOp(c.Field, "$in", bson.A{nil, bson.A{}}), nil
	default:
		return nil, fmt.Errorf("%w: unsupported filter condition %T", vectordb.ErrInvalidInput, cond)
	}
}

func fieldOp(field, op string, value any) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: op, Value: value}}}}
}

// fileIDFilter selects documents whose file_id is one of ids.
func fileIDFilter(ids []string) bson.D {
	return fieldOp(vectordb.FileIDKey, "$in", ids)
}
