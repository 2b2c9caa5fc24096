package graph

import (
	"fmt"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
	iutil "github.com/apsaltis/ML-Pipelines/internal/util"
)

// Sum emits, after every Row, a synthetic Row carrying the running sum at the
// given field. Non-aggregated fields of the emitted Row reflect the most
// recent input.
func (n *Node) Sum(field interface{}) (streaming.DataStream, error) {
	return n.fieldAggregate(streaming.SumAggregation, field, true)
}

// Min emits, after every Row, a synthetic Row carrying the running minimum at
// the given field
func (n *Node) Min(field interface{}) (streaming.DataStream, error) {
	return n.fieldAggregate(streaming.MinAggregation, field, true)
}

// Max emits, after every Row, a synthetic Row carrying the running maximum at
// the given field
func (n *Node) Max(field interface{}) (streaming.DataStream, error) {
	return n.fieldAggregate(streaming.MaxAggregation, field, true)
}

// MinBy emits the entire Row currently holding the minimal value at the given
// field. Ties retain the first Row observed; this default is fixed and
// matches MinByFirst(field, true).
func (n *Node) MinBy(field interface{}) (streaming.DataStream, error) {
	return n.MinByFirst(field, true)
}

// MaxBy emits the entire Row currently holding the maximal value at the given
// field. Ties retain the first Row observed; this default is fixed and
// matches MaxByFirst(field, true).
func (n *Node) MaxBy(field interface{}) (streaming.DataStream, error) {
	return n.MaxByFirst(field, true)
}

// MinByFirst is MinBy with an explicit tie-break flag, threaded into the
// aggregation node and honored by the runtime
func (n *Node) MinByFirst(field interface{}, first bool) (streaming.DataStream, error) {
	return n.fieldAggregate(streaming.MinByAggregation, field, first)
}

// MaxByFirst is MaxBy with an explicit tie-break flag, threaded into the
// aggregation node and honored by the runtime
func (n *Node) MaxByFirst(field interface{}, first bool) (streaming.DataStream, error) {
	return n.fieldAggregate(streaming.MaxByAggregation, field, first)
}

func (n *Node) fieldAggregate(kind streaming.AggregationKind, field interface{}, first bool) (streaming.DataStream, error) {
	ref, err := streaming.ResolveFieldRef(field)
	if err != nil {
		return nil, err
	}
	if err = ref.Validate(n.schema); err != nil {
		return nil, errors.InvalidFieldError{Value: field}
	}
	if err = validateAggregatedColumn(kind, ref, n.schema); err != nil {
		return nil, err
	}
	return n.aggregate(&streaming.Aggregation{Kind: kind, Field: ref, First: first})
}

// aggregate constructs the aggregation node for a resolved Aggregation record.
// Like Reduce, the grouped variant is selected here by inspecting the
// receiver's partitioning, never re-evaluated later.
func (n *Node) aggregate(agg *streaming.Aggregation) (streaming.DataStream, error) {
	schema := n.schema.Clone()
	if agg.Kind == streaming.CountAggregation {
		var err error
		if schema, err = streaming.CreateSchema().CreateColumn("count", streaming.Int64ColumnType); err != nil {
			return nil, err
		}
	}
	op := &streaming.Operator{
		Type:   streaming.AggregateOperatorType,
		Agg:    agg,
		Reduce: iutil.SafeReductionOperation(aggregationReduction(agg)),
		Seed:   aggregationSeed(agg, schema),
		Name:   string(agg.Kind),
	}
	if n.strategy.IsGrouping() {
		op.Type = streaming.GroupedAggregateOperatorType
		op.Key = n.strategy.Key
	}
	return n.newChild(schema, op), nil
}

// validateAggregatedColumn rejects, at construction time, aggregations over
// columns the kind cannot operate on. References into JSON documents are
// value-typed per Row and are checked by the runtime instead, except that the
// running sum/min/max kinds must write their result back to a whole column.
func validateAggregatedColumn(kind streaming.AggregationKind, ref streaming.FieldRef, schema *streaming.Schema) error {
	writeback := kind == streaming.SumAggregation || kind == streaming.MinAggregation || kind == streaming.MaxAggregation
	if ref.IsNamed() && ref.Path() != "" {
		if writeback {
			return errors.UnsupportedOperationError{
				Op:     string(kind),
				Reason: fmt.Sprintf("cannot store a running aggregate into JSON path %s", ref.Name()),
			}
		}
		return nil
	}
	var idx int
	if ref.IsNamed() {
		idx, _ = schema.ColumnIndex(ref.ColumnName())
	} else {
		idx = ref.Pos()
	}
	colType, err := schema.ColumnType(idx)
	if err != nil {
		return errors.InvalidFieldError{Value: ref.String()}
	}
	switch colType {
	case streaming.Int64ColumnType, streaming.Float64ColumnType:
		return nil
	case streaming.StringColumnType:
		if kind == streaming.SumAggregation {
			return errors.UnsupportedOperationError{Op: string(kind), Reason: fmt.Sprintf("column %s is not numeric", ref)}
		}
		return nil
	default:
		return errors.UnsupportedOperationError{Op: string(kind), Reason: fmt.Sprintf("column %s of type %s is not comparable", ref, colType)}
	}
}

// aggregationSeed produces the initial accumulator for an aggregation: a count
// of one, or a copy of the first Row observed
func aggregationSeed(agg *streaming.Aggregation, schema *streaming.Schema) streaming.SeedOperation {
	if agg.Kind == streaming.CountAggregation {
		return func(first *streaming.Row) (*streaming.Row, error) {
			state := streaming.CreateRow(schema)
			if err := state.SetInt64("count", 1); err != nil {
				return nil, err
			}
			return state, nil
		}
	}
	return seedClone
}

// aggregationReduction compiles an Aggregation into the ReductionOperation
// executed by the runtime. lrow is the running accumulator; rrow is the
// incoming Row.
func aggregationReduction(agg *streaming.Aggregation) streaming.ReductionOperation {
	switch agg.Kind {
	case streaming.CountAggregation:
		return func(lrow, rrow *streaming.Row) error {
			count, err := lrow.GetInt64("count")
			if err != nil {
				return err
			}
			return lrow.SetInt64("count", count+1)
		}
	case streaming.SumAggregation:
		return func(lrow, rrow *streaming.Row) error {
			lv, rv, err := aggregatedValues(agg.Field, lrow, rrow)
			if err != nil {
				return err
			}
			sum, err := addValues(lv, rv)
			if err != nil {
				return err
			}
			if err = lrow.CopyFrom(rrow); err != nil {
				return err
			}
			return lrow.Set(agg.Field, sum)
		}
	case streaming.MinAggregation, streaming.MaxAggregation:
		max := agg.Kind == streaming.MaxAggregation
		return func(lrow, rrow *streaming.Row) error {
			lv, rv, err := aggregatedValues(agg.Field, lrow, rrow)
			if err != nil {
				return err
			}
			cmp, err := compareValues(lv, rv)
			if err != nil {
				return err
			}
			extremum := lv
			if (max && cmp < 0) || (!max && cmp > 0) {
				extremum = rv
			}
			if err = lrow.CopyFrom(rrow); err != nil {
				return err
			}
			return lrow.Set(agg.Field, extremum)
		}
	case streaming.MinByAggregation, streaming.MaxByAggregation:
		max := agg.Kind == streaming.MaxByAggregation
		first := agg.First
		return func(lrow, rrow *streaming.Row) error {
			lv, rv, err := aggregatedValues(agg.Field, lrow, rrow)
			if err != nil {
				return err
			}
			cmp, err := compareValues(lv, rv)
			if err != nil {
				return err
			}
			replace := (max && cmp < 0) || (!max && cmp > 0) || (cmp == 0 && !first)
			if replace {
				return lrow.CopyFrom(rrow)
			}
			return nil
		}
	default:
		return func(lrow, rrow *streaming.Row) error {
			return fmt.Errorf("unknown aggregation kind %s", agg.Kind)
		}
	}
}

func aggregatedValues(ref streaming.FieldRef, lrow, rrow *streaming.Row) (interface{}, interface{}, error) {
	lv, err := lrow.Get(ref)
	if err != nil {
		return nil, nil, err
	}
	rv, err := rrow.Get(ref)
	if err != nil {
		return nil, nil, err
	}
	return lv, rv, nil
}

// compareValues orders two field values of the same column. Numbers drawn from
// JSON documents surface as float64 and are compared against integer columns
// by promotion.
func compareValues(a, b interface{}) (int, error) {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return compareInt64(av, bv), nil
		case float64:
			return compareFloat64(float64(av), bv), nil
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return compareFloat64(av, bv), nil
		case int64:
			return compareFloat64(av, float64(bv)), nil
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("values %v (%T) and %v (%T) are not comparable", a, a, b, b)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// addValues sums two numeric field values, promoting to float64 on mixed types
func addValues(a, b interface{}) (interface{}, error) {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return av + bv, nil
		case float64:
			return float64(av) + bv, nil
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return av + bv, nil
		case int64:
			return av + float64(bv), nil
		}
	}
	return nil, fmt.Errorf("values %v (%T) and %v (%T) cannot be summed", a, a, b, b)
}
