package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
)

func createIDValueRow(t *testing.T, schema *streaming.Schema, id, v int64) *streaming.Row {
	row := streaming.CreateRow(schema)
	require.Nil(t, row.SetInt64("id", id))
	require.Nil(t, row.SetInt64("v", v))
	return row
}

// driveAggregation seeds the accumulator with the first row and folds in the
// rest, the way the runtime consumes a reduction operator
func driveAggregation(t *testing.T, op *streaming.Operator, rows ...*streaming.Row) *streaming.Row {
	acc, err := op.Seed(rows[0])
	require.Nil(t, err)
	for _, row := range rows[1:] {
		require.Nil(t, op.Reduce(acc, row))
	}
	return acc
}

func TestAggregationFieldValidation(t *testing.T) {
	src := createTestSource(t)
	_, err := src.Max(true)
	require.IsType(t, errors.InvalidFieldError{}, err)
	_, err = src.Max(nil)
	require.IsType(t, errors.InvalidFieldError{}, err)
	_, err = src.Max("missing")
	require.IsType(t, errors.InvalidFieldError{}, err)
	_, err = src.Max(-1)
	require.IsType(t, errors.InvalidFieldError{}, err)

	// the receiver stays usable after a rejected aggregation
	_, err = src.Max("v")
	require.Nil(t, err)
}

func TestAggregationColumnTypeValidation(t *testing.T) {
	schema := streaming.CreateSchema()
	_, err := schema.CreateColumn("name", streaming.StringColumnType)
	require.Nil(t, err)
	_, err = schema.CreateColumn("active", streaming.BoolColumnType)
	require.Nil(t, err)
	_, err = schema.CreateColumn("doc", streaming.JSONColumnType)
	require.Nil(t, err)

	src := NewSource(schema, &emptyIterator{}, "test")
	_, err = src.Sum("name")
	require.IsType(t, errors.UnsupportedOperationError{}, err)
	_, err = src.Min("active")
	require.IsType(t, errors.UnsupportedOperationError{}, err)
	// a running sum cannot be written back into a JSON path
	_, err = src.Sum("doc.score")
	require.IsType(t, errors.UnsupportedOperationError{}, err)

	// strings order lexicographically for min/max and the By kinds, and
	// JSON paths are legal where the whole row is emitted
	_, err = src.Min("name")
	require.Nil(t, err)
	src = NewSource(schema, &emptyIterator{}, "test")
	_, err = src.MaxBy("doc.score")
	require.Nil(t, err)
}

func TestSumReduction(t *testing.T) {
	src := createTestSource(t)
	summed, err := src.Sum("v")
	require.Nil(t, err)
	op := summed.Operator()
	require.Equal(t, streaming.AggregateOperatorType, op.Type)
	require.Equal(t, streaming.SumAggregation, op.Agg.Kind)

	acc := driveAggregation(t, op,
		createIDValueRow(t, src.Schema(), 1, 1),
		createIDValueRow(t, src.Schema(), 2, 2),
		createIDValueRow(t, src.Schema(), 3, 3),
	)
	total, err := acc.GetInt64("v")
	require.Nil(t, err)
	require.Equal(t, int64(6), total)
	// non-aggregated fields reflect the most recent input
	id, err := acc.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(3), id)
}

func TestMinMaxReduction(t *testing.T) {
	src := createTestSource(t)
	maxed, err := src.Max("v")
	require.Nil(t, err)

	acc := driveAggregation(t, maxed.Operator(),
		createIDValueRow(t, src.Schema(), 1, 5),
		createIDValueRow(t, src.Schema(), 2, 9),
		createIDValueRow(t, src.Schema(), 3, 7),
	)
	v, err := acc.GetInt64("v")
	require.Nil(t, err)
	require.Equal(t, int64(9), v)
	id, err := acc.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(3), id)

	src = createTestSource(t)
	minned, err := src.Min("v")
	require.Nil(t, err)
	acc = driveAggregation(t, minned.Operator(),
		createIDValueRow(t, src.Schema(), 1, 5),
		createIDValueRow(t, src.Schema(), 2, 3),
		createIDValueRow(t, src.Schema(), 3, 7),
	)
	v, err = acc.GetInt64("v")
	require.Nil(t, err)
	require.Equal(t, int64(3), v)
}

func TestMaxByKeepsFirstRowOnTies(t *testing.T) {
	src := createTestSource(t)
	maxed, err := src.MaxBy("v")
	require.Nil(t, err)
	require.True(t, maxed.Operator().Agg.First)

	acc := driveAggregation(t, maxed.Operator(),
		createIDValueRow(t, src.Schema(), 1, 5),
		createIDValueRow(t, src.Schema(), 2, 9),
		createIDValueRow(t, src.Schema(), 3, 9),
	)
	id, err := acc.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(2), id)
}

func TestMaxByFirstFalseKeepsLatestRowOnTies(t *testing.T) {
	src := createTestSource(t)
	maxed, err := src.MaxByFirst("v", false)
	require.Nil(t, err)
	require.False(t, maxed.Operator().Agg.First)

	acc := driveAggregation(t, maxed.Operator(),
		createIDValueRow(t, src.Schema(), 1, 5),
		createIDValueRow(t, src.Schema(), 2, 9),
		createIDValueRow(t, src.Schema(), 3, 9),
	)
	id, err := acc.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(3), id)
}

func TestMinByKeepsFirstRowOnTies(t *testing.T) {
	src := createTestSource(t)
	minned, err := src.MinBy("v")
	require.Nil(t, err)

	acc := driveAggregation(t, minned.Operator(),
		createIDValueRow(t, src.Schema(), 1, 5),
		createIDValueRow(t, src.Schema(), 2, 5),
		createIDValueRow(t, src.Schema(), 3, 8),
	)
	id, err := acc.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(1), id)
}

func TestCountReduction(t *testing.T) {
	src := createTestSource(t)
	counted, err := src.Count()
	require.Nil(t, err)

	acc := driveAggregation(t, counted.Operator(),
		createIDValueRow(t, src.Schema(), 1, 5),
		createIDValueRow(t, src.Schema(), 2, 5),
		createIDValueRow(t, src.Schema(), 3, 8),
	)
	count, err := acc.GetInt64("count")
	require.Nil(t, err)
	require.Equal(t, int64(3), count)
}

func TestGroupedAggregateVariant(t *testing.T) {
	src := createTestSource(t)
	grouped, err := src.GroupBy("id")
	require.Nil(t, err)
	summed, err := grouped.Sum("v")
	require.Nil(t, err)
	require.Equal(t, streaming.GroupedAggregateOperatorType, summed.Operator().Type)
	require.NotNil(t, summed.Operator().Key)
}

func TestOrdinalFieldAggregation(t *testing.T) {
	src := createTestSource(t)
	summed, err := src.Sum(1)
	require.Nil(t, err)

	acc := driveAggregation(t, summed.Operator(),
		createIDValueRow(t, src.Schema(), 1, 10),
		createIDValueRow(t, src.Schema(), 2, 20),
	)
	v, err := acc.GetInt64("v")
	require.Nil(t, err)
	require.Equal(t, int64(30), v)
}
