package streaming

// OperatorType describes the kind of transformation an Operator performs,
// used by the runtime to control behaviour
type OperatorType string

const (
	// SourceOperatorType indicates that an operator produces Rows from outside the graph
	SourceOperatorType OperatorType = "source"
	// MapOperatorType indicates that an operator transforms Rows one-to-one
	MapOperatorType OperatorType = "map"
	// FlatMapOperatorType indicates that an operator turns each Row into zero or more Rows
	FlatMapOperatorType OperatorType = "flatmap"
	// FilterOperatorType indicates that an operator drops Rows which fail a predicate
	FilterOperatorType OperatorType = "filter"
	// ReduceOperatorType indicates a running reduction over the whole stream
	ReduceOperatorType OperatorType = "reduce"
	// GroupedReduceOperatorType indicates a running reduction with independent state per key
	GroupedReduceOperatorType OperatorType = "grouped_reduce"
	// AggregateOperatorType indicates a running field aggregation over the whole stream
	AggregateOperatorType OperatorType = "aggregate"
	// GroupedAggregateOperatorType indicates a running field aggregation with independent state per key
	GroupedAggregateOperatorType OperatorType = "grouped_aggregate"
	// SinkOperatorType indicates a terminal consumer
	SinkOperatorType OperatorType = "sink"
)

// IsReduction returns true iff this OperatorType maintains running accumulator state
func (t OperatorType) IsReduction() bool {
	switch t {
	case ReduceOperatorType, GroupedReduceOperatorType, AggregateOperatorType, GroupedAggregateOperatorType:
		return true
	}
	return false
}

// IsGrouped returns true iff this OperatorType maintains state independently per key
func (t OperatorType) IsGrouped() bool {
	return t == GroupedReduceOperatorType || t == GroupedAggregateOperatorType
}

// AggregationKind describes a built-in field aggregation
type AggregationKind string

const (
	// SumAggregation accumulates the sum of a field
	SumAggregation AggregationKind = "sum"
	// MinAggregation tracks the minimum value of a field
	MinAggregation AggregationKind = "min"
	// MaxAggregation tracks the maximum value of a field
	MaxAggregation AggregationKind = "max"
	// MinByAggregation tracks the entire Row holding the minimal value of a field
	MinByAggregation AggregationKind = "minBy"
	// MaxByAggregation tracks the entire Row holding the maximal value of a field
	MaxByAggregation AggregationKind = "maxBy"
	// CountAggregation tracks the running number of Rows observed
	CountAggregation AggregationKind = "count"
)

// Aggregation is the resolved description of a built-in field aggregation.
// First controls tie-breaking for the "by" kinds: when true, the first Row
// observed with the extremal value is retained; when false, the most recent.
type Aggregation struct {
	Kind  AggregationKind
	Field FieldRef
	First bool
}

// Operator is the definition of the per-record processing logic attached to a
// node: a tagged variant whose Type determines which fields are populated.
// Exactly one Operator is attached to every non-partitioning node, at
// construction time, and never replaced.
type Operator struct {
	Type OperatorType

	Map     MapOperation       // populated for MapOperatorType
	FlatMap FlatMapOperation   // populated for FlatMapOperatorType
	Filter  FilterOperation    // populated for FilterOperatorType
	Reduce  ReductionOperation // populated for reduction types
	Key     KeyingOperation    // populated for grouped reduction types
	Agg     *Aggregation       // populated for aggregate types
	Seed    SeedOperation      // populated for reduction types
	Sink    SinkOperation      // populated for SinkOperatorType
	Writer  SinkWriter         // populated for SinkOperatorType when sinking to a writer
	Source  RowIterator        // populated for SourceOperatorType

	// Name is the symbol name of the user function, recorded for diagnostics
	// and plan descriptions
	Name string
}
