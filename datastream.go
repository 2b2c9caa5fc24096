package streaming

// A DataStream is an immutable handle on one node of the dataflow graph. Every
// transformation returns a new DataStream referencing the receiver as its
// upstream, so a chain of calls builds a DAG which the runtime later compiles
// and executes. Construction fails atomically: an erroneous call adds no node.
type DataStream interface {
	// ID returns the unique identifier of the underlying node
	ID() string
	// Schema returns the element type descriptor of the underlying node
	Schema() *Schema
	// Operator returns the operator definition of the underlying node, or nil
	// for pure partitioning nodes
	Operator() *Operator
	// Partitioning returns the strategy attached to the underlying node, or nil
	Partitioning() *Partitioning
	// Upstreams returns the ordered upstream nodes of the underlying node
	Upstreams() []DataStream

	// Map transforms every Row one-to-one, preserving per-partition order.
	// Supply OutputSchema when fn changes the element type.
	Map(fn MapOperation, opts ...TransformOption) (DataStream, error)
	// FlatMap turns every Row into zero or more Rows, preserving the emission
	// order of each input
	FlatMap(fn FlatMapOperation, opts ...TransformOption) (DataStream, error)
	// Filter retains exactly those Rows for which fn returns true, preserving
	// their relative order
	Filter(fn FilterOperation) (DataStream, error)
	// Reduce combines pairs of Rows associatively, emitting the running
	// aggregate after every input. On a grouped stream, state is kept
	// independently per key.
	Reduce(fn ReductionOperation) (DataStream, error)
	// Count emits the running number of Rows observed since stream start, as a
	// single Int64 column named "count"
	Count() (DataStream, error)

	// GroupBy attaches a keyed strategy drawn from field references; subsequent
	// reductions operate per key
	GroupBy(fields ...interface{}) (DataStream, error)
	// GroupByKey attaches a keyed strategy realized by a user key extractor,
	// sanitized once at attachment
	GroupByKey(fn KeyingOperation) (DataStream, error)
	// PartitionBy routes Rows between parallel instances by field references
	// without changing reduction semantics
	PartitionBy(fields ...interface{}) (DataStream, error)
	// PartitionByKey routes Rows by a user key extractor without changing
	// reduction semantics
	PartitionByKey(fn KeyingOperation) (DataStream, error)
	// Broadcast sends every Row to every parallel downstream instance
	Broadcast() DataStream
	// Shuffle routes Rows to downstream instances uniformly at random
	Shuffle() DataStream
	// Forward keeps Rows on their local instance
	Forward() DataStream
	// Distribute routes Rows to downstream instances round-robin
	Distribute() DataStream
	// Merge produces a stream observing every Row of this stream and the given
	// same-schema streams, with no cross-input ordering guarantee
	Merge(streams ...DataStream) (DataStream, error)

	// Sum emits, after every Row, a synthetic Row carrying the running sum at
	// the given field
	Sum(field interface{}) (DataStream, error)
	// Min emits, after every Row, a synthetic Row carrying the running minimum
	// at the given field
	Min(field interface{}) (DataStream, error)
	// Max emits, after every Row, a synthetic Row carrying the running maximum
	// at the given field
	Max(field interface{}) (DataStream, error)
	// MinBy emits the entire Row currently holding the minimal value at the
	// given field, retaining the first Row observed on ties
	MinBy(field interface{}) (DataStream, error)
	// MaxBy emits the entire Row currently holding the maximal value at the
	// given field, retaining the first Row observed on ties
	MaxBy(field interface{}) (DataStream, error)
	// MinByFirst is MinBy with an explicit tie-break: first selects between the
	// first-seen (true) and most recent (false) extremal Row
	MinByFirst(field interface{}, first bool) (DataStream, error)
	// MaxByFirst is MaxBy with an explicit tie-break: first selects between the
	// first-seen (true) and most recent (false) extremal Row
	MaxByFirst(field interface{}, first bool) (DataStream, error)

	// AddSink attaches a terminal consumer function. The returned handle exists
	// for API symmetry; transformations chained past a sink do not alter sunk
	// semantics.
	AddSink(fn SinkOperation) (DataStream, error)
	// AddSinkWriter attaches a terminal SinkWriter, such as a file or console writer
	AddSinkWriter(w SinkWriter) (DataStream, error)

	// SetParallelism sets the degree of parallelism of the underlying node. It
	// fails on nodes with no independent parallelism (sources, partitioning
	// views) and on nodes already consumed by a downstream transformation.
	SetParallelism(n int) error
	// Parallelism returns the degree of parallelism of the underlying node,
	// with the same restrictions as SetParallelism
	Parallelism() (int, error)
}

// TransformOption configures the construction of a transformation node
type TransformOption func(*TransformConf)

// TransformConf carries optional transformation settings
type TransformConf struct {
	Out *Schema
}

// OutputSchema declares the element type descriptor of a transformation's
// output, for operations which change element type
func OutputSchema(s *Schema) TransformOption {
	return func(c *TransformConf) {
		c.Out = s
	}
}
