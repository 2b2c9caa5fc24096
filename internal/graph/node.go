package graph

import (
	"github.com/gofrs/uuid"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
	iutil "github.com/apsaltis/ML-Pipelines/internal/util"
)

// Node implements streaming.DataStream: one immutable vertex of the dataflow
// graph. Transformations never mutate the receiver; they construct a new Node
// referencing it as an upstream. The only construction-scoped mutation is
// SetParallelism, which is rejected once the Node has been consumed by a
// downstream transformation.
type Node struct {
	id          uuid.UUID
	schema      *streaming.Schema
	operator    *streaming.Operator
	strategy    *streaming.Partitioning
	upstreams   []*Node
	parallelism int
	consumed    bool
}

var _ streaming.DataStream = (*Node)(nil)

// NewSource produces the root Node of a stream: a source operator drawing Rows
// from the given iterator. Used by source packages, not directly by clients.
func NewSource(schema *streaming.Schema, iter streaming.RowIterator, name string) *Node {
	return &Node{
		id:     uuid.Must(uuid.NewV4()),
		schema: schema,
		operator: &streaming.Operator{
			Type:   streaming.SourceOperatorType,
			Source: iter,
			Name:   name,
		},
		parallelism: 1,
	}
}

// newChild constructs a transformation Node downstream of the receiver
func (n *Node) newChild(schema *streaming.Schema, op *streaming.Operator) *Node {
	n.consumed = true
	return &Node{
		id:          uuid.Must(uuid.NewV4()),
		schema:      schema,
		operator:    op,
		upstreams:   []*Node{n},
		parallelism: n.parallelism,
	}
}

// ID returns the unique identifier of this Node
func (n *Node) ID() string {
	return n.id.String()
}

// Schema returns the element type descriptor of this Node
func (n *Node) Schema() *streaming.Schema {
	return n.schema
}

// Operator returns the operator definition of this Node, nil for pure
// partitioning nodes
func (n *Node) Operator() *streaming.Operator {
	return n.operator
}

// Partitioning returns the strategy attached to this Node, or nil
func (n *Node) Partitioning() *streaming.Partitioning {
	return n.strategy
}

// Upstreams returns the ordered upstream Nodes of this Node
func (n *Node) Upstreams() []streaming.DataStream {
	ups := make([]streaming.DataStream, len(n.upstreams))
	for i, u := range n.upstreams {
		ups[i] = u
	}
	return ups
}

// UpstreamNodes returns the ordered upstream Nodes of this Node, unwrapped
func (n *Node) UpstreamNodes() []*Node {
	return n.upstreams
}

// ParallelismHint returns the requested degree of parallelism of this Node
// without the accessor restrictions, for use by the plan compiler
func (n *Node) ParallelismHint() int {
	return n.parallelism
}

// Map transforms every Row one-to-one
func (n *Node) Map(fn streaming.MapOperation, opts ...streaming.TransformOption) (streaming.DataStream, error) {
	if fn == nil {
		return nil, errors.NullArgumentError{Name: "map function"}
	}
	if _, err := streaming.Sanitize(fn, true); err != nil {
		return nil, err
	}
	conf := transformConf(n.schema, opts)
	return n.newChild(conf.Out, &streaming.Operator{
		Type: streaming.MapOperatorType,
		Map:  iutil.SafeMapOperation(fn),
		Name: iutil.OperationName(fn),
	}), nil
}

// FlatMap turns every Row into zero or more Rows
func (n *Node) FlatMap(fn streaming.FlatMapOperation, opts ...streaming.TransformOption) (streaming.DataStream, error) {
	if fn == nil {
		return nil, errors.NullArgumentError{Name: "flatMap function"}
	}
	if _, err := streaming.Sanitize(fn, true); err != nil {
		return nil, err
	}
	conf := transformConf(n.schema, opts)
	return n.newChild(conf.Out, &streaming.Operator{
		Type:    streaming.FlatMapOperatorType,
		FlatMap: iutil.SafeFlatMapOperation(fn),
		Name:    iutil.OperationName(fn),
	}), nil
}

// Filter retains exactly those Rows for which fn returns true
func (n *Node) Filter(fn streaming.FilterOperation) (streaming.DataStream, error) {
	if fn == nil {
		return nil, errors.NullArgumentError{Name: "filter function"}
	}
	if _, err := streaming.Sanitize(fn, true); err != nil {
		return nil, err
	}
	return n.newChild(n.schema.Clone(), &streaming.Operator{
		Type:   streaming.FilterOperatorType,
		Filter: iutil.SafeFilterOperation(fn),
		Name:   iutil.OperationName(fn),
	}), nil
}

// Reduce combines pairs of Rows associatively, emitting the running aggregate
// after every input. The operator variant is fixed here, by inspecting the
// receiver's partitioning: a grouping strategy selects the grouped variant,
// holding state independently per key.
func (n *Node) Reduce(fn streaming.ReductionOperation) (streaming.DataStream, error) {
	if fn == nil {
		return nil, errors.NullArgumentError{Name: "reduce function"}
	}
	if _, err := streaming.Sanitize(fn, true); err != nil {
		return nil, err
	}
	op := &streaming.Operator{
		Type:   streaming.ReduceOperatorType,
		Reduce: iutil.SafeReductionOperation(fn),
		Seed:   seedClone,
		Name:   iutil.OperationName(fn),
	}
	if n.strategy.IsGrouping() {
		op.Type = streaming.GroupedReduceOperatorType
		op.Key = n.strategy.Key
	}
	return n.newChild(n.schema.Clone(), op), nil
}

// Count emits the running number of Rows observed since stream start
func (n *Node) Count() (streaming.DataStream, error) {
	return n.aggregate(&streaming.Aggregation{Kind: streaming.CountAggregation})
}

// AddSink attaches a terminal consumer function
func (n *Node) AddSink(fn streaming.SinkOperation) (streaming.DataStream, error) {
	if fn == nil {
		return nil, errors.NullArgumentError{Name: "sink function"}
	}
	if _, err := streaming.Sanitize(fn, true); err != nil {
		return nil, err
	}
	return n.newChild(n.schema.Clone(), &streaming.Operator{
		Type: streaming.SinkOperatorType,
		Sink: iutil.SafeSinkOperation(fn),
		Name: iutil.OperationName(fn),
	}), nil
}

// AddSinkWriter attaches a terminal SinkWriter. Writers are runtime-side
// collaborators holding local handles, so they bypass sanitization.
func (n *Node) AddSinkWriter(w streaming.SinkWriter) (streaming.DataStream, error) {
	if w == nil {
		return nil, errors.NullArgumentError{Name: "sink writer"}
	}
	return n.newChild(n.schema.Clone(), &streaming.Operator{
		Type:   streaming.SinkOperatorType,
		Writer: w,
		Name:   iutil.OperationName(w),
	}), nil
}

// SetParallelism sets the requested degree of parallelism of this Node
func (n *Node) SetParallelism(p int) error {
	if err := n.parallelismSupported("SetParallelism"); err != nil {
		return err
	}
	if p < 1 {
		return errors.UnsupportedOperationError{Op: "SetParallelism", Reason: "parallelism must be at least 1"}
	}
	n.parallelism = p
	return nil
}

// Parallelism returns the requested degree of parallelism of this Node
func (n *Node) Parallelism() (int, error) {
	if err := n.parallelismSupported("Parallelism"); err != nil {
		return 0, err
	}
	return n.parallelism, nil
}

func (n *Node) parallelismSupported(op string) error {
	if n.operator == nil {
		return errors.UnsupportedOperationError{Op: op, Reason: "node is a partitioning or merge view with no independent parallelism"}
	}
	if n.operator.Type == streaming.SourceOperatorType {
		return errors.UnsupportedOperationError{Op: op, Reason: "sources have no adjustable parallelism"}
	}
	if op == "SetParallelism" && n.consumed {
		return errors.UnsupportedOperationError{Op: op, Reason: "node has already been consumed by a downstream transformation"}
	}
	return nil
}

func transformConf(current *streaming.Schema, opts []streaming.TransformOption) *streaming.TransformConf {
	conf := &streaming.TransformConf{}
	for _, opt := range opts {
		opt(conf)
	}
	if conf.Out == nil {
		conf.Out = current.Clone()
	}
	return conf
}

// seedClone is the accumulator seed for plain reductions: the first Row
// observed becomes the initial running aggregate.
func seedClone(first *streaming.Row) (*streaming.Row, error) {
	return first.Clone(), nil
}
