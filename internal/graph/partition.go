package graph

import (
	"bytes"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
	iutil "github.com/apsaltis/ML-Pipelines/internal/util"
)

// repartition attaches a strategy to the stream. Applied to a node which is
// itself a pure partitioning view, the new strategy replaces the old rather
// than chaining a second routing hop.
func (n *Node) repartition(strategy *streaming.Partitioning) *Node {
	if n.operator == nil && n.strategy != nil {
		return &Node{
			id:          uuid.Must(uuid.NewV4()),
			schema:      n.schema,
			strategy:    strategy,
			upstreams:   n.upstreams,
			parallelism: n.parallelism,
		}
	}
	n.consumed = true
	return &Node{
		id:          uuid.Must(uuid.NewV4()),
		schema:      n.schema,
		strategy:    strategy,
		upstreams:   []*Node{n},
		parallelism: n.parallelism,
	}
}

func (n *Node) keyedBy(fields []interface{}, grouped bool) (streaming.DataStream, error) {
	if len(fields) == 0 {
		return nil, errors.NullArgumentError{Name: "key fields"}
	}
	refs := make([]streaming.FieldRef, len(fields))
	for i, f := range fields {
		ref, err := streaming.ResolveFieldRef(f)
		if err != nil {
			return nil, err
		}
		if err = ref.Validate(n.schema); err != nil {
			return nil, errors.InvalidFieldError{Value: f}
		}
		refs[i] = ref
	}
	return n.repartition(&streaming.Partitioning{
		Scheme:  streaming.KeyedByFieldsScheme,
		Grouped: grouped,
		Fields:  refs,
		Key:     fieldsKeyer(refs),
	}), nil
}

func (n *Node) keyedByFunc(fn streaming.KeyingOperation, grouped bool) (streaming.DataStream, error) {
	if fn == nil {
		return nil, errors.NullArgumentError{Name: "key function"}
	}
	// the extractor is sanitized exactly once, here, and reused per Row
	if _, err := streaming.Sanitize(fn, true); err != nil {
		return nil, err
	}
	return n.repartition(&streaming.Partitioning{
		Scheme:  streaming.KeyedByFuncScheme,
		Grouped: grouped,
		Key:     iutil.SafeKeyingOperation(fn),
		KeyName: iutil.OperationName(fn),
	}), nil
}

// GroupBy attaches a keyed strategy drawn from field references. Reductions on
// the resulting stream keep state independently per key.
func (n *Node) GroupBy(fields ...interface{}) (streaming.DataStream, error) {
	return n.keyedBy(fields, true)
}

// GroupByKey attaches a keyed strategy realized by a user key extractor
func (n *Node) GroupByKey(fn streaming.KeyingOperation) (streaming.DataStream, error) {
	return n.keyedByFunc(fn, true)
}

// PartitionBy routes Rows between parallel instances by field references
// without changing reduction semantics downstream
func (n *Node) PartitionBy(fields ...interface{}) (streaming.DataStream, error) {
	return n.keyedBy(fields, false)
}

// PartitionByKey routes Rows by a user key extractor without changing
// reduction semantics downstream
func (n *Node) PartitionByKey(fn streaming.KeyingOperation) (streaming.DataStream, error) {
	return n.keyedByFunc(fn, false)
}

// Broadcast sends every Row to every parallel downstream instance
func (n *Node) Broadcast() streaming.DataStream {
	return n.repartition(&streaming.Partitioning{Scheme: streaming.BroadcastScheme})
}

// Shuffle routes Rows to downstream instances uniformly at random
func (n *Node) Shuffle() streaming.DataStream {
	return n.repartition(&streaming.Partitioning{Scheme: streaming.ShuffleScheme})
}

// Forward keeps Rows on their local instance
func (n *Node) Forward() streaming.DataStream {
	return n.repartition(&streaming.Partitioning{Scheme: streaming.ForwardScheme})
}

// Distribute routes Rows to downstream instances round-robin
func (n *Node) Distribute() streaming.DataStream {
	return n.repartition(&streaming.Partitioning{Scheme: streaming.DistributeScheme})
}

// Merge produces a stream whose inputs are the union of this stream and the
// given streams. All inputs must carry an equivalent Schema. Downstream
// consumers observe Rows from every input, interleaved in a runtime-defined
// order.
func (n *Node) Merge(streams ...streaming.DataStream) (streaming.DataStream, error) {
	if len(streams) == 0 {
		return nil, errors.NullArgumentError{Name: "merge streams"}
	}
	inputs := make([]*Node, 0, len(streams)+1)
	inputs = append(inputs, n)
	var merr *multierror.Error
	for i, s := range streams {
		other, ok := s.(*Node)
		if !ok {
			return nil, errors.UnsupportedOperationError{Op: "Merge", Reason: "stream was not produced by this builder"}
		}
		if err := n.schema.Equals(other.schema); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("stream %d: %w", i, err))
			continue
		}
		inputs = append(inputs, other)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.IncompatibleSchemaError{Reason: err}
	}
	for _, in := range inputs {
		in.consumed = true
	}
	return &Node{
		id:          uuid.Must(uuid.NewV4()),
		schema:      n.schema.Clone(),
		upstreams:   inputs,
		parallelism: n.parallelism,
	}, nil
}

// fieldsKeyer derives a KeyingOperation from resolved field references
func fieldsKeyer(refs []streaming.FieldRef) streaming.KeyingOperation {
	return func(row *streaming.Row) ([]byte, error) {
		var buf bytes.Buffer
		for _, ref := range refs {
			v, err := row.Get(ref)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, "%v|", v)
		}
		return buf.Bytes(), nil
	}
}
