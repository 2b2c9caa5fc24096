// Package local executes a dataflow graph in-process. It exists for tests and
// small jobs: records are pushed from sources through each operator
// synchronously, with keyed state routed the same way the distributed runtime
// routes it, so graph semantics can be verified without a cluster.
package local

import (
	"context"
	"fmt"
	"sync"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
	"github.com/apsaltis/ML-Pipelines/internal/graph"
	"github.com/apsaltis/ML-Pipelines/logging"
)

// A Runner executes graphs in-process
type Runner struct {
	log zerolog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger directs execution progress to the given logger
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// NewRunner produces a Runner. Execution is silent unless WithLogger is
// supplied or PIPELINES_LOG_LEVEL is set.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: logging.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives every source upstream of the given sinks to exhaustion, pushing
// Rows through the graph. Sources run concurrently; reduction state is
// guarded per node, and per-key state is independent per key. Sink writers
// are flushed before Run returns, but remain owned (and closed) by the caller.
func (r *Runner) Run(ctx context.Context, sinks ...streaming.DataStream) error {
	if len(sinks) == 0 {
		return errors.NullArgumentError{Name: "sinks"}
	}
	ex, err := newExecution(sinks)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range ex.sources {
		src := src
		g.Go(func() error {
			count, err := ex.drain(ctx, src)
			r.log.Debug().Str("source", src.ID()).Int64("rows", count).Msg("source drained")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.log.Info().Int("sources", len(ex.sources)).Int("nodes", len(ex.children)).Msg("graph drained")
	return ex.flushWriters()
}

// execution is the runtime shape of one graph: adjacency plus operator state
type execution struct {
	children map[string][]*graph.Node
	states   map[string]*nodeState
	sources  []*graph.Node
	writers  []streaming.SinkWriter
}

// nodeState holds the running accumulator(s) of a reduction node
type nodeState struct {
	mu     sync.Mutex
	global *streaming.Row
	keyed  map[uint64]*streaming.Row
}

func newExecution(sinks []streaming.DataStream) (*execution, error) {
	ex := &execution{
		children: make(map[string][]*graph.Node),
		states:   make(map[string]*nodeState),
	}
	seen := make(map[string]bool)
	var walk func(n *graph.Node)
	walk = func(n *graph.Node) {
		if seen[n.ID()] {
			return
		}
		seen[n.ID()] = true
		ex.children[n.ID()] = ex.children[n.ID()]
		if op := n.Operator(); op != nil {
			if op.Type == streaming.SourceOperatorType {
				ex.sources = append(ex.sources, n)
			}
			if op.Type.IsReduction() {
				ex.states[n.ID()] = &nodeState{keyed: make(map[uint64]*streaming.Row)}
			}
			if op.Writer != nil {
				ex.writers = append(ex.writers, op.Writer)
			}
		}
		for _, up := range n.UpstreamNodes() {
			ex.children[up.ID()] = append(ex.children[up.ID()], n)
			walk(up)
		}
	}
	for _, s := range sinks {
		node, ok := s.(*graph.Node)
		if !ok {
			return nil, errors.UnsupportedOperationError{Op: "Run", Reason: "stream was not produced by this builder"}
		}
		walk(node)
	}
	return ex, nil
}

// drain pulls every Row from a source and pushes it downstream
func (ex *execution) drain(ctx context.Context, src *graph.Node) (int64, error) {
	iter := src.Operator().Source
	var count int64
	for iter.HasNext() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		row, err := iter.Next()
		if err != nil {
			return count, err
		}
		count++
		if err = ex.forward(ctx, src, row); err != nil {
			return count, err
		}
	}
	return count, nil
}

// forward delivers one output Row of a node to each of its consumers
func (ex *execution) forward(ctx context.Context, from *graph.Node, row *streaming.Row) error {
	children := ex.children[from.ID()]
	for i, child := range children {
		out := row
		if i < len(children)-1 {
			// fan-out: each consumer manipulates its own copy
			out = row.Clone()
		}
		if err := ex.push(ctx, child, out); err != nil {
			return err
		}
	}
	return nil
}

// push applies a node's operator to an incoming Row and forwards the results
func (ex *execution) push(ctx context.Context, n *graph.Node, row *streaming.Row) error {
	op := n.Operator()
	if op == nil {
		// partitioning and merge views carry routing metadata only
		return ex.forward(ctx, n, row)
	}
	switch op.Type {
	case streaming.MapOperatorType:
		out, err := op.Map(row)
		if err != nil {
			return err
		}
		return ex.forward(ctx, n, out)
	case streaming.FlatMapOperatorType:
		collector := &sliceCollector{}
		if err := op.FlatMap(row, collector); err != nil {
			return err
		}
		for _, out := range collector.rows {
			if err := ex.forward(ctx, n, out); err != nil {
				return err
			}
		}
		return nil
	case streaming.FilterOperatorType:
		keep, err := op.Filter(row)
		if err != nil {
			return err
		}
		if !keep {
			return nil
		}
		return ex.forward(ctx, n, row)
	case streaming.ReduceOperatorType, streaming.GroupedReduceOperatorType,
		streaming.AggregateOperatorType, streaming.GroupedAggregateOperatorType:
		out, err := ex.reduce(n, op, row)
		if err != nil {
			return err
		}
		return ex.forward(ctx, n, out)
	case streaming.SinkOperatorType:
		if op.Sink != nil {
			return op.Sink(row)
		}
		return op.Writer.Write(row)
	default:
		return fmt.Errorf("cannot execute operator of type %s", op.Type)
	}
}

// reduce folds a Row into the node's running accumulator and emits a snapshot.
// Grouped variants key the accumulator by the hash of the extracted key, so
// state for distinct keys never interferes.
func (ex *execution) reduce(n *graph.Node, op *streaming.Operator, row *streaming.Row) (*streaming.Row, error) {
	st := ex.states[n.ID()]
	st.mu.Lock()
	defer st.mu.Unlock()
	var acc *streaming.Row
	var slot *uint64
	if op.Type.IsGrouped() {
		keyBuf, err := op.Key(row)
		if err != nil {
			return nil, err
		}
		h := xxhash.Sum64(keyBuf)
		slot = &h
		acc = st.keyed[h]
	} else {
		acc = st.global
	}
	if acc == nil {
		seeded, err := op.Seed(row)
		if err != nil {
			return nil, err
		}
		acc = seeded
	} else if err := op.Reduce(acc, row); err != nil {
		return nil, err
	}
	if slot != nil {
		st.keyed[*slot] = acc
	} else {
		st.global = acc
	}
	return acc.Clone(), nil
}

func (ex *execution) flushWriters() error {
	for _, w := range ex.writers {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

type sliceCollector struct {
	rows []*streaming.Row
}

func (c *sliceCollector) Emit(row *streaming.Row) error {
	if row == nil {
		return errors.NullArgumentError{Name: "emitted row"}
	}
	c.rows = append(c.rows, row)
	return nil
}
