// Package plan compiles a constructed dataflow graph into the node-graph
// description consumed by the execution runtime: a topologically ordered,
// stage-annotated list of node descriptors, serializable for submission.
package plan

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/pierrec/lz4"
	"github.com/rs/zerolog"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
	"github.com/apsaltis/ML-Pipelines/internal/graph"
	"github.com/apsaltis/ML-Pipelines/logging"
)

// A Compiler turns sink handles into Plans
type Compiler struct {
	log zerolog.Logger
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithLogger directs compilation progress to the given logger
func WithLogger(log zerolog.Logger) CompilerOption {
	return func(c *Compiler) {
		c.log = log
	}
}

// NewCompiler produces a Compiler. Compilation is silent unless WithLogger is
// supplied or PIPELINES_LOG_LEVEL is set.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{log: logging.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// A Plan is the compiled form of a dataflow graph: every node reachable
// upstream of the given sinks, in topological order, annotated with the stage
// it executes in. Stage boundaries fall wherever a partitioning strategy
// forces records across the network.
type Plan struct {
	nodes  []*graph.Node
	descs  []NodeDesc
	stages map[string]int
	levels [][]string
}

// FieldDesc is the wire description of a FieldRef
type FieldDesc struct {
	Named   bool
	Ordinal int
	Name    string
}

// ColumnDesc is the wire description of one Schema column
type ColumnDesc struct {
	Name string
	Type string
}

// AggregationDesc is the wire description of an Aggregation
type AggregationDesc struct {
	Kind  string
	Field FieldDesc
	First bool
}

// NodeDesc is the wire description of one graph node. Functions do not cross
// the wire; they are recorded by symbol name and rebound by the runtime.
type NodeDesc struct {
	ID          string
	Operator    string // empty for partitioning and merge views
	Func        string
	Aggregation *AggregationDesc
	Scheme      string
	Grouped     bool
	KeyFunc     string
	KeyFields   []FieldDesc
	Columns     []ColumnDesc
	Parallelism int
	Stage       int
	Upstreams   []string
}

// Compile walks the graph upstream of the given sinks and produces a Plan
func (c *Compiler) Compile(sinks ...streaming.DataStream) (*Plan, error) {
	if len(sinks) == 0 {
		return nil, errors.NullArgumentError{Name: "plan sinks"}
	}
	collected := make(map[string]*graph.Node)
	var order []*graph.Node
	for _, s := range sinks {
		node, ok := s.(*graph.Node)
		if !ok {
			return nil, errors.UnsupportedOperationError{Op: "Compile", Reason: "stream was not produced by this builder"}
		}
		collect(node, collected, &order)
	}
	levels, err := buildLevels(order)
	if err != nil {
		return nil, err
	}
	p := &Plan{nodes: order, stages: make(map[string]int), levels: levels}
	p.assignStages(levels, collected)
	for _, n := range order {
		p.descs = append(p.descs, describe(n, p.stages[n.ID()]))
	}
	c.log.Info().
		Int("nodes", len(p.nodes)).
		Int("stages", p.NumStages()).
		Int("sinks", len(sinks)).
		Msg("compiled plan")
	for _, d := range p.descs {
		c.log.Debug().
			Str("node", d.ID).
			Str("operator", d.Operator).
			Str("fn", d.Func).
			Int("stage", d.Stage).
			Int("parallelism", d.Parallelism).
			Msg("plan node")
	}
	return p, nil
}

// collect appends nodes depth-first so every upstream precedes its consumers
func collect(n *graph.Node, seen map[string]*graph.Node, order *[]*graph.Node) {
	if _, ok := seen[n.ID()]; ok {
		return
	}
	seen[n.ID()] = n
	for _, up := range n.UpstreamNodes() {
		collect(up, seen, order)
	}
	*order = append(*order, n)
}

// buildLevels groups node ids by dependency level using Kahn's algorithm.
// Nodes within a level have no mutual dependencies. The graph is acyclic by
// construction; a detected cycle indicates corruption and fails compilation.
func buildLevels(order []*graph.Node) ([][]string, error) {
	inDegree := make(map[string]int, len(order))
	dependents := make(map[string][]string)
	for _, n := range order {
		inDegree[n.ID()] += 0
		for _, up := range n.UpstreamNodes() {
			inDegree[n.ID()]++
			dependents[up.ID()] = append(dependents[up.ID()], n.ID())
		}
	}
	var queue []string
	for _, n := range order {
		if inDegree[n.ID()] == 0 {
			queue = append(queue, n.ID())
		}
	}
	var levels [][]string
	visited := 0
	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)
		var next []string
		for _, id := range queue {
			for _, dep := range dependents[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}
	if visited != len(order) {
		return nil, fmt.Errorf("plan: cycle detected, processed %d of %d nodes", visited, len(order))
	}
	return levels, nil
}

// assignStages numbers each node with the stage it executes in: a node whose
// strategy moves records across instances begins a new stage relative to its
// upstreams.
func (p *Plan) assignStages(levels [][]string, nodes map[string]*graph.Node) {
	for _, level := range levels {
		for _, id := range level {
			n := nodes[id]
			stage := 0
			for _, up := range n.UpstreamNodes() {
				if s := p.stages[up.ID()]; s > stage {
					stage = s
				}
			}
			if crossesInstances(n.Partitioning()) {
				stage++
			}
			p.stages[id] = stage
		}
	}
}

// crossesInstances reports whether a strategy forces records between parallel
// instances. Forward and absent strategies stay local.
func crossesInstances(s *streaming.Partitioning) bool {
	if s == nil {
		return false
	}
	switch s.Scheme {
	case streaming.ForwardScheme:
		return false
	default:
		return true
	}
}

func describe(n *graph.Node, stage int) NodeDesc {
	desc := NodeDesc{
		ID:          n.ID(),
		Parallelism: n.ParallelismHint(),
		Stage:       stage,
	}
	for _, up := range n.UpstreamNodes() {
		desc.Upstreams = append(desc.Upstreams, up.ID())
	}
	n.Schema().ForEachColumn(func(name string, idx int, colType streaming.ColumnType) error {
		desc.Columns = append(desc.Columns, ColumnDesc{Name: name, Type: string(colType)})
		return nil
	})
	if op := n.Operator(); op != nil {
		desc.Operator = string(op.Type)
		desc.Func = op.Name
		if op.Agg != nil {
			desc.Aggregation = &AggregationDesc{
				Kind:  string(op.Agg.Kind),
				Field: describeField(op.Agg.Field),
				First: op.Agg.First,
			}
		}
	}
	if s := n.Partitioning(); s != nil {
		desc.Scheme = string(s.Scheme)
		desc.Grouped = s.Grouped
		desc.KeyFunc = s.KeyName
		for _, f := range s.Fields {
			desc.KeyFields = append(desc.KeyFields, describeField(f))
		}
	}
	return desc
}

func describeField(f streaming.FieldRef) FieldDesc {
	return FieldDesc{Named: f.IsNamed(), Ordinal: f.Pos(), Name: f.Name()}
}

// Size returns the number of nodes in this Plan
func (p *Plan) Size() int {
	return len(p.nodes)
}

// NumStages returns the number of execution stages in this Plan
func (p *Plan) NumStages() int {
	max := 0
	for _, s := range p.stages {
		if s > max {
			max = s
		}
	}
	return max + 1
}

// Nodes returns this Plan's node descriptors in topological order
func (p *Plan) Nodes() []NodeDesc {
	descs := make([]NodeDesc, len(p.descs))
	copy(descs, p.descs)
	return descs
}

// Levels returns node ids grouped by dependency level; nodes within a level
// have no mutual dependencies
func (p *Plan) Levels() [][]string {
	return p.levels
}

// Marshal serializes this Plan's node descriptors for submission to the
// runtime, lz4-compressed
func (p *Plan) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	compressor := lz4.NewWriter(&buf)
	if err := gob.NewEncoder(compressor).Encode(p.descs); err != nil {
		return nil, fmt.Errorf("unable to encode plan: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return nil, fmt.Errorf("unable to compress plan: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a marshaled Plan back into node descriptors
func Unmarshal(data []byte) ([]NodeDesc, error) {
	decompressor := lz4.NewReader(bytes.NewReader(data))
	var descs []NodeDesc
	if err := gob.NewDecoder(decompressor).Decode(&descs); err != nil {
		return nil, fmt.Errorf("unable to decode plan: %w", err)
	}
	return descs, nil
}
