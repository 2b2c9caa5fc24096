package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/errors"
	"github.com/apsaltis/ML-Pipelines/internal/graph"
)

type stubIterator struct{}

func (it *stubIterator) HasNext() bool                 { return false }
func (it *stubIterator) Next() (*streaming.Row, error) { return nil, nil }
func (it *stubIterator) OnEnd(onEnd func())            {}

func createPlanSource(t *testing.T) *graph.Node {
	schema := streaming.CreateSchema()
	_, err := schema.CreateColumn("id", streaming.Int64ColumnType)
	require.Nil(t, err)
	_, err = schema.CreateColumn("v", streaming.Int64ColumnType)
	require.Nil(t, err)
	return graph.NewSource(schema, &stubIterator{}, "test")
}

func discard(row *streaming.Row) error { return nil }

func sumValues(lrow, rrow *streaming.Row) error {
	lv, err := lrow.GetInt64("v")
	if err != nil {
		return err
	}
	rv, err := rrow.GetInt64("v")
	if err != nil {
		return err
	}
	return lrow.SetInt64("v", lv+rv)
}

func buildPipeline(t *testing.T) streaming.DataStream {
	src := createPlanSource(t)
	mapped, err := src.Map(func(row *streaming.Row) (*streaming.Row, error) { return row, nil })
	require.Nil(t, err)
	grouped, err := mapped.GroupBy("id")
	require.Nil(t, err)
	reduced, err := grouped.Reduce(sumValues)
	require.Nil(t, err)
	sink, err := reduced.AddSink(discard)
	require.Nil(t, err)
	return sink
}

func TestCompileOrdersUpstreamsFirst(t *testing.T) {
	sink := buildPipeline(t)
	p, err := NewCompiler().Compile(sink)
	require.Nil(t, err)
	require.Equal(t, 5, p.Size())

	seen := make(map[string]bool)
	for _, desc := range p.Nodes() {
		for _, up := range desc.Upstreams {
			require.True(t, seen[up], "node %s listed before its upstream %s", desc.ID, up)
		}
		seen[desc.ID] = true
	}
	// the sink is last and the source is first
	descs := p.Nodes()
	require.Equal(t, string(streaming.SourceOperatorType), descs[0].Operator)
	require.Equal(t, string(streaming.SinkOperatorType), descs[len(descs)-1].Operator)
}

func TestCompileAssignsStagesAtPartitionBoundaries(t *testing.T) {
	sink := buildPipeline(t)
	p, err := NewCompiler().Compile(sink)
	require.Nil(t, err)
	require.Equal(t, 2, p.NumStages())

	descs := p.Nodes()
	// source and map execute locally in stage 0
	require.Equal(t, 0, descs[0].Stage)
	require.Equal(t, 0, descs[1].Stage)
	// the keyed view moves records across instances and opens stage 1
	require.Equal(t, string(streaming.KeyedByFieldsScheme), descs[2].Scheme)
	require.True(t, descs[2].Grouped)
	require.Equal(t, 1, descs[2].Stage)
	require.Equal(t, 1, descs[3].Stage)
	require.Equal(t, 1, descs[4].Stage)
}

func TestForwardStaysInStage(t *testing.T) {
	src := createPlanSource(t)
	forwarded := src.Forward()
	sink, err := forwarded.AddSink(discard)
	require.Nil(t, err)

	p, err := NewCompiler().Compile(sink)
	require.Nil(t, err)
	require.Equal(t, 1, p.NumStages())
}

func TestCompileMergedPipelines(t *testing.T) {
	a := createPlanSource(t)
	b := createPlanSource(t)
	merged, err := a.Merge(b)
	require.Nil(t, err)
	sink, err := merged.AddSink(discard)
	require.Nil(t, err)

	p, err := NewCompiler().Compile(sink)
	require.Nil(t, err)
	// two sources, the merge view and the sink
	require.Equal(t, 4, p.Size())
	levels := p.Levels()
	require.Len(t, levels[0], 2)
}

func TestCompileSharedUpstreamOnce(t *testing.T) {
	src := createPlanSource(t)
	left, err := src.Filter(func(row *streaming.Row) (bool, error) { return true, nil })
	require.Nil(t, err)
	right, err := src.Filter(func(row *streaming.Row) (bool, error) { return false, nil })
	require.Nil(t, err)
	sinkLeft, err := left.AddSink(discard)
	require.Nil(t, err)
	sinkRight, err := right.AddSink(discard)
	require.Nil(t, err)

	p, err := NewCompiler().Compile(sinkLeft, sinkRight)
	require.Nil(t, err)
	// the shared source appears once
	require.Equal(t, 5, p.Size())
}

func TestCompileRejectsBadArguments(t *testing.T) {
	_, err := NewCompiler().Compile()
	require.IsType(t, errors.NullArgumentError{}, err)
	_, err = NewCompiler().Compile(foreignStream{})
	require.IsType(t, errors.UnsupportedOperationError{}, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	sink := buildPipeline(t)
	p, err := NewCompiler().Compile(sink)
	require.Nil(t, err)

	data, err := p.Marshal()
	require.Nil(t, err)
	decoded, err := Unmarshal(data)
	require.Nil(t, err)
	require.Equal(t, p.Nodes(), decoded)
}

// foreignStream satisfies streaming.DataStream without being a builder node
type foreignStream struct {
	streaming.DataStream
}
