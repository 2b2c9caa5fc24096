// Package memorystream provides a generator-backed source of Rows, simulating
// an unbounded stream by drawing records from user functions.
package memorystream

import (
	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/internal/graph"
)

// CreateDataStream wraps a set of record generators as the root of a stream.
// Each generator is drawn rowsPerGenerator times, round-robin; a
// rowsPerGenerator of 0 draws forever.
func CreateDataStream(generators []func() []byte, rowsPerGenerator int, parser streaming.Parser, schema *streaming.Schema) streaming.DataStream {
	return graph.NewSource(schema, &generatorIterator{
		generators: generators,
		remaining:  rowsPerGenerator * len(generators),
		unbounded:  rowsPerGenerator == 0,
		parser:     parser,
		schema:     schema,
	}, "memorystream")
}

type generatorIterator struct {
	generators   []func() []byte
	next         int
	remaining    int
	unbounded    bool
	parser       streaming.Parser
	schema       *streaming.Schema
	endListeners []func()
}

func (it *generatorIterator) HasNext() bool {
	if !it.unbounded && it.remaining <= 0 {
		for _, l := range it.endListeners {
			l()
		}
		it.endListeners = []func(){}
		return false
	}
	return true
}

func (it *generatorIterator) Next() (*streaming.Row, error) {
	gen := it.generators[it.next%len(it.generators)]
	it.next++
	if !it.unbounded {
		it.remaining--
	}
	return it.parser.Parse(gen(), it.schema)
}

func (it *generatorIterator) OnEnd(onEnd func()) {
	it.endListeners = append(it.endListeners, onEnd)
}
