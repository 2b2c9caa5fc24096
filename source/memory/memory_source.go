// Package memory provides a bounded, in-memory source of Rows, useful for
// testing dataflow graphs without external infrastructure.
package memory

import (
	streaming "github.com/apsaltis/ML-Pipelines"
	"github.com/apsaltis/ML-Pipelines/internal/graph"
)

// CreateDataStream wraps a fixed sequence of Rows as the root of a stream
func CreateDataStream(schema *streaming.Schema, rows ...*streaming.Row) streaming.DataStream {
	return graph.NewSource(schema, &rowIterator{rows: rows}, "memory")
}

// CreateDataStreamFromBytes wraps a fixed sequence of raw records as the root
// of a stream, parsing each lazily
func CreateDataStreamFromBytes(schema *streaming.Schema, parser streaming.Parser, records [][]byte) streaming.DataStream {
	return graph.NewSource(schema, &parsingIterator{records: records, parser: parser, schema: schema}, "memory")
}

type rowIterator struct {
	rows         []*streaming.Row
	next         int
	endListeners []func()
}

func (it *rowIterator) HasNext() bool {
	if it.next >= len(it.rows) {
		for _, l := range it.endListeners {
			l()
		}
		it.endListeners = []func(){}
		return false
	}
	return true
}

func (it *rowIterator) Next() (*streaming.Row, error) {
	row := it.rows[it.next]
	it.next++
	return row, nil
}

func (it *rowIterator) OnEnd(onEnd func()) {
	it.endListeners = append(it.endListeners, onEnd)
}

type parsingIterator struct {
	records      [][]byte
	parser       streaming.Parser
	schema       *streaming.Schema
	next         int
	endListeners []func()
}

func (it *parsingIterator) HasNext() bool {
	if it.next >= len(it.records) {
		for _, l := range it.endListeners {
			l()
		}
		it.endListeners = []func(){}
		return false
	}
	return true
}

func (it *parsingIterator) Next() (*streaming.Row, error) {
	row, err := it.parser.Parse(it.records[it.next], it.schema)
	if err != nil {
		return nil, err
	}
	it.next++
	return row, nil
}

func (it *parsingIterator) OnEnd(onEnd func()) {
	it.endListeners = append(it.endListeners, onEnd)
}
