package streaming

// Collector receives the Rows emitted by a FlatMapOperation. Emission order
// for a single input is preserved downstream.
type Collector interface {
	Emit(row *Row) error
}

// MapOperation transforms a Row one-to-one. The returned Row may be the input,
// manipulated in place, or a fresh Row conforming to the operator's output Schema.
type MapOperation func(row *Row) (*Row, error)

// FlatMapOperation turns a Row into zero or more Rows, emitted through the Collector
type FlatMapOperation func(row *Row, out Collector) error

// FilterOperation determines whether or not a Row should be retained
type FilterOperation func(row *Row) (bool, error)

// ReductionOperation combines two Rows of the same Schema. rrow is merged into
// lrow, and rrow is discarded.
type ReductionOperation func(lrow *Row, rrow *Row) error

// SeedOperation produces the initial running accumulator of a reduction from
// the first Row observed (globally, or for a key)
type SeedOperation func(first *Row) (*Row, error)

// KeyingOperation produces a comparable key from a Row, used to route records
// with equal keys to the same parallel instance of the downstream operator
type KeyingOperation func(row *Row) ([]byte, error)

// SinkOperation consumes a Row at the end of a stream
type SinkOperation func(row *Row) error

// SinkWriter is a terminal consumer with buffering it can be asked to flush,
// such as a file or console writer
type SinkWriter interface {
	Write(row *Row) error // Write consumes a single Row
	Flush() error         // Flush forces buffered Rows out
	Close() error         // Close flushes and releases the writer
}

// RowIterator iterates over the Rows produced by a source
type RowIterator interface {
	HasNext() bool         // HasNext returns true iff another Row is available
	Next() (*Row, error)   // Next returns the next available Row
	OnEnd(onEnd func())    // OnEnd registers a callback which fires when iteration ends
}
