package util

import (
	"fmt"

	streaming "github.com/apsaltis/ML-Pipelines"
)

// SafeMapOperation wraps a MapOperation such that panics are recovered and nice error messages are constructed
func SafeMapOperation(mapOp streaming.MapOperation) (safeMapOp streaming.MapOperation) {
	return func(row *streaming.Row) (res *streaming.Row, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Map Panic: %w\nRow: %s\n%s", anErr, row.String(), GetTrace())
				} else {
					err = fmt.Errorf("Map Panic: %v\nRow: %s\n%s", r, row.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Map Error: %w\nRow: %s", err, row.String())
			}
		}()
		res, err = mapOp(row)
		return
	}
}

// SafeFlatMapOperation wraps a FlatMapOperation such that panics are recovered and nice error messages are constructed
func SafeFlatMapOperation(flatMapOp streaming.FlatMapOperation) (safeFlatMapOp streaming.FlatMapOperation) {
	return func(row *streaming.Row, out streaming.Collector) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("FlatMap Panic: %w\nRow: %s\n%s", anErr, row.String(), GetTrace())
				} else {
					err = fmt.Errorf("FlatMap Panic: %v\nRow: %s\n%s", r, row.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("FlatMap Error: %w\nRow: %s", err, row.String())
			}
		}()
		err = flatMapOp(row, out)
		return
	}
}

// SafeFilterOperation wraps a FilterOperation such that panics are recovered and nice error messages are constructed
func SafeFilterOperation(filterOp streaming.FilterOperation) (safeFilterOp streaming.FilterOperation) {
	return func(row *streaming.Row) (keep bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Filter Panic: %w\nRow: %s\n%s", anErr, row.String(), GetTrace())
				} else {
					err = fmt.Errorf("Filter Panic: %v\nRow: %s\n%s", r, row.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Filter Error: %w\nRow: %s", err, row.String())
			}
		}()
		keep, err = filterOp(row)
		return
	}
}

// SafeKeyingOperation wraps a KeyingOperation such that panics are recovered and nice error messages are constructed
func SafeKeyingOperation(keyingOp streaming.KeyingOperation) (safeKeyingOp streaming.KeyingOperation) {
	return func(row *streaming.Row) (key []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Keying Panic: %w\nRow: %s\n%s", anErr, row.String(), GetTrace())
				} else {
					err = fmt.Errorf("Keying Panic: %v\nRow: %s\n%s", r, row.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Keying Error: %w\nRow: %s", err, row.String())
			}
		}()
		key, err = keyingOp(row)
		return
	}
}

// SafeReductionOperation wraps a ReductionOperation such that panics are recovered and nice error messages are constructed
func SafeReductionOperation(reductionOp streaming.ReductionOperation) (safeReductionOp streaming.ReductionOperation) {
	return func(lrow, rrow *streaming.Row) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Reduction Panic: %w\nLRow: %s\nRRow: %s\n%s", anErr, lrow.String(), rrow.String(), GetTrace())
				} else {
					err = fmt.Errorf("Reduction Panic: %v\nLRow: %s\nRRow: %s\n%s", r, lrow.String(), rrow.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Reduction Error: %w\nLRow: %s\nRRow: %s", err, lrow.String(), rrow.String())
			}
		}()
		err = reductionOp(lrow, rrow)
		return
	}
}

// SafeSinkOperation wraps a SinkOperation such that panics are recovered and nice error messages are constructed
func SafeSinkOperation(sinkOp streaming.SinkOperation) (safeSinkOp streaming.SinkOperation) {
	return func(row *streaming.Row) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Sink Panic: %w\nRow: %s\n%s", anErr, row.String(), GetTrace())
				} else {
					err = fmt.Errorf("Sink Panic: %v\nRow: %s\n%s", r, row.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Sink Error: %w\nRow: %s", err, row.String())
			}
		}()
		err = sinkOp(row)
		return
	}
}
