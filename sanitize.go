package streaming

import (
	"encoding/gob"
	"fmt"
	"io"
	"reflect"

	"github.com/hashicorp/go-multierror"

	"github.com/apsaltis/ML-Pipelines/errors"
)

// Sanitize validates that a user-supplied operation is safe to transfer to a
// remote execution context, returning it unmodified on success. Go operations
// cannot be rewritten the way closure bytecode can, so operations carry their
// state explicitly: a plain function, or a value whose fields hold the state
// shipped with it. Sanitize walks that state and rejects handles which cannot
// cross the client/runtime boundary (channels, nested functions, unsafe
// pointers). When verify is true, non-function state is additionally probed
// against the wire encoder, so an encoding failure surfaces now, at
// graph-construction time, rather than asynchronously at execution time.
func Sanitize(op interface{}, verify bool) (interface{}, error) {
	if op == nil {
		return nil, errors.NotTransferableError{Reason: fmt.Errorf("operation is nil")}
	}
	v := reflect.ValueOf(op)
	var merr *multierror.Error
	walkTransferable(v, "operation", 0, make(map[uintptr]bool), &merr)
	if err := merr.ErrorOrNil(); err != nil {
		return nil, errors.NotTransferableError{Reason: err}
	}
	if verify && v.Kind() != reflect.Func {
		if err := gob.NewEncoder(io.Discard).Encode(op); err != nil {
			return nil, errors.NotTransferableError{Reason: fmt.Errorf("operation state cannot be encoded for transfer: %w", err)}
		}
	}
	return op, nil
}

// walkTransferable recursively inspects a value for handles which cannot be
// transferred. Functions are permitted only at the top level, where they are
// the operation itself, shipped by symbol.
func walkTransferable(v reflect.Value, path string, depth int, seen map[uintptr]bool, merr **multierror.Error) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Chan:
		*merr = multierror.Append(*merr, fmt.Errorf("%s holds a channel", path))
	case reflect.UnsafePointer:
		*merr = multierror.Append(*merr, fmt.Errorf("%s holds an unsafe pointer", path))
	case reflect.Func:
		if depth > 0 {
			*merr = multierror.Append(*merr, fmt.Errorf("%s holds a captured function", path))
		}
	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return
		}
		seen[ptr] = true
		walkTransferable(v.Elem(), path, depth+1, seen, merr)
	case reflect.Interface:
		if !v.IsNil() {
			walkTransferable(v.Elem(), path, depth, seen, merr)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			name := v.Type().Field(i).Name
			walkTransferable(v.Field(i), fmt.Sprintf("%s.%s", path, name), depth+1, seen, merr)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walkTransferable(v.Index(i), fmt.Sprintf("%s[%d]", path, i), depth+1, seen, merr)
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			walkTransferable(iter.Value(), fmt.Sprintf("%s[%v]", path, iter.Key()), depth+1, seen, merr)
		}
	}
}
