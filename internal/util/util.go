package util

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// GetTrace produces the string representation of a stack trace
func GetTrace() string {
	var name, file string
	var line int
	var pc [16]uintptr
	n := runtime.Callers(3, pc[:])
	callers := pc[:n]
	frames := runtime.CallersFrames(callers)
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		name = frame.Function
		file = frame.File
		line = frame.Line
		if !strings.HasPrefix(name, "runtime.") {
			sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", name, file, line))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// OperationName returns the symbol name of a user-supplied operation, for
// diagnostics and plan descriptions
func OperationName(op interface{}) string {
	if op == nil {
		return "<nil>"
	}
	v := reflect.ValueOf(op)
	if v.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			return fn.Name()
		}
	}
	return reflect.TypeOf(op).String()
}
