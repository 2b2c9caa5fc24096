package streaming

import (
	"fmt"
	"strings"

	"github.com/apsaltis/ML-Pipelines/errors"
)

type fieldRefKind uint8

const (
	ordinalField fieldRefKind = iota
	namedField
)

// FieldRef identifies a component of a record for grouping or aggregation.
// It is either an ordinal position within a Schema, or a named expression. A
// named expression is a column name, optionally followed by a dot-path into a
// JSON column (e.g. "payload.user.id").
type FieldRef struct {
	kind    fieldRefKind
	ordinal int
	name    string
}

// Ordinal returns a FieldRef for the column at the given position
func Ordinal(pos int) FieldRef {
	return FieldRef{kind: ordinalField, ordinal: pos}
}

// Named returns a FieldRef for the given named expression
func Named(expr string) FieldRef {
	return FieldRef{kind: namedField, name: expr}
}

// ResolveFieldRef interprets a dynamically-typed field argument as a FieldRef.
// Only ordinal positions (int) and named expressions (string) are accepted;
// anything else fails with an InvalidFieldError.
func ResolveFieldRef(field interface{}) (FieldRef, error) {
	switch f := field.(type) {
	case int:
		if f < 0 {
			return FieldRef{}, errors.InvalidFieldError{Value: field}
		}
		return Ordinal(f), nil
	case string:
		if len(f) == 0 {
			return FieldRef{}, errors.InvalidFieldError{Value: field}
		}
		return Named(f), nil
	case FieldRef:
		return f, nil
	default:
		return FieldRef{}, errors.InvalidFieldError{Value: field}
	}
}

// IsNamed returns true iff this FieldRef is a named expression
func (f FieldRef) IsNamed() bool {
	return f.kind == namedField
}

// Pos returns the ordinal position of an ordinal FieldRef
func (f FieldRef) Pos() int {
	return f.ordinal
}

// Name returns the expression of a named FieldRef
func (f FieldRef) Name() string {
	return f.name
}

// ColumnName returns the leading column segment of a named expression: for
// "payload.user.id" this is "payload". Ordinal refs have no column name.
func (f FieldRef) ColumnName() string {
	if f.kind != namedField {
		return ""
	}
	if i := strings.IndexByte(f.name, '.'); i >= 0 {
		return f.name[:i]
	}
	return f.name
}

// Path returns the dot-path remainder of a named expression, or "" if the
// expression addresses a whole column.
func (f FieldRef) Path() string {
	if f.kind != namedField {
		return ""
	}
	if i := strings.IndexByte(f.name, '.'); i >= 0 {
		return f.name[i+1:]
	}
	return ""
}

// Validate confirms that this FieldRef addresses a column present in the given Schema
func (f FieldRef) Validate(schema *Schema) error {
	if f.kind == ordinalField {
		if f.ordinal >= schema.NumColumns() {
			return fmt.Errorf("ordinal %d is out of range for a %d-column Schema", f.ordinal, schema.NumColumns())
		}
		return nil
	}
	col := f.ColumnName()
	if !schema.HasColumn(col) {
		return fmt.Errorf("Schema does not contain column with name %s", col)
	}
	if f.Path() != "" {
		idx, _ := schema.ColumnIndex(col)
		colType, _ := schema.ColumnType(idx)
		if colType != JSONColumnType {
			return fmt.Errorf("column %s is not a JSON column and cannot be navigated with path %s", col, f.Path())
		}
	}
	return nil
}

// String returns a textual representation of this FieldRef
func (f FieldRef) String() string {
	if f.kind == ordinalField {
		return fmt.Sprintf("#%d", f.ordinal)
	}
	return f.name
}
