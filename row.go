package streaming

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Row is a single record flowing through a stream: positional values laid out
// according to a Schema. Rows are handed to user operations, which may read
// and manipulate them through typed accessors.
type Row struct {
	schema *Schema
	values []interface{}
}

// CreateRow produces a fresh Row with zero values for the given Schema
func CreateRow(schema *Schema) *Row {
	return &Row{schema: schema, values: make([]interface{}, schema.NumColumns())}
}

// Schema returns the Schema of this Row
func (r *Row) Schema() *Schema {
	return r.schema
}

// Clone returns a copy of this Row. Values are copied shallowly, which is safe
// because column values are immutable scalars or JSON documents replaced wholesale.
func (r *Row) Clone() *Row {
	clone := &Row{schema: r.schema, values: make([]interface{}, len(r.values))}
	copy(clone.values, r.values)
	return clone
}

// CopyFrom replaces every value in this Row with the values of another Row of the same Schema
func (r *Row) CopyFrom(o *Row) error {
	if err := r.schema.Equals(o.schema); err != nil {
		return err
	}
	copy(r.values, o.values)
	return nil
}

func (r *Row) colIndex(colName string) (int, error) {
	return r.schema.ColumnIndex(colName)
}

func (r *Row) getTyped(colName string, expected ColumnType) (interface{}, error) {
	i, err := r.colIndex(colName)
	if err != nil {
		return nil, err
	}
	if r.schema.types[i] != expected {
		return nil, fmt.Errorf("column %s is of type %s, not %s", colName, r.schema.types[i], expected)
	}
	return r.values[i], nil
}

func (r *Row) setTyped(colName string, expected ColumnType, value interface{}) error {
	i, err := r.colIndex(colName)
	if err != nil {
		return err
	}
	if r.schema.types[i] != expected {
		return fmt.Errorf("column %s is of type %s, not %s", colName, r.schema.types[i], expected)
	}
	r.values[i] = value
	return nil
}

// GetInt64 retrieves a value from an Int64 column
func (r *Row) GetInt64(colName string) (int64, error) {
	v, err := r.getTyped(colName, Int64ColumnType)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return v.(int64), nil
}

// SetInt64 stores a value in an Int64 column
func (r *Row) SetInt64(colName string, value int64) error {
	return r.setTyped(colName, Int64ColumnType, value)
}

// GetFloat64 retrieves a value from a Float64 column
func (r *Row) GetFloat64(colName string) (float64, error) {
	v, err := r.getTyped(colName, Float64ColumnType)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return v.(float64), nil
}

// SetFloat64 stores a value in a Float64 column
func (r *Row) SetFloat64(colName string, value float64) error {
	return r.setTyped(colName, Float64ColumnType, value)
}

// GetString retrieves a value from a String column
func (r *Row) GetString(colName string) (string, error) {
	v, err := r.getTyped(colName, StringColumnType)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return v.(string), nil
}

// SetString stores a value in a String column
func (r *Row) SetString(colName string, value string) error {
	return r.setTyped(colName, StringColumnType, value)
}

// GetBool retrieves a value from a Bool column
func (r *Row) GetBool(colName string) (bool, error) {
	v, err := r.getTyped(colName, BoolColumnType)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	return v.(bool), nil
}

// SetBool stores a value in a Bool column
func (r *Row) SetBool(colName string, value bool) error {
	return r.setTyped(colName, BoolColumnType, value)
}

// GetJSON retrieves the raw document from a JSON column
func (r *Row) GetJSON(colName string) (string, error) {
	v, err := r.getTyped(colName, JSONColumnType)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return v.(string), nil
}

// SetJSON stores a raw document in a JSON column
func (r *Row) SetJSON(colName string, doc string) error {
	return r.setTyped(colName, JSONColumnType, doc)
}

// Get retrieves the value addressed by a FieldRef. Values within JSON columns
// are resolved with a gjson path and surface as float64, string or bool.
func (r *Row) Get(ref FieldRef) (interface{}, error) {
	if !ref.IsNamed() {
		if ref.Pos() >= len(r.values) {
			return nil, fmt.Errorf("ordinal %d is out of range for a %d-column Row", ref.Pos(), len(r.values))
		}
		return r.values[ref.Pos()], nil
	}
	i, err := r.colIndex(ref.ColumnName())
	if err != nil {
		return nil, err
	}
	if ref.Path() == "" {
		return r.values[i], nil
	}
	if r.schema.types[i] != JSONColumnType {
		return nil, fmt.Errorf("column %s is not a JSON column and cannot be navigated with path %s", ref.ColumnName(), ref.Path())
	}
	doc, _ := r.values[i].(string)
	result := gjson.Get(doc, ref.Path())
	if !result.Exists() {
		return nil, fmt.Errorf("path %s does not exist in column %s", ref.Path(), ref.ColumnName())
	}
	switch result.Type {
	case gjson.Number:
		return result.Float(), nil
	case gjson.True, gjson.False:
		return result.Bool(), nil
	default:
		return result.String(), nil
	}
}

// Set stores a value at the column addressed by a FieldRef. Paths into JSON
// documents cannot be assigned.
func (r *Row) Set(ref FieldRef, value interface{}) error {
	if !ref.IsNamed() {
		if ref.Pos() >= len(r.values) {
			return fmt.Errorf("ordinal %d is out of range for a %d-column Row", ref.Pos(), len(r.values))
		}
		r.values[ref.Pos()] = value
		return nil
	}
	if ref.Path() != "" {
		return fmt.Errorf("cannot assign into JSON path %s", ref.Name())
	}
	i, err := r.colIndex(ref.ColumnName())
	if err != nil {
		return err
	}
	r.values[i] = value
	return nil
}

// String returns a textual representation of this Row
func (r *Row) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range r.schema.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", name, r.values[i])
	}
	sb.WriteByte('}')
	return sb.String()
}
