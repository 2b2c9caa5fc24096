package streaming

import (
	"fmt"
)

// ColumnType describes the type of a column within a Schema
type ColumnType string

const (
	// Int64ColumnType indicates that a column stores a 64-bit integer
	Int64ColumnType ColumnType = "int64"
	// Float64ColumnType indicates that a column stores a 64-bit float
	Float64ColumnType ColumnType = "float64"
	// StringColumnType indicates that a column stores a string
	StringColumnType ColumnType = "string"
	// BoolColumnType indicates that a column stores a boolean
	BoolColumnType ColumnType = "bool"
	// JSONColumnType indicates that a column stores a variable-length JSON document,
	// navigable with dot-path expressions in a FieldRef
	JSONColumnType ColumnType = "json"
)

// Schema is the element type descriptor for a stream: an ordered mapping from
// column names to ColumnTypes. A Schema is fixed once attached to a node and is
// cloned, never mutated, by transformations which alter element type.
type Schema struct {
	names []string
	types []ColumnType
	index map[string]int
}

// CreateSchema is a factory for Schemas
func CreateSchema() *Schema {
	return &Schema{index: make(map[string]int)}
}

// CreateColumn defines a new column within the Schema, returning the Schema for chaining
func (s *Schema) CreateColumn(colName string, colType ColumnType) (*Schema, error) {
	if _, exists := s.index[colName]; exists {
		return nil, fmt.Errorf("Schema already contains column with name %s", colName)
	}
	s.index[colName] = len(s.names)
	s.names = append(s.names, colName)
	s.types = append(s.types, colType)
	return s, nil
}

// Clone returns a copy of this Schema
func (s *Schema) Clone() *Schema {
	clone := CreateSchema()
	for i, name := range s.names {
		clone.index[name] = i
	}
	clone.names = append(clone.names, s.names...)
	clone.types = append(clone.types, s.types...)
	return clone
}

// Equals returns nil iff this and another Schema are equivalent
func (s *Schema) Equals(other *Schema) error {
	if other == nil {
		return fmt.Errorf("other Schema is nil")
	}
	if len(s.names) != len(other.names) {
		return fmt.Errorf("Schemas have unequal numbers of columns")
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return fmt.Errorf("Column %d names do not match: %s vs %s", i, name, other.names[i])
		}
		if other.types[i] != s.types[i] {
			return fmt.Errorf("Column %s types do not match: %s vs %s", name, s.types[i], other.types[i])
		}
	}
	return nil
}

// NumColumns returns the number of columns in this Schema
func (s *Schema) NumColumns() int {
	return len(s.names)
}

// HasColumn returns true iff this Schema contains a column with the given name
func (s *Schema) HasColumn(colName string) bool {
	_, ok := s.index[colName]
	return ok
}

// ColumnIndex returns the ordinal position of a named column
func (s *Schema) ColumnIndex(colName string) (int, error) {
	i, ok := s.index[colName]
	if !ok {
		return -1, fmt.Errorf("Schema does not contain column with name %s", colName)
	}
	return i, nil
}

// ColumnName returns the name of the column at the given ordinal position
func (s *Schema) ColumnName(i int) (string, error) {
	if i < 0 || i >= len(s.names) {
		return "", fmt.Errorf("Schema does not contain column with ordinal %d", i)
	}
	return s.names[i], nil
}

// ColumnType returns the type of the column at the given ordinal position
func (s *Schema) ColumnType(i int) (ColumnType, error) {
	if i < 0 || i >= len(s.types) {
		return "", fmt.Errorf("Schema does not contain column with ordinal %d", i)
	}
	return s.types[i], nil
}

// ColumnNames returns the names in this Schema, in ordinal order
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// ColumnTypes returns the types in this Schema, in ordinal order
func (s *Schema) ColumnTypes() []ColumnType {
	types := make([]ColumnType, len(s.types))
	copy(types, s.types)
	return types
}

// ForEachColumn iterates over the columns in this Schema, in ordinal order
func (s *Schema) ForEachColumn(fn func(name string, idx int, colType ColumnType) error) error {
	for i, name := range s.names {
		if err := fn(name, i, s.types[i]); err != nil {
			return err
		}
	}
	return nil
}
