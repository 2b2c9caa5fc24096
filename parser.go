package streaming

// Parser turns a raw source record into a Row conforming to a Schema
type Parser interface {
	Parse(data []byte, schema *Schema) (*Row, error)
}
