// Package jsonl parses JSON lines records into Rows. Columns are drawn lazily
// from each record with a gjson path equal to the column name; values which do
// not correspond to a Schema column are ignored.
package jsonl

import (
	"fmt"

	"github.com/tidwall/gjson"

	streaming "github.com/apsaltis/ML-Pipelines"
)

// ParserConf configures a JSONL Parser
type ParserConf struct {
	// Strict causes records missing a Schema column to fail parsing. When
	// false, missing columns keep their zero value.
	Strict bool
}

// Parser produces Rows from JSONL records
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser
func CreateParser(conf *ParserConf) *Parser {
	if conf == nil {
		conf = &ParserConf{}
	}
	return &Parser{conf: conf}
}

// Parse parses a single JSONL record into a Row
func (p *Parser) Parse(data []byte, schema *streaming.Schema) (*streaming.Row, error) {
	row := streaming.CreateRow(schema)
	err := schema.ForEachColumn(func(name string, idx int, colType streaming.ColumnType) error {
		result := gjson.GetBytes(data, name)
		if !result.Exists() {
			if p.conf.Strict {
				return fmt.Errorf("record is missing column %s", name)
			}
			return nil
		}
		return parseValue(result, name, colType, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func parseValue(val gjson.Result, colName string, colType streaming.ColumnType, row *streaming.Row) error {
	switch colType {
	case streaming.BoolColumnType:
		if !val.IsBool() {
			return fmt.Errorf("Column %s was not a boolean. Was: %s", colName, val.Raw)
		}
		return row.SetBool(colName, val.Bool())
	case streaming.Int64ColumnType:
		if val.Type != gjson.Number {
			return fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
		}
		return row.SetInt64(colName, val.Int())
	case streaming.Float64ColumnType:
		if val.Type != gjson.Number {
			return fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
		}
		return row.SetFloat64(colName, val.Float())
	case streaming.StringColumnType:
		if val.Type != gjson.String {
			return fmt.Errorf("Column %s was not a string. Was: %s", colName, val.Raw)
		}
		return row.SetString(colName, val.String())
	case streaming.JSONColumnType:
		return row.SetJSON(colName, val.Raw)
	default:
		return fmt.Errorf("Column %s has unknown type %s", colName, colType)
	}
}
