package streaming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func createTestSchema(t *testing.T) *Schema {
	schema := CreateSchema()
	_, err := schema.CreateColumn("id", Int64ColumnType)
	require.Nil(t, err)
	_, err = schema.CreateColumn("name", StringColumnType)
	require.Nil(t, err)
	_, err = schema.CreateColumn("score", Float64ColumnType)
	require.Nil(t, err)
	return schema
}

func TestSchemaEquality(t *testing.T) {
	schema1 := createTestSchema(t)
	schema2 := createTestSchema(t)
	require.Nil(t, schema1.Equals(schema2))
}

func TestSchemaEqualityDifferentTypes(t *testing.T) {
	schema1 := createTestSchema(t)
	schema2 := CreateSchema()
	_, err := schema2.CreateColumn("id", Int64ColumnType)
	require.Nil(t, err)
	_, err = schema2.CreateColumn("name", StringColumnType)
	require.Nil(t, err)
	_, err = schema2.CreateColumn("score", Int64ColumnType)
	require.Nil(t, err)
	require.NotNil(t, schema1.Equals(schema2))
}

func TestSchemaEqualityDifferentLength(t *testing.T) {
	schema1 := createTestSchema(t)
	schema2 := CreateSchema()
	_, err := schema2.CreateColumn("id", Int64ColumnType)
	require.Nil(t, err)
	require.NotNil(t, schema1.Equals(schema2))
	require.NotNil(t, schema2.Equals(schema1))
}

func TestSchemaRejectsDuplicateColumns(t *testing.T) {
	schema := createTestSchema(t)
	_, err := schema.CreateColumn("id", StringColumnType)
	require.NotNil(t, err)
}

func TestSchemaCloneIsIndependent(t *testing.T) {
	schema := createTestSchema(t)
	clone := schema.Clone()
	require.Nil(t, schema.Equals(clone))

	_, err := clone.CreateColumn("extra", BoolColumnType)
	require.Nil(t, err)
	require.Equal(t, 3, schema.NumColumns())
	require.Equal(t, 4, clone.NumColumns())
	require.NotNil(t, schema.Equals(clone))
}

func TestSchemaLookups(t *testing.T) {
	schema := createTestSchema(t)
	idx, err := schema.ColumnIndex("score")
	require.Nil(t, err)
	require.Equal(t, 2, idx)

	colType, err := schema.ColumnType(1)
	require.Nil(t, err)
	require.Equal(t, StringColumnType, colType)

	name, err := schema.ColumnName(0)
	require.Nil(t, err)
	require.Equal(t, "id", name)

	_, err = schema.ColumnIndex("missing")
	require.NotNil(t, err)
	_, err = schema.ColumnType(7)
	require.NotNil(t, err)

	require.Equal(t, []string{"id", "name", "score"}, schema.ColumnNames())
}
