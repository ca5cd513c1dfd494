package dirsql

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCSVFile writes content as a table file under dir and returns its path
func writeCSVFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSchema(t *testing.T) {
	t.Parallel()

	tableName, err := NewTableName("t")
	require.NoError(t, err)

	t.Run("Every column at its widest observed type", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"id,price,label\n1,2.5,beans\n2,3,rice\n")

		schema, err := readSchema(tableName, path)
		require.NoError(t, err)
		require.Len(t, schema.Columns, 3)
		assert.Equal(t, Column{Name: "id", Type: ColumnTypeInteger}, schema.Columns[0])
		assert.Equal(t, Column{Name: "price", Type: ColumnTypeFloat}, schema.Columns[1])
		assert.Equal(t, Column{Name: "label", Type: ColumnTypeText}, schema.Columns[2])
	})

	t.Run("Single text value widens the whole column", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"n\n1\n2\nthree\n4\n")

		schema, err := readSchema(tableName, path)
		require.NoError(t, err)
		assert.Equal(t, ColumnTypeText, schema.Columns[0].Type)
	})

	t.Run("Float never narrows back to integer", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"n\n1.5\n2\n3\n")

		schema, err := readSchema(tableName, path)
		require.NoError(t, err)
		assert.Equal(t, ColumnTypeFloat, schema.Columns[0].Type)
	})

	t.Run("Header only infers integer everywhere", func(t *testing.T) {
		t.Parallel()

		// The widening fold starts at Integer, so a table with no data
		// rows reports Integer for every column.
		path := writeCSVFile(t, t.TempDir(), "t.csv", "id,name\n")

		schema, err := readSchema(tableName, path)
		require.NoError(t, err)
		assert.Equal(t, ColumnTypeInteger, schema.Columns[0].Type)
		assert.Equal(t, ColumnTypeInteger, schema.Columns[1].Type)
	})

	t.Run("Header names kept verbatim in order", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"B column, A ,x\n1,2,3\n")

		schema, err := readSchema(tableName, path)
		require.NoError(t, err)
		assert.Equal(t, "B column", schema.Columns[0].Name)
		assert.Equal(t, " A ", schema.Columns[1].Name)
		assert.Equal(t, "x", schema.Columns[2].Name)
	})

	t.Run("Idempotent on an unchanged file", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"id,v\n1,2.5\n2,x\n")

		first, err := readSchema(tableName, path)
		require.NoError(t, err)
		second, err := readSchema(tableName, path)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Ragged row", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"a,b\n1,2\n3\n")

		_, err := readSchema(tableName, path)
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("Broken quoting", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv",
			"a,b\n\"open,2\n")

		_, err := readSchema(tableName, path)
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("Empty file has no header", func(t *testing.T) {
		t.Parallel()

		path := writeCSVFile(t, t.TempDir(), "t.csv", "")

		_, err := readSchema(tableName, path)
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("Missing file", func(t *testing.T) {
		t.Parallel()

		_, err := readSchema(tableName, filepath.Join(t.TempDir(), "ghost.csv"))
		assert.ErrorIs(t, err, ErrMissingFile)
	})
}

func TestMinColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    string
		expected ColumnType
	}{
		{name: "Integer", value: "42", expected: ColumnTypeInteger},
		{name: "Negative integer", value: "-7", expected: ColumnTypeInteger},
		{name: "Float", value: "2.5", expected: ColumnTypeFloat},
		{name: "Scientific float", value: "1e10", expected: ColumnTypeFloat},
		{name: "Text", value: "beans", expected: ColumnTypeText},
		{name: "Empty string", value: "", expected: ColumnTypeText},
		{name: "Integer too large for int64", value: "9223372036854775808", expected: ColumnTypeFloat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, minColumnType(tt.value))
		})
	}
}

func TestColumnType_Widen(t *testing.T) {
	t.Parallel()

	// Widening is monotonic along Integer < Float < Text.
	assert.Equal(t, ColumnTypeFloat, ColumnTypeInteger.widen(ColumnTypeFloat))
	assert.Equal(t, ColumnTypeFloat, ColumnTypeFloat.widen(ColumnTypeInteger))
	assert.Equal(t, ColumnTypeText, ColumnTypeFloat.widen(ColumnTypeText))
	assert.Equal(t, ColumnTypeText, ColumnTypeText.widen(ColumnTypeInteger))
	assert.Equal(t, ColumnTypeInteger, ColumnTypeInteger.widen(ColumnTypeInteger))
}
