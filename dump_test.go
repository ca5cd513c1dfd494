package dirsql

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

func TestDumpOptions(t *testing.T) {
	t.Parallel()

	t.Run("Defaults to plain CSV", func(t *testing.T) {
		t.Parallel()

		opts := NewDumpOptions()
		assert.Equal(t, OutputFormatCSV, opts.Format)
		assert.Equal(t, CompressionNone, opts.Compression)
		assert.Equal(t, ".csv", opts.fileExtension())
	})

	t.Run("Compression extension stacks on CSV only", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, ".csv.gz", NewDumpOptions().WithCompression(CompressionGZ).fileExtension())
		assert.Equal(t, ".csv.xz", NewDumpOptions().WithCompression(CompressionXZ).fileExtension())
		assert.Equal(t, ".csv.zst", NewDumpOptions().WithCompression(CompressionZSTD).fileExtension())
		assert.Equal(t, ".xlsx",
			NewDumpOptions().WithFormat(OutputFormatXLSX).WithCompression(CompressionGZ).fileExtension())
		assert.Equal(t, ".parquet",
			NewDumpOptions().WithFormat(OutputFormatParquet).fileExtension())
	})
}

func TestStore_Dump(t *testing.T) {
	t.Parallel()

	t.Run("CSV mirrors the namespace hierarchy", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		writeCSVFile(t, root, "users.csv", "id,name\n1,Alice\n2,Bob\n")
		require.NoError(t, os.MkdirAll(filepath.Join(root, "sales"), 0o755))
		writeCSVFile(t, filepath.Join(root, "sales"), "orders.csv", "id,total\n1,19.99\n")

		outputDir := t.TempDir()
		require.NoError(t, store.Dump(outputDir))

		content, err := os.ReadFile(filepath.Join(outputDir, "users.csv"))
		require.NoError(t, err)
		assert.Equal(t, "id,name\n1,Alice\n2,Bob\n", string(content))

		content, err = os.ReadFile(filepath.Join(outputDir, "sales", "orders.csv"))
		require.NoError(t, err)
		assert.Equal(t, "id,total\n1,19.99\n", string(content))
	})

	t.Run("Gzip output decompresses to the original CSV", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		writeCSVFile(t, root, "t.csv", "id,name\n1,Alice\n")

		outputDir := t.TempDir()
		require.NoError(t, store.Dump(outputDir, NewDumpOptions().WithCompression(CompressionGZ)))

		f, err := os.Open(filepath.Join(outputDir, "t.csv.gz"))
		require.NoError(t, err)
		defer f.Close()

		gz, err := gzip.NewReader(f)
		require.NoError(t, err)
		defer gz.Close()

		content, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, "id,name\n1,Alice\n", string(content))
	})

	t.Run("Xz output decompresses to the original CSV", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		writeCSVFile(t, root, "t.csv", "id\n1\n")

		outputDir := t.TempDir()
		require.NoError(t, store.Dump(outputDir, NewDumpOptions().WithCompression(CompressionXZ)))

		compressed, err := os.ReadFile(filepath.Join(outputDir, "t.csv.xz"))
		require.NoError(t, err)

		xzReader, err := xz.NewReader(bytes.NewReader(compressed))
		require.NoError(t, err)
		content, err := io.ReadAll(xzReader)
		require.NoError(t, err)
		assert.Equal(t, "id\n1\n", string(content))
	})

	t.Run("Zstd output decompresses to the original CSV", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		writeCSVFile(t, root, "t.csv", "id\n1\n")

		outputDir := t.TempDir()
		require.NoError(t, store.Dump(outputDir, NewDumpOptions().WithCompression(CompressionZSTD)))

		compressed, err := os.ReadFile(filepath.Join(outputDir, "t.csv.zst"))
		require.NoError(t, err)

		zstdReader, err := zstd.NewReader(bytes.NewReader(compressed))
		require.NoError(t, err)
		defer zstdReader.Close()

		content, err := io.ReadAll(zstdReader)
		require.NoError(t, err)
		assert.Equal(t, "id\n1\n", string(content))
	})

	t.Run("XLSX output reads back through excelize", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		writeCSVFile(t, root, "t.csv", "id,name\n1,Alice\n2,Bob\n")

		outputDir := t.TempDir()
		require.NoError(t, store.Dump(outputDir, NewDumpOptions().WithFormat(OutputFormatXLSX)))

		workbook, err := excelize.OpenFile(filepath.Join(outputDir, "t.xlsx"))
		require.NoError(t, err)
		defer workbook.Close()

		rows, err := workbook.GetRows(xlsxSheetName)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"id", "name"}, rows[0])
		assert.Equal(t, []string{"1", "Alice"}, rows[1])
		assert.Equal(t, []string{"2", "Bob"}, rows[2])
	})

	t.Run("Parquet output carries the magic bytes", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		writeCSVFile(t, root, "t.csv", "id,score\n1,2.5\n2,7.25\n")

		outputDir := t.TempDir()
		require.NoError(t, store.Dump(outputDir, NewDumpOptions().WithFormat(OutputFormatParquet)))

		content, err := os.ReadFile(filepath.Join(outputDir, "t.parquet"))
		require.NoError(t, err)
		require.Greater(t, len(content), 8)
		assert.Equal(t, "PAR1", string(content[:4]))
		assert.Equal(t, "PAR1", string(content[len(content)-4:]))
	})

	t.Run("Scan failure mid-dump surfaces the record error", func(t *testing.T) {
		t.Parallel()

		// The file turns ragged after schema inference; the dump must
		// return the scan error, releasing the compressor on the way out.
		dir := t.TempDir()
		path := writeCSVFile(t, dir, "t.csv", "id\n1\nbad,row\n")

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		reader := csv.NewReader(f)
		_, err = reader.Read()
		require.NoError(t, err)

		name := mustName(t, "t")
		schema := Schema{Name: name, Columns: []Column{{Name: "id", Type: ColumnTypeInteger}}}
		scanner := &RowScanner{name: name, schema: schema, file: f, reader: reader, ordinal: -1}

		err = dumpCSV(schema, scanner, filepath.Join(dir, "out.csv.gz"), CompressionGZ)
		assert.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("Missing root fails", func(t *testing.T) {
		t.Parallel()

		store, root := newTestStore(t)
		require.NoError(t, os.RemoveAll(root))

		err := store.Dump(t.TempDir())
		assert.ErrorIs(t, err, ErrMissingFile)
	})
}
