package dirsql

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// OutputFormat represents the file format Dump writes
type OutputFormat int

const (
	// OutputFormatCSV writes delimited text files
	OutputFormatCSV OutputFormat = iota
	// OutputFormatXLSX writes Excel workbooks
	OutputFormatXLSX
	// OutputFormatParquet writes Apache Parquet files
	OutputFormatParquet
)

// Output format extensions
const (
	extXLSX    = ".xlsx"
	extParquet = ".parquet"
)

// xlsxSheetName is the single sheet each dumped workbook contains
const xlsxSheetName = "Sheet1"

// String returns the format name
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatXLSX:
		return "xlsx"
	case OutputFormatParquet:
		return "parquet"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatXLSX:
		return extXLSX
	case OutputFormatParquet:
		return extParquet
	default:
		return extCSV
	}
}

// DumpOptions configures Dump output. Compression applies to CSV only;
// XLSX and Parquet carry their own internal compression.
type DumpOptions struct {
	// Format is the output file format
	Format OutputFormat
	// Compression is the compression applied to CSV output
	Compression CompressionType
}

// NewDumpOptions creates DumpOptions with defaults: CSV, no compression
func NewDumpOptions() DumpOptions {
	return DumpOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat returns a copy with the output format set
func (o DumpOptions) WithFormat(format OutputFormat) DumpOptions {
	o.Format = format
	return o
}

// WithCompression returns a copy with the CSV compression set
func (o DumpOptions) WithCompression(compression CompressionType) DumpOptions {
	o.Compression = compression
	return o
}

// fileExtension returns the combined format plus compression extension
func (o DumpOptions) fileExtension() string {
	if o.Format == OutputFormatCSV {
		return o.Format.Extension() + o.Compression.Extension()
	}
	return o.Format.Extension()
}

// Dump exports every table in the namespace into outputDir, mirroring
// the namespace hierarchy as subdirectories. Without options it writes
// plain CSV.
func (s *Store) Dump(outputDir string, opts ...DumpOptions) error {
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return s.dumpNamespace(TableName{}, outputDir, options)
}

// dumpNamespace recursively exports the tables below dir
func (s *Store) dumpNamespace(dir TableName, outputDir string, options DumpOptions) error {
	nodes, err := s.ListTables(dir)
	if err != nil {
		return err
	}

	for _, node := range nodes {
		switch node.Kind {
		case NodeNamespace:
			subDir := filepath.Join(outputDir, node.Name.Last())
			if err := os.MkdirAll(subDir, 0o755); err != nil {
				return fmt.Errorf("create output subdirectory: %w", err)
			}
			if err := s.dumpNamespace(node.Name, subDir, options); err != nil {
				return err
			}
		case NodeTable:
			outputPath := filepath.Join(outputDir, node.Name.Last()+options.fileExtension())
			if err := s.dumpTable(*node.Schema, outputPath, options); err != nil {
				return err
			}
		}
	}
	return nil
}

// dumpTable exports one table to outputPath in the configured format
func (s *Store) dumpTable(schema Schema, outputPath string, options DumpOptions) error {
	s.logger.Debug("dump table",
		zap.String("table", schema.Name.String()),
		zap.String("output", outputPath),
		zap.String("format", options.Format.String()))

	scanner, err := s.ScanRows(schema.Name)
	if err != nil {
		return err
	}
	defer scanner.Close()

	switch options.Format {
	case OutputFormatXLSX:
		return dumpXLSX(schema, scanner, outputPath)
	case OutputFormatParquet:
		return dumpParquet(schema, scanner, outputPath)
	default:
		return dumpCSV(schema, scanner, outputPath, options.Compression)
	}
}

// dumpCSV writes header plus rows as delimited text, optionally compressed
func dumpCSV(schema Schema, scanner *RowScanner, outputPath string, compression CompressionType) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", outputPath, err)
	}
	defer f.Close()

	writer, closeCompressor, err := newCompressedWriter(f, compression)
	if err != nil {
		return err
	}
	compressorClosed := false
	defer func() {
		if !compressorClosed {
			_ = closeCompressor()
		}
	}()

	w := csv.NewWriter(writer)
	header := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header to %q: %w", outputPath, err)
	}

	for scanner.Next() {
		_, row := scanner.Row()
		fields, err := encodeRow(row)
		if err != nil {
			return err
		}
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("write row to %q: %w", outputPath, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", outputPath, err)
	}
	compressorClosed = true
	if err := closeCompressor(); err != nil {
		return fmt.Errorf("close compressor for %q: %w", outputPath, err)
	}
	return f.Close()
}

// dumpXLSX writes header plus rows as a single-sheet Excel workbook
func dumpXLSX(schema Schema, scanner *RowScanner, outputPath string) error {
	file := excelize.NewFile()
	defer file.Close()

	header := make([]any, len(schema.Columns))
	for i, col := range schema.Columns {
		header[i] = col.Name
	}
	if err := file.SetSheetRow(xlsxSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header sheet row: %w", err)
	}

	// Sheet rows are 1-based and row 1 is the header.
	sheetRow := 2
	for scanner.Next() {
		_, row := scanner.Row()
		cells := make([]any, len(row))
		for i, v := range row {
			switch v.Kind() {
			case KindInteger:
				cells[i] = v.Int()
			case KindFloat:
				cells[i] = v.Float()
			default:
				cells[i] = v.Text()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, sheetRow)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", sheetRow, err)
		}
		if err := file.SetSheetRow(xlsxSheetName, cell, &cells); err != nil {
			return fmt.Errorf("write sheet row %d: %w", sheetRow, err)
		}
		sheetRow++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := file.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save %q: %w", outputPath, err)
	}
	return nil
}

// parquetChunkSize is the row-group size for dumped parquet files
const parquetChunkSize = 1024

// dumpParquet writes the table as a Parquet file through Arrow
func dumpParquet(schema Schema, scanner *RowScanner, outputPath string) error {
	fields := make([]arrow.Field, len(schema.Columns))
	for i, col := range schema.Columns {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowType(col.Type)}
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema)
	defer builder.Release()

	for scanner.Next() {
		_, row := scanner.Row()
		for i, v := range row {
			switch v.Kind() {
			case KindInteger:
				builder.Field(i).(*array.Int64Builder).Append(v.Int())
			case KindFloat:
				builder.Field(i).(*array.Float64Builder).Append(v.Float())
			default:
				builder.Field(i).(*array.StringBuilder).Append(v.Text())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(arrowSchema, []arrow.Record{record})
	defer table.Release()

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", outputPath, err)
	}
	defer f.Close()

	if err := pqarrow.WriteTable(table, f, parquetChunkSize,
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("write parquet %q: %w", outputPath, err)
	}
	return f.Close()
}

// arrowType maps a column type onto its Arrow equivalent
func arrowType(ct ColumnType) arrow.DataType {
	switch ct {
	case ColumnTypeInteger:
		return arrow.PrimitiveTypes.Int64
	case ColumnTypeFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}
