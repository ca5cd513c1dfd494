package dirsql

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// readSchema scans a table's entire backing file once and returns its
// schema: header names taken verbatim, and for each column position the
// widest type observed among its values. A file with a header but no
// data rows infers Integer for every column; that is the identity of the
// widening fold, not a meaningful statement about the data.
func readSchema(name TableName, csvPath string) (Schema, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Schema{}, fmt.Errorf("%q: %w", csvPath, ErrMissingFile)
		}
		return Schema{}, fmt.Errorf("open %q: %w", csvPath, err)
	}
	defer f.Close()

	header, types, err := inferColumns(f)
	if err != nil {
		return Schema{}, fmt.Errorf("infer schema of %q: %w", csvPath, err)
	}

	columns := make([]Column, len(header))
	for i, colName := range header {
		columns[i] = Column{Name: colName, Type: types[i]}
	}
	return Schema{Name: name, Columns: columns}, nil
}

// inferColumns reads exactly one header row followed by every data row,
// folding each column's type upward from Integer as values are observed.
func inferColumns(r io.Reader) ([]string, []ColumnType, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("missing header row: %w", ErrMalformedRecord)
		}
		return nil, nil, wrapCSVError(err)
	}

	types := make([]ColumnType, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, wrapCSVError(err)
		}
		for i, value := range record {
			types[i] = types[i].widen(minColumnType(value))
		}
	}
	return header, types, nil
}

// wrapCSVError maps encoding/csv parse failures (ragged rows, broken
// quoting) onto ErrMalformedRecord, keeping the parser's position detail
// in the message.
func wrapCSVError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%v: %w", err, ErrMalformedRecord)
	}
	return err
}
