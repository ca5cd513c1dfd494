package dirsql

import (
	"fmt"
	"strconv"
)

// encodeValue renders a typed value to its canonical text form: plain
// decimal for numeric kinds, the raw string for text. Kinds beyond
// numeric/text surface ErrUnsupportedKind instead of silently losing
// data.
func encodeValue(v Value) (string, error) {
	switch v.Kind() {
	case KindInteger:
		return strconv.FormatInt(v.Int(), 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case KindText:
		return v.Text(), nil
	default:
		return "", fmt.Errorf("value kind %d: %w", v.Kind(), ErrUnsupportedKind)
	}
}

// encodeRow renders every value of a row to text fields in order
func encodeRow(row Row) ([]string, error) {
	fields := make([]string, len(row))
	for i, v := range row {
		field, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		fields[i] = field
	}
	return fields, nil
}

// decodeField parses one raw field as the column's inferred type.
// Failure is a legitimate runtime condition: schema inference and data
// decoding are two independent reads of the file with no snapshot
// between them, so the content may have changed in between.
func decodeField(field string, ct ColumnType) (Value, error) {
	switch ct {
	case ColumnTypeInteger:
		i, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q as %s: %w", field, ct, ErrValueParse)
		}
		return IntegerValue(i), nil
	case ColumnTypeFloat:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q as %s: %w", field, ct, ErrValueParse)
		}
		return FloatValue(f), nil
	default:
		return TextValue(field), nil
	}
}

// decodeRow parses raw fields against the schema's column types, keyed
// by position.
func decodeRow(fields []string, schema Schema) (Row, error) {
	if len(fields) != len(schema.Columns) {
		return nil, fmt.Errorf("%d fields against %d columns: %w",
			len(fields), len(schema.Columns), ErrMalformedRecord)
	}
	row := make(Row, len(fields))
	for i, field := range fields {
		v, err := decodeField(field, schema.Columns[i].Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", schema.Columns[i].Name, err)
		}
		row[i] = v
	}
	return row, nil
}
