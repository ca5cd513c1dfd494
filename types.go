package dirsql

import (
	"strconv"
)

// ColumnType represents the inferred storage type of a column. The
// values are totally ordered by generality: Integer < Float < Text.
type ColumnType int

const (
	// ColumnTypeInteger represents a 64-bit signed integer column
	ColumnTypeInteger ColumnType = iota
	// ColumnTypeFloat represents a 64-bit floating point column
	ColumnTypeFloat
	// ColumnTypeText represents a text column
	ColumnTypeText
)

// SQL type names used by the query bridge
const (
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
	sqlTypeText    = "TEXT"
)

// String returns the SQL type name for the column type
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeFloat:
		return sqlTypeReal
	default:
		return sqlTypeText
	}
}

// widen returns the more general of two column types
func (ct ColumnType) widen(other ColumnType) ColumnType {
	if other > ct {
		return other
	}
	return ct
}

// minColumnType returns the strictest column type able to represent value
func minColumnType(value string) ColumnType {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return ColumnTypeInteger
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return ColumnTypeFloat
	}
	return ColumnTypeText
}

// Column is one named, typed column of a schema
type Column struct {
	// Name is the column name, taken verbatim from the header row
	Name string
	// Type is the inferred column type
	Type ColumnType
}

// Schema is a table name plus its ordered column list. Schemas are
// recomputed from file content on every read, never cached.
type Schema struct {
	// Name identifies the table the schema belongs to
	Name TableName
	// Columns lists the table's columns in header order. Duplicate names
	// are permitted but make downstream column addressing undefined.
	Columns []Column
}

// ValueKind discriminates the kinds a Value can hold
type ValueKind int

const (
	// KindInteger marks an integer value
	KindInteger ValueKind = iota
	// KindFloat marks a floating point value
	KindFloat
	// KindText marks a text value
	KindText
)

// Value is one typed cell of a row. Only numeric and text kinds exist;
// the codec surfaces a capability error for anything else.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

// IntegerValue creates an integer Value
func IntegerValue(v int64) Value {
	return Value{kind: KindInteger, i: v}
}

// FloatValue creates a floating point Value
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, f: v}
}

// TextValue creates a text Value
func TextValue(v string) Value {
	return Value{kind: KindText, s: v}
}

// Kind returns the value's kind
func (v Value) Kind() ValueKind {
	return v.kind
}

// Int returns the integer payload; meaningful only for KindInteger
func (v Value) Int() int64 {
	return v.i
}

// Float returns the floating point payload; meaningful only for KindFloat
func (v Value) Float() float64 {
	return v.f
}

// Text returns the text payload; meaningful only for KindText
func (v Value) Text() string {
	return v.s
}

// Row is an ordered list of typed values. Rows are addressed by a
// zero-based ordinal among data rows, recomputed on every scan and never
// persisted.
type Row []Value

// KeyedRow pairs a row with the explicit data-row ordinal it targets
// during keyed insertion.
type KeyedRow struct {
	// Ordinal is the zero-based data-row position, header excluded
	Ordinal int
	// Row is the row content to place at that position
	Row Row
}
