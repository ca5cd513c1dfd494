package dirsql

import (
	"errors"
	"fmt"
)

// Standard error values for the storage error taxonomy
var (
	// ErrPathEscapesRoot is returned when a resolved path is not a
	// descendant of the configured root directory
	ErrPathEscapesRoot = errors.New("dirsql: path escapes root directory")

	// ErrInvalidExtension is returned when a table path carries an
	// extension other than .csv
	ErrInvalidExtension = errors.New("dirsql: table path with non-csv extension")

	// ErrEmptyName is returned when a table name contains an empty or
	// traversal component
	ErrEmptyName = errors.New("dirsql: empty or invalid table name component")

	// ErrMalformedRecord is returned when a CSV record is ragged or has
	// broken quoting
	ErrMalformedRecord = errors.New("dirsql: malformed record")

	// ErrValueParse is returned when a field cannot be parsed as its
	// inferred column type
	ErrValueParse = errors.New("dirsql: value does not parse as column type")

	// ErrUnsupportedKind is returned when a value kind beyond
	// numeric/text reaches the row codec
	ErrUnsupportedKind = errors.New("dirsql: unsupported value kind")

	// ErrInvalidOrdinal is returned when a keyed mutation targets a
	// negative row ordinal
	ErrInvalidOrdinal = errors.New("dirsql: negative row ordinal")

	// ErrMissingFile is returned when a table's backing file does not exist
	ErrMissingFile = errors.New("dirsql: table file not found")

	// ErrNotFileOrDirectory is returned when a namespace entry is neither
	// a regular file nor a directory
	ErrNotFileOrDirectory = errors.New("dirsql: entry is not a file or directory")
)

// StorageError is the single opaque error surfaced to the upstream SQL
// engine. Internal detail is collapsed into its message; the wrapped
// cause remains reachable through errors.Is and errors.As.
type StorageError struct {
	// Op is the storage operation that failed
	Op string
	// Table is the table identifier involved, if any
	Table string
	// Err is the underlying cause
	Err error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("dirsql: %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("dirsql: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageErr wraps err as the boundary StorageError. A nil err passes
// through unchanged.
func storageErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Table: table, Err: err}
}
