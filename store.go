package dirsql

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Storage is the boundary the upstream SQL engine depends on: schema
// lookup, row lookup, full scans, listings, and the five mutation
// primitives. It is implemented exactly once, by Store.
type Storage interface {
	// FetchSchema infers and returns the named table's schema
	FetchSchema(name TableName) (Schema, error)
	// FetchRow returns the data row at the given ordinal, or ok=false if
	// the table is shorter
	FetchRow(name TableName, ordinal int) (Row, bool, error)
	// ScanRows opens a lazy single-pass scan over the table's data rows
	ScanRows(name TableName) (*RowScanner, error)
	// ListTables enumerates one namespace level; the zero TableName is
	// the root namespace
	ListTables(dir TableName) ([]TableNode, error)
	// CreateTable writes a new table containing only the header row
	CreateTable(schema Schema) error
	// DropTable deletes the table's backing file
	DropTable(name TableName) error
	// AppendRows encodes and appends rows as trailing lines, in order
	AppendRows(name TableName, rows []Row) error
	// InsertRows places each keyed row at its explicit non-negative
	// ordinal, overwriting in place or padding past the end with blank
	// lines
	InsertRows(name TableName, rows []KeyedRow) error
	// DeleteRows removes exactly the rows at the targeted non-negative
	// ordinals
	DeleteRows(name TableName, ordinals []int) error
}

// Store is the CSV-backed storage engine. All operations are synchronous
// blocking file I/O with no internal concurrency and no locking; the
// caller executes one statement at a time.
type Store struct {
	resolver Resolver
	ignores  []string
	logger   *zap.Logger
}

// compile-time check that Store satisfies the storage boundary
var _ Storage = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithLogger attaches a zap logger; the default is a no-op logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store over cfg.RootDir, which must exist. The root
// is tilde-expanded and canonicalized once here; every resolution
// afterwards is relative to that canonical root.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolver, err := NewResolver(cfg.RootDir)
	if err != nil {
		return nil, err
	}

	s := &Store{
		resolver: resolver,
		ignores:  append([]string(nil), cfg.Ignores...),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolver returns the store's identity resolver
func (s *Store) Resolver() Resolver {
	return s.resolver
}

// FetchSchema infers the named table's schema by scanning its entire
// backing file. Nothing is cached: a second call re-reads the file.
func (s *Store) FetchSchema(name TableName) (Schema, error) {
	s.logger.Debug("fetch schema", zap.String("table", name.String()))

	schema, err := readSchema(name, s.resolver.Path(name).CSV())
	if err != nil {
		return Schema{}, storageErr("fetch schema", name.String(), err)
	}
	return schema, nil
}

// ListTables enumerates the immediate children of a namespace, filtering
// by the configured ignore patterns. Table schemas are recomputed on
// every call.
func (s *Store) ListTables(dir TableName) ([]TableNode, error) {
	s.logger.Debug("list tables", zap.String("namespace", dir.String()))

	nodes, err := listNodes(s.resolver, dir, s.ignores)
	if err != nil {
		return nil, storageErr("list tables", dir.String(), err)
	}
	return nodes, nil
}

// CreateTable writes a new backing file holding only the header row
// derived from the schema's columns, creating missing parent namespace
// directories. It is not idempotent: an existing table is silently
// overwritten.
func (s *Store) CreateTable(schema Schema) error {
	name := schema.Name
	s.logger.Debug("create table", zap.String("table", name.String()))

	csvPath := s.resolver.Path(name).CSV()
	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return storageErr("create table", name.String(), err)
	}

	header := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		header[i] = col.Name
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return storageErr("create table", name.String(), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storageErr("create table", name.String(), err)
	}

	if err := os.WriteFile(csvPath, buf.Bytes(), 0o644); err != nil {
		return storageErr("create table", name.String(), err)
	}
	return nil
}

// DropTable deletes the table's backing file
func (s *Store) DropTable(name TableName) error {
	s.logger.Debug("drop table", zap.String("table", name.String()))

	if err := os.Remove(s.resolver.Path(name).CSV()); err != nil {
		if os.IsNotExist(err) {
			return storageErr("drop table", name.String(), ErrMissingFile)
		}
		return storageErr("drop table", name.String(), err)
	}
	return nil
}

// AppendRows opens the backing file in append mode and writes each row
// as a new trailing line, in input order. Implicit row ordinals are not
// reported back.
func (s *Store) AppendRows(name TableName, rows []Row) error {
	s.logger.Debug("append rows",
		zap.String("table", name.String()), zap.Int("rows", len(rows)))

	f, err := os.OpenFile(s.resolver.Path(name).CSV(), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return storageErr("append rows", name.String(), ErrMissingFile)
		}
		return storageErr("append rows", name.String(), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range rows {
		fields, err := encodeRow(row)
		if err != nil {
			return storageErr("append rows", name.String(), err)
		}
		if err := w.Write(fields); err != nil {
			return storageErr("append rows", name.String(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return storageErr("append rows", name.String(), err)
	}
	if err := f.Close(); err != nil {
		return storageErr("append rows", name.String(), err)
	}
	return nil
}

// InsertRows places each keyed row at its explicit data-row ordinal in
// one linear merge pass. Ordinals must be non-negative and each row must
// encode to a single line. Ordinals are shifted by one for the header line
// and sorted ascending; the existing file is streamed against that
// injection, overwriting matched lines in place and padding with blanks
// past the end. When two rows target the same ordinal the later one
// wins. The merged buffer overwrites the original file on completion —
// there is no atomic rename, so a crash mid-write can truncate the
// table.
func (s *Store) InsertRows(name TableName, rows []KeyedRow) error {
	s.logger.Debug("insert rows",
		zap.String("table", name.String()), zap.Int("rows", len(rows)))

	lines := make([]numberedLine, 0, len(rows))
	for _, kr := range rows {
		// A negative ordinal would target the header line or a line
		// number the merge cursor can never reach.
		if kr.Ordinal < 0 {
			return storageErr("insert rows", name.String(),
				fmt.Errorf("ordinal %d: %w", kr.Ordinal, ErrInvalidOrdinal))
		}
		text, err := encodeLine(kr.Row)
		if err != nil {
			return storageErr("insert rows", name.String(), err)
		}
		// The file is line-addressed: a quoted value spanning lines
		// would shift every ordinal behind it.
		if strings.ContainsAny(text, "\r\n") {
			return storageErr("insert rows", name.String(),
				fmt.Errorf("row at ordinal %d spans multiple lines: %w", kr.Ordinal, ErrMalformedRecord))
		}
		// +1 accounts for the header line.
		lines = append(lines, numberedLine{num: kr.Ordinal + 1, text: text})
	}

	err := s.rewrite(name, func(f io.Reader, buf *bytes.Buffer) error {
		return newLineInjector(f, newInjection(lines)).writeTo(buf)
	})
	if err != nil {
		return storageErr("insert rows", name.String(), err)
	}
	return nil
}

// DeleteRows removes the rows at the targeted ordinals. Targets are kept
// as a set and every line is tested for membership unconditionally, so
// trailing lines are always copied even after the last target has been
// passed.
func (s *Store) DeleteRows(name TableName, ordinals []int) error {
	s.logger.Debug("delete rows",
		zap.String("table", name.String()), zap.Int("rows", len(ordinals)))

	drop := make(map[int]struct{}, len(ordinals))
	for _, ord := range ordinals {
		// A negative ordinal would target the header line.
		if ord < 0 {
			return storageErr("delete rows", name.String(),
				fmt.Errorf("ordinal %d: %w", ord, ErrInvalidOrdinal))
		}
		// +1 accounts for the header line.
		drop[ord+1] = struct{}{}
	}

	err := s.rewrite(name, func(f io.Reader, buf *bytes.Buffer) error {
		return copyLinesExcept(f, buf, drop)
	})
	if err != nil {
		return storageErr("delete rows", name.String(), err)
	}
	return nil
}

// FetchRow skips ordinal data rows and decodes the next one. ok is false
// when the file holds fewer rows. Schema inference and the data read are
// two independent passes over the file, so a concurrent external change
// can surface as a decode error.
func (s *Store) FetchRow(name TableName, ordinal int) (Row, bool, error) {
	s.logger.Debug("fetch row",
		zap.String("table", name.String()), zap.Int("ordinal", ordinal))

	schema, err := s.FetchSchema(name)
	if err != nil {
		return nil, false, err
	}

	f, err := os.Open(s.resolver.Path(name).CSV())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, storageErr("fetch row", name.String(), ErrMissingFile)
		}
		return nil, false, storageErr("fetch row", name.String(), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Skip the header plus the ordinal preceding data rows without
	// decoding them.
	for skip := 0; skip <= ordinal; skip++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return nil, false, nil
			}
			return nil, false, storageErr("fetch row", name.String(), wrapCSVError(err))
		}
	}

	fields, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, false, nil
		}
		return nil, false, storageErr("fetch row", name.String(), wrapCSVError(err))
	}

	row, err := decodeRow(fields, schema)
	if err != nil {
		return nil, false, storageErr("fetch row", name.String(), err)
	}
	return row, true, nil
}

// ScanRows opens a lazy, finite, single-pass scan producing (ordinal,
// row) pairs in file order. Re-scanning requires a fresh call. The
// caller owns Close.
func (s *Store) ScanRows(name TableName) (*RowScanner, error) {
	s.logger.Debug("scan rows", zap.String("table", name.String()))

	schema, err := s.FetchSchema(name)
	if err != nil {
		return nil, err
	}

	csvPath := s.resolver.Path(name).CSV()
	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storageErr("scan rows", name.String(), ErrMissingFile)
		}
		return nil, storageErr("scan rows", name.String(), err)
	}

	reader := csv.NewReader(f)
	// Skip the header; it was already consumed into the schema.
	if _, err := reader.Read(); err != nil && err != io.EOF {
		f.Close()
		return nil, storageErr("scan rows", name.String(), wrapCSVError(err))
	}

	return &RowScanner{
		name:    name,
		schema:  schema,
		file:    f,
		reader:  reader,
		ordinal: -1,
	}, nil
}

// rewrite streams the table's backing file through transform into a
// temporary buffer and overwrites the file in place with the result.
func (s *Store) rewrite(name TableName, transform func(io.Reader, *bytes.Buffer) error) error {
	csvPath := s.resolver.Path(name).CSV()

	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMissingFile
		}
		return err
	}

	var buf bytes.Buffer
	if err := transform(f, &buf); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.WriteFile(csvPath, buf.Bytes(), 0o644)
}

// encodeLine renders a row as one CSV line without the trailing newline
func encodeLine(row Row) (string, error) {
	fields, err := encodeRow(row)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(fields); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// copyLinesExcept copies every line of r to buf except those whose line
// number is in drop. Membership is tested for every single line; the
// copy never stops early, no matter how the targets are ordered.
func copyLinesExcept(r io.Reader, buf *bytes.Buffer, drop map[int]struct{}) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for lineNum := 0; scanner.Scan(); lineNum++ {
		if _, skip := drop[lineNum]; skip {
			continue
		}
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}
	return scanner.Err()
}

// RowScanner is a lazy single-pass cursor over a table's data rows. It
// mirrors the database/sql Rows shape: Next, Row, Err, Close.
type RowScanner struct {
	name    TableName
	schema  Schema
	file    *os.File
	reader  *csv.Reader
	ordinal int
	current Row
	err     error
	done    bool
}

// Schema returns the schema the scan decodes against
func (rs *RowScanner) Schema() Schema {
	return rs.schema
}

// Next advances to the next data row, returning false at EOF or on error
func (rs *RowScanner) Next() bool {
	if rs.done {
		return false
	}

	fields, err := rs.reader.Read()
	if err == io.EOF {
		rs.done = true
		return false
	}
	if err != nil {
		rs.err = storageErr("scan rows", rs.name.String(), wrapCSVError(err))
		rs.done = true
		return false
	}

	row, err := decodeRow(fields, rs.schema)
	if err != nil {
		rs.err = storageErr("scan rows", rs.name.String(), err)
		rs.done = true
		return false
	}

	rs.ordinal++
	rs.current = row
	return true
}

// Row returns the current ordinal and row; valid only after a true Next
func (rs *RowScanner) Row() (int, Row) {
	return rs.ordinal, rs.current
}

// Err returns the first error encountered during the scan
func (rs *RowScanner) Err() error {
	return rs.err
}

// Close releases the underlying file
func (rs *RowScanner) Close() error {
	return rs.file.Close()
}
