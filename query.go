package dirsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// sqliteMemoryDSN opens a private in-memory database per connection
const sqliteMemoryDSN = ":memory:"

// OpenSQL materializes the whole table namespace into an in-memory
// SQLite database and returns it for querying. This is the glue toward
// the upstream SQL engine: the bridge only feeds SQLite, it plans and
// executes nothing itself. Hierarchical identifiers appear as table
// names with "/" replaced by "_" (SQLite identifier sanitization).
//
// The returned database is a snapshot: mutations made through it are not
// written back to the CSV files. The caller owns Close.
func (s *Store) OpenSQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteMemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	// The snapshot lives in a single connection's memory.
	db.SetMaxOpenConns(1)

	if err := s.loadNamespace(ctx, db, TableName{}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// loadNamespace recursively loads every table below dir into db
func (s *Store) loadNamespace(ctx context.Context, db *sql.DB, dir TableName) error {
	nodes, err := s.ListTables(dir)
	if err != nil {
		return err
	}

	for _, node := range nodes {
		switch node.Kind {
		case NodeNamespace:
			if err := s.loadNamespace(ctx, db, node.Name); err != nil {
				return err
			}
		case NodeTable:
			if err := s.loadTable(ctx, db, *node.Schema); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadTable creates the SQLite table for schema and copies every row in
func (s *Store) loadTable(ctx context.Context, db *sql.DB, schema Schema) error {
	sqlName := sanitizeSQLName(schema.Name.Identifier())
	s.logger.Debug("load table into sqlite",
		zap.String("table", schema.Name.String()), zap.String("sqlite_table", sqlName))

	if _, err := db.ExecContext(ctx, buildCreateTableQuery(sqlName, schema)); err != nil {
		return fmt.Errorf("create sqlite table %q: %w", sqlName, err)
	}

	scanner, err := s.ScanRows(schema.Name)
	if err != nil {
		return err
	}
	defer scanner.Close()

	stmt, err := db.PrepareContext(ctx, buildInsertQuery(sqlName, len(schema.Columns)))
	if err != nil {
		return fmt.Errorf("prepare insert for %q: %w", sqlName, err)
	}
	defer stmt.Close()

	for scanner.Next() {
		_, row := scanner.Row()
		args := make([]any, len(row))
		for i, v := range row {
			switch v.Kind() {
			case KindInteger:
				args[i] = v.Int()
			case KindFloat:
				args[i] = v.Float()
			default:
				args[i] = v.Text()
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %q: %w", sqlName, err)
		}
	}
	return scanner.Err()
}

// buildCreateTableQuery builds the CREATE TABLE statement for a schema
func buildCreateTableQuery(sqlName string, schema Schema) string {
	columns := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		columns[i] = fmt.Sprintf("%q %s", col.Name, col.Type)
	}
	return fmt.Sprintf("CREATE TABLE %q (%s)", sqlName, strings.Join(columns, ", "))
}

// buildInsertQuery builds a placeholder INSERT statement for count columns
func buildInsertQuery(sqlName string, count int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
	return fmt.Sprintf("INSERT INTO %q VALUES (%s)", sqlName, placeholders)
}

// sanitizeSQLName turns a hierarchical identifier into a valid SQLite
// table name: separators and punctuation become underscores, anything
// else non-alphanumeric is dropped, and a leading digit gets a prefix.
func sanitizeSQLName(id TableIdentifier) string {
	replaced := strings.NewReplacer("/", "_", "-", "_", ".", "_", " ", "_").Replace(string(id))

	var sb strings.Builder
	for _, r := range replaced {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	if result == "" {
		return "table_"
	}
	if result[0] >= '0' && result[0] <= '9' {
		return "table_" + result
	}
	return result
}
