// Package dirsql maps a directory tree of CSV files onto a named, typed
// table namespace consumable by a SQL execution engine.
//
// Each table is one CSV file with a mandatory header row; nested
// directories form a hierarchical namespace. Tables are addressed in
// three equivalent forms: a hierarchical TableName, a slash-joined
// TableIdentifier as used in SQL statements, and a filesystem TablePath
// rooted at a configured data directory.
//
// Schemas are never cached: every read re-derives column types from the
// current file content by scanning every row. Column types widen along
// Integer < Float < Text, each column ending up at the most general type
// observed in it.
//
// The Store type implements the Storage interface that an upstream SQL
// engine calls into: schema lookup, row lookup, full scans, and the five
// mutation primitives (create, drop, append, keyed insert, keyed
// delete). Keyed insert and delete patch a table file in a single linear
// merge pass over its lines rather than seeking within it.
//
// The package offers two conveniences beyond the storage boundary: an
// OpenSQL bridge that loads the namespace into an in-memory SQLite
// database for querying, and a Dump exporter that writes tables out as
// CSV (optionally compressed), XLSX, or Parquet.
//
// Example usage:
//
//	store, err := dirsql.NewStore(dirsql.Config{
//		RootDir: "~/data",
//		Ignores: []string{".git", "*.bak"},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	name, err := dirsql.ParseIdentifier("sales/2026/orders")
//	if err != nil {
//		log.Fatal(err)
//	}
//	schema, err := store.FetchSchema(name)
package dirsql
