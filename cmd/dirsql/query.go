// Query command runs SQL over the namespace through the SQLite bridge.

package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL query over the namespace",
	Long: `Query loads every table in the namespace into an in-memory SQLite
database and executes the given SQL against it, printing the result as
CSV. Hierarchical table identifiers appear with "/" replaced by "_".

Example:
  dirsql query 'SELECT name, total FROM sales_2026_orders ORDER BY total DESC'`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	db, err := store.OpenSQL(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.QueryContext(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read result columns: %w", err)
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write(columns); err != nil {
		return err
	}

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return fmt.Errorf("scan result row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				continue
			}
			record[i] = fmt.Sprintf("%v", v)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate results: %w", err)
	}

	w.Flush()
	return w.Error()
}
