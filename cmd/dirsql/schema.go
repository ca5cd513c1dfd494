// Schema command prints an inferred table schema.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dirsql/dirsql"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <table>",
	Short: "Show a table's inferred schema",
	Long: `Schema scans the table's backing file and prints each column with the
widest type observed in its values (INTEGER, REAL, or TEXT).

Example:
  dirsql schema sales/2026/orders`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	name, err := dirsql.ParseIdentifier(dirsql.TableIdentifier(args[0]))
	if err != nil {
		return fmt.Errorf("parse table %q: %w", args[0], err)
	}

	schema, err := store.FetchSchema(name)
	if err != nil {
		return err
	}

	fmt.Println(schema.Name)
	for _, col := range schema.Columns {
		fmt.Printf("  %s %s\n", col.Name, col.Type)
	}
	return nil
}
