// Create and drop commands manage table files.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dirsql/dirsql"
)

var createCmd = &cobra.Command{
	Use:   "create <table> <column>...",
	Short: "Create an empty table with the given columns",
	Long: `Create writes a new table file containing only the header row, making
parent namespace directories as needed. An existing table of the same
name is silently overwritten.

Example:
  dirsql create sales/2026/orders id name total`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCreate,
}

var dropCmd = &cobra.Command{
	Use:   "drop <table>",
	Short: "Delete a table's backing file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func runCreate(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	name, err := dirsql.ParseIdentifier(dirsql.TableIdentifier(args[0]))
	if err != nil {
		return fmt.Errorf("parse table %q: %w", args[0], err)
	}

	columns := make([]dirsql.Column, len(args[1:]))
	for i, colName := range args[1:] {
		if strings.TrimSpace(colName) == "" {
			return fmt.Errorf("column %d: name must not be empty", i)
		}
		columns[i] = dirsql.Column{Name: colName, Type: dirsql.ColumnTypeText}
	}

	return store.CreateTable(dirsql.Schema{Name: name, Columns: columns})
}

func runDrop(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	name, err := dirsql.ParseIdentifier(dirsql.TableIdentifier(args[0]))
	if err != nil {
		return fmt.Errorf("parse table %q: %w", args[0], err)
	}

	return store.DropTable(name)
}
