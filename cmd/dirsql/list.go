// List command enumerates one namespace level.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dirsql/dirsql"
)

var listCmd = &cobra.Command{
	Use:   "list [namespace]",
	Short: "List tables and sub-namespaces",
	Long: `List enumerates the immediate children of a namespace. Without an
argument the root namespace is listed. Entries matching a configured
ignore pattern are excluded.

Example:
  dirsql list
  dirsql list sales/2026`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	var dir dirsql.TableName
	if len(args) == 1 {
		dir, err = dirsql.ParseIdentifier(dirsql.TableIdentifier(args[0]))
		if err != nil {
			return fmt.Errorf("parse namespace %q: %w", args[0], err)
		}
	}

	nodes, err := store.ListTables(dir)
	if err != nil {
		return err
	}

	for _, node := range nodes {
		switch node.Kind {
		case dirsql.NodeNamespace:
			fmt.Printf("%s/\n", node.Name)
		case dirsql.NodeTable:
			cols := make([]string, len(node.Schema.Columns))
			for i, col := range node.Schema.Columns {
				cols[i] = fmt.Sprintf("%s %s", col.Name, col.Type)
			}
			fmt.Printf("%s (%s)\n", node.Name, strings.Join(cols, ", "))
		}
	}
	return nil
}
