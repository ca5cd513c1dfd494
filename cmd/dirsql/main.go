// Command dirsql exposes a CSV directory tree as a queryable table
// namespace: listing, schema inspection, SQL queries through the
// in-memory SQLite bridge, and exports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dirsql/dirsql"
)

// Persistent flag values
var (
	flagConfig  string
	flagRoot    string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dirsql",
	Short: "Query a directory tree of CSV files as SQL tables",
	Long: `dirsql maps a directory tree of CSV files onto a hierarchical,
typed table namespace. Nested directories are namespaces, each .csv file
is a table, and column types are inferred from the data on every read.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "data root directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dropCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore builds a Store from the resolved configuration and flags
func openStore() (*dirsql.Store, error) {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagRoot != "" {
		cfg.RootDir = flagRoot
	}

	logger := zap.NewNop()
	if flagVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	return dirsql.NewStore(cfg, dirsql.WithLogger(logger))
}
