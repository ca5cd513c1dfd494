// Dump command exports the namespace to another directory.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dirsql/dirsql"
)

// Dump flag values
var (
	flagDumpFormat      string
	flagDumpCompression string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <output-dir>",
	Short: "Export every table to an output directory",
	Long: `Dump exports all tables, mirroring the namespace hierarchy as
subdirectories of the output directory.

Formats: csv (default), xlsx, parquet.
Compression (csv only): none (default), gz, xz, zst.

Example:
  dirsql dump ./backup
  dirsql dump ./backup --format csv --compression zst
  dirsql dump ./export --format parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&flagDumpFormat, "format", "csv", "output format: csv, xlsx, parquet")
	dumpCmd.Flags().StringVar(&flagDumpCompression, "compression", "none", "csv compression: none, gz, xz, zst")
}

func runDump(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	options := dirsql.NewDumpOptions()

	switch flagDumpFormat {
	case "csv":
		options = options.WithFormat(dirsql.OutputFormatCSV)
	case "xlsx":
		options = options.WithFormat(dirsql.OutputFormatXLSX)
	case "parquet":
		options = options.WithFormat(dirsql.OutputFormatParquet)
	default:
		return fmt.Errorf("unknown format %q (valid: csv, xlsx, parquet)", flagDumpFormat)
	}

	switch flagDumpCompression {
	case "none":
		options = options.WithCompression(dirsql.CompressionNone)
	case "gz":
		options = options.WithCompression(dirsql.CompressionGZ)
	case "xz":
		options = options.WithCompression(dirsql.CompressionXZ)
	case "zst":
		options = options.WithCompression(dirsql.CompressionZSTD)
	default:
		return fmt.Errorf("unknown compression %q (valid: none, gz, xz, zst)", flagDumpCompression)
	}

	return store.Dump(args[0], options)
}
