package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/importer"
	"github.com/mdejong/budgeteer/internal/model"
)

func importCmd() *cobra.Command {
	var account string
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import bank statements (CSV or OFX/QFX)",
		Long: `Import parses one or more statement files and stores their transactions.
Already-imported transactions are detected by hash and skipped, so
re-importing an overlapping statement is safe.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			bar := progressbar.Default(int64(len(args)), "Importing statements")
			var total int
			for _, path := range args {
				txns, err := parseStatement(path, account, format)
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", path, err)
				}
				if err := store.SaveTransactions(cmd.Context(), txns); err != nil {
					return fmt.Errorf("failed to store transactions from %s: %w", path, err)
				}
				total += len(txns)
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Printf("Imported %d transactions from %d file(s)\n", total, len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account ID for CSV rows without one")
	cmd.Flags().StringVar(&format, "format", "", "statement format (csv, ofx); inferred from the extension when empty")

	return cmd
}

func parseStatement(path, account, format string) ([]model.Transaction, error) {
	file, err := os.Open(path) // #nosec G304 -- user-supplied statement path
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = "csv"
		case ".ofx", ".qfx":
			format = "ofx"
		default:
			return nil, common.ValidationError("cannot infer format of %s; pass --format", path)
		}
	}

	switch format {
	case "csv":
		return importer.ParseCSV(file, account)
	case "ofx":
		return importer.ParseOFX(file)
	default:
		return nil, common.ValidationError("unknown format %q (want csv or ofx)", format)
	}
}
