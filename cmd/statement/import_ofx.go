package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/statement-press/internal/cli"
	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/ofx"
	"github.com/Veraticus/statement-press/internal/service"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import account ledgers from OFX/QFX files",
		Long: `Import account ledgers from OFX or QFX files exported from your bank.

Each account found in a file is stored with its ledger; running balances are
derived from the closing balance. Stored accounts can then be rendered with
"statement render --account".

Examples:
  # Import single file
  statement import-ofx ~/Downloads/sacco_jan_2024.qfx

  # Import all QFX files in a directory
  statement import-ofx ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().String("holder-name", "", "Holder name for newly seen accounts")
	cmd.Flags().String("product", "", "Product name for newly seen accounts")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	holderName, _ := cmd.Flags().GetString("holder-name")
	product, _ := cmd.Flags().GetString("product")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	parser := ofx.NewParser(slog.Default())
	var statements []ofx.Statement
	for _, path := range files {
		parsed, err := parseOFXFile(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		statements = append(statements, parsed...)
	}
	if len(statements) == 0 {
		return common.NewUserError("no accounts found in the given files", nil)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		for _, st := range statements {
			fmt.Fprintf(out, "  - %s: %d transactions (%s)\n", st.AccountNo, len(st.Transactions), st.Currency) //nolint:forbidigo // User-facing output
		}
		fmt.Fprintln(out, cli.FormatInfo("Dry run complete - no data saved")) //nolint:forbidigo // User-facing output
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	defaults := model.Holder{Name: holderName, Product: product}
	for _, st := range statements {
		if err := storeLedger(ctx, store, st.AccountNo, st.Currency, defaults, st.Transactions); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s: %d transactions", st.AccountNo, len(st.Transactions)))) //nolint:forbidigo // User-facing output
	}
	return nil
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Statement, error) {
	f, err := os.Open(path) // #nosec G304 - user-supplied import path
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

// storeLedger saves the holder of account, creating it from defaults when
// it has not been seen before, and then its transactions. Transactions
// already stored are skipped by hash.
func storeLedger(ctx context.Context, store service.Storage, account, currency string, defaults model.Holder, txns []model.Transaction) error {
	holder, err := store.GetHolder(ctx, account)
	switch {
	case errors.Is(err, common.ErrNotFound):
		h := defaults
		h.AccountNo = account
		h.Currency = currency
		if err := store.SaveHolder(ctx, h); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if currency != "" && holder.Currency != currency {
			slog.Warn("Ledger currency differs from stored holder",
				"account", account, "stored", holder.Currency, "ledger", currency)
		}
	}

	if len(txns) == 0 {
		return nil
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		return fmt.Errorf("failed to save ledger of %s: %w", account, err)
	}
	return nil
}
