package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/payload"
	"github.com/Veraticus/statement-press/internal/service"
	"github.com/Veraticus/statement-press/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// statementFlags selects where a statement comes from: a payload file given
// as the only argument, or an account stored by import-ofx / sync-plaid.
type statementFlags struct {
	profile string
	account string
	variant string
	name    string
	from    string
	to      string
}

func addStatementFlags(cmd *cobra.Command) *statementFlags {
	f := &statementFlags{}
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "layout profile (default: the variant's configured profile)")
	cmd.Flags().StringVarP(&f.account, "account", "a", "", "render a stored account instead of a payload file")
	cmd.Flags().StringVar(&f.variant, "variant", "", "statement variant for a stored account (cash-flow, unit-fund)")
	cmd.Flags().StringVar(&f.name, "name", "", "statement name for a stored account (default: the account number)")
	cmd.Flags().StringVar(&f.from, "from", "", "first ledger date for a stored account (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last ledger date for a stored account (YYYY-MM-DD)")
	return f
}

func statementArgs(cmd *cobra.Command, args []string) error {
	account, _ := cmd.Flags().GetString("account")
	if account != "" {
		return cobra.NoArgs(cmd, args)
	}
	if len(args) != 1 {
		return errors.New("expected one payload file (or - for stdin), or --account")
	}
	return nil
}

// loadDocument reads the statement input selected by args and flags.
func loadDocument(cmd *cobra.Command, args []string, f *statementFlags) (*payload.Document, error) {
	var (
		doc *payload.Document
		err error
	)
	if f.account != "" {
		doc, err = loadStoredDocument(cmd.Context(), f)
	} else {
		doc, err = readPayload(cmd.InOrStdin(), args[0])
	}
	if err != nil {
		return nil, err
	}

	if f.profile != "" {
		doc.Profile = f.profile
	}
	return doc, nil
}

func readPayload(stdin io.Reader, path string) (*payload.Document, error) {
	r := stdin
	if path != "-" {
		file, err := os.Open(path) // #nosec G304 - user-supplied payload path
		if err != nil {
			return nil, common.NewUserError("cannot open payload", err)
		}
		defer func() { _ = file.Close() }()
		r = file
	}

	doc, err := payload.Decode(r)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot read payload %s", path), err)
	}
	return doc, nil
}

func loadStoredDocument(ctx context.Context, f *statementFlags) (*payload.Document, error) {
	filter := service.TransactionFilter{AccountNo: f.account}
	for _, d := range []struct {
		dst **time.Time
		val string
	}{{&filter.StartDate, f.from}, {&filter.EndDate, f.to}} {
		if d.val == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, d.val)
		if err != nil {
			return nil, common.NewUserError("dates must be YYYY-MM-DD", err)
		}
		*d.dst = &t
	}

	variant := model.VariantCashFlow
	if f.variant != "" {
		v, err := model.ParseVariant(f.variant)
		if err != nil {
			return nil, common.NewUserError("unknown variant", err)
		}
		variant = v
	}

	store, err := initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	holder, err := store.GetHolder(ctx, f.account)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError(fmt.Sprintf("account %s has not been imported", f.account), err)
		}
		return nil, err
	}

	txns, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, common.NewUserError(fmt.Sprintf("account %s has no transactions in range", f.account), common.ErrEmptyStatement)
	}

	name := f.name
	if name == "" {
		name = f.account
	}
	doc := payload.FromLedger(name, variant, *holder, txns)
	if f.variant == "" {
		doc.Variant = ""
	}
	return doc, nil
}

// newComposer resolves the profile and branding for doc and prepares its
// pages.
func newComposer(doc *payload.Document, now time.Time) (*engine.Composer, error) {
	name, variant, err := doc.ProfileRequest()
	if err != nil {
		return nil, common.NewUserError("invalid statement", err)
	}

	profile, err := config.ResolveProfile(name, variant)
	if err != nil {
		return nil, err
	}
	branding, err := config.LoadBranding()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("pdf_name", doc.PDFName)
	composer, err := engine.NewComposer(doc.Statement(profile, branding, now, logger))
	if err != nil {
		if common.IsConfigError(err) {
			return nil, err
		}
		return nil, common.NewUserError("cannot lay out statement", err)
	}
	return composer, nil
}

// recordRun stores a statement run; failures only warn.
func recordRun(ctx context.Context, composer *engine.Composer, output string) {
	store, err := initStorage(ctx)
	if err != nil {
		slog.Warn("Skipping run history", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	stmt := composer.Statement()
	run := &model.StatementRun{
		CreatedAt: time.Now(),
		AccountNo: stmt.Holder.AccountNo,
		Name:      stmt.Name,
		Variant:   stmt.Variant(),
		Profile:   stmt.Profile.Name,
		Output:    output,
		Pages:     composer.TotalPages(),
		Records:   len(stmt.Transactions),
	}
	if err := store.RecordRun(ctx, run); err != nil {
		slog.Warn("Failed to record statement run", "error", err)
	}
}
