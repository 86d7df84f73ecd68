package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS holders (
					account_no TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					postal_address TEXT,
					town TEXT,
					email TEXT,
					phone TEXT,
					member_no TEXT,
					product TEXT,
					currency TEXT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS transactions (
					trans_id INTEGER NOT NULL,
					account_no TEXT NOT NULL,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					trans_type TEXT NOT NULL,
					amount REAL NOT NULL,
					running_balance REAL NOT NULL DEFAULT 0,
					running_units REAL NOT NULL DEFAULT 0,
					units REAL,
					unit_price REAL,
					tax_amount REAL NOT NULL DEFAULT 0,
					deposit_amount REAL NOT NULL DEFAULT 0,
					withdrawal_amount REAL NOT NULL DEFAULT 0,
					interest_amount REAL NOT NULL DEFAULT 0,
					payment_method TEXT,
					description TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (account_no, trans_id)
				)`,
				`CREATE INDEX idx_transactions_account_date ON transactions(account_no, date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Record statement runs",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS statement_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					account_no TEXT NOT NULL,
					name TEXT NOT NULL,
					variant TEXT NOT NULL,
					profile TEXT NOT NULL,
					output TEXT,
					pages INTEGER NOT NULL,
					records INTEGER NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_statement_runs_account ON statement_runs(account_no, created_at)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Track where ledger entries came from",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE transactions ADD COLUMN source TEXT NOT NULL DEFAULT 'payload'`,
			)
		},
	},
	{
		Version:     4,
		Description: "Keep ledger order for same-day entries",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE transactions ADD COLUMN seq INTEGER NOT NULL DEFAULT 0`,
				`UPDATE transactions SET seq = rowid`,
				`CREATE INDEX idx_transactions_account_seq ON transactions(account_no, date, seq)`,
			)
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
