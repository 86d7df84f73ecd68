package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/statement-press/internal/model"
)

// RecordRun stores a rendered statement and fills in its ID.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *model.StatementRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO statement_runs (account_no, name, variant, profile, output, pages, records)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.AccountNo, run.Name, run.Variant.String(), run.Profile, run.Output, run.Pages, run.Records)
	if err != nil {
		return fmt.Errorf("failed to record statement run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

// ListRuns returns the most recent runs first. An empty accountNo lists
// runs for every account; limit <= 0 means no limit.
func (s *SQLiteStorage) ListRuns(ctx context.Context, accountNo string, limit int) ([]model.StatementRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_no, name, variant, profile, COALESCE(output, ''), pages, records, created_at
		FROM statement_runs
		WHERE ? = '' OR account_no = ?
		ORDER BY id DESC
		LIMIT ?
	`, accountNo, accountNo, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.StatementRun
	for rows.Next() {
		var (
			r       model.StatementRun
			variant string
		)
		if err := rows.Scan(&r.ID, &r.AccountNo, &r.Name, &variant, &r.Profile,
			&r.Output, &r.Pages, &r.Records, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan statement run: %w", err)
		}
		r.Variant = model.Variant(variant)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
