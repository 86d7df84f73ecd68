package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/service"
)

// SaveTransactions stores ledger entries. Entries already present (same
// account and transaction number, or same hash) are skipped. Each new entry
// keeps its position in the slice, so same-day entries read back in ledger
// order whatever their transaction numbers.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			trans_id, account_no, hash, date, trans_type, amount,
			running_balance, running_units, units, unit_price,
			tax_amount, deposit_amount, withdrawal_amount, interest_amount,
			payment_method, description, source, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transactions`).Scan(&seq); err != nil {
		return fmt.Errorf("failed to read ledger position: %w", err)
	}

	inserted := 0
	for i, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		source := txn.Source
		if source == "" {
			source = model.SourcePayload
		}

		res, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.AccountNo,
			txn.Hash,
			txn.Date.UTC(),
			string(txn.Type),
			txn.Amount,
			txn.RunningBalance,
			txn.RunningUnits,
			nullFloat(txn.Units),
			nullFloat(txn.UnitPrice),
			txn.TaxAmount,
			txn.DepositAmount,
			txn.WithdrawalAmount,
			txn.InterestAmount,
			txn.PaymentMethod,
			txn.Description,
			source,
			seq+int64(i)+1,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", txn.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	slog.Debug("saved transactions",
		"received", len(transactions),
		"inserted", inserted)
	return nil
}

// GetTransactions returns ledger entries matching filter, ordered by date
// and then by the order they were saved in.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v",
			ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var (
		where []string
		args  []any
	)
	if filter.AccountNo != "" {
		where = append(where, "account_no = ?")
		args = append(args, filter.AccountNo)
	}
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate.UTC())
	}

	var q strings.Builder
	q.WriteString(`
		SELECT trans_id, account_no, hash, date, trans_type, amount,
			running_balance, running_units, units, unit_price,
			tax_amount, deposit_amount, withdrawal_amount, interest_amount,
			COALESCE(payment_method, ''), COALESCE(description, ''), source
		FROM transactions`)
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY date, seq")
	if filter.Limit > 0 {
		q.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t         model.Transaction
			txnType   string
			units     sql.NullFloat64
			unitPrice sql.NullFloat64
		)
		if err := rows.Scan(
			&t.ID, &t.AccountNo, &t.Hash, &t.Date, &txnType, &t.Amount,
			&t.RunningBalance, &t.RunningUnits, &units, &unitPrice,
			&t.TaxAmount, &t.DepositAmount, &t.WithdrawalAmount, &t.InterestAmount,
			&t.PaymentMethod, &t.Description, &t.Source,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = model.TransactionType(txnType)
		t.Units = floatPtr(units)
		t.UnitPrice = floatPtr(unitPrice)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// CountTransactions counts the ledger entries of accountNo, or of every
// account when accountNo is empty.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, accountNo string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	var err error
	if accountNo == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_no = ?`, accountNo).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return model.Float(v.Float64)
}
