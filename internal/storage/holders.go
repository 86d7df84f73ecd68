package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
)

// SaveHolder inserts or updates the holder keyed by account number.
func (s *SQLiteStorage) SaveHolder(ctx context.Context, holder model.Holder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateHolder(&holder); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holders (
			account_no, name, postal_address, town, email, phone, member_no, product, currency
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_no) DO UPDATE SET
			name = excluded.name,
			postal_address = excluded.postal_address,
			town = excluded.town,
			email = excluded.email,
			phone = excluded.phone,
			member_no = excluded.member_no,
			product = excluded.product,
			currency = excluded.currency,
			updated_at = CURRENT_TIMESTAMP
	`,
		holder.AccountNo, holder.Name, holder.PostalAddress, holder.Town, holder.Email,
		holder.Phone, holder.MemberNo, holder.Product, holder.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to save holder %s: %w", holder.AccountNo, err)
	}
	return nil
}

// GetHolder returns the holder of accountNo or common.ErrNotFound.
func (s *SQLiteStorage) GetHolder(ctx context.Context, accountNo string) (*model.Holder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountNo, "accountNo"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, holderSelect+` WHERE account_no = ?`, accountNo)
	h, err := scanHolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("holder %s: %w", accountNo, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holder %s: %w", accountNo, err)
	}
	return h, nil
}

// ListHolders returns every holder ordered by name.
func (s *SQLiteStorage) ListHolders(ctx context.Context) ([]model.Holder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, holderSelect+` ORDER BY name, account_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var holders []model.Holder
	for rows.Next() {
		h, err := scanHolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holder: %w", err)
		}
		holders = append(holders, *h)
	}
	return holders, rows.Err()
}

const holderSelect = `
	SELECT account_no, name, COALESCE(postal_address, ''), COALESCE(town, ''),
		COALESCE(email, ''), COALESCE(phone, ''), COALESCE(member_no, ''),
		COALESCE(product, ''), COALESCE(currency, '')
	FROM holders`

type scanner interface {
	Scan(dest ...any) error
}

func scanHolder(row scanner) (*model.Holder, error) {
	var h model.Holder
	err := row.Scan(&h.AccountNo, &h.Name, &h.PostalAddress, &h.Town,
		&h.Email, &h.Phone, &h.MemberNo, &h.Product, &h.Currency)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
