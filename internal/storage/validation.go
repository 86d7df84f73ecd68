package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/statement-press/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidHolder      = errors.New("invalid holder")
	ErrInvalidRun         = errors.New("invalid statement run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateTransactions(transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn.AccountNo == "" {
		return fmt.Errorf("%w: missing account number", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidTransaction)
	}
	return nil
}

func validateHolder(h *model.Holder) error {
	if h.AccountNo == "" {
		return fmt.Errorf("%w: missing account number", ErrInvalidHolder)
	}
	if h.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidHolder)
	}
	return nil
}

func validateRun(r *model.StatementRun) error {
	if r == nil {
		return fmt.Errorf("%w: nil run", ErrInvalidRun)
	}
	if r.AccountNo == "" || r.Name == "" {
		return fmt.Errorf("%w: account number and name are required", ErrInvalidRun)
	}
	if r.Pages < 1 || r.Records < 1 {
		return fmt.Errorf("%w: a run covers at least one page and one record", ErrInvalidRun)
	}
	return nil
}
