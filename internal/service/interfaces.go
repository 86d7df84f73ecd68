// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/statement-press/internal/model"
)

// TransactionFilter defines filtering options for ledger queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountNo string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Account operations
	SaveHolder(ctx context.Context, holder model.Holder) error
	GetHolder(ctx context.Context, accountNo string) (*model.Holder, error)
	ListHolders(ctx context.Context) ([]model.Holder, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, accountNo string) (int, error)

	// Statement run history
	RecordRun(ctx context.Context, run *model.StatementRun) error
	ListRuns(ctx context.Context, accountNo string, limit int) ([]model.StatementRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionSource fetches ledger entries from an external system.
type TransactionSource interface {
	GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
