// Package testutil provides shared fixtures for tests that need a database
// or a ready-made ledger.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when the
// test finishes.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return store
}

// LedgerStart is the date of the first entry in generated ledgers.
var LedgerStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Holder returns a holder for account.
func Holder(account string) model.Holder {
	return model.Holder{
		Name:          "Japheth Kiptoo",
		PostalAddress: "Utawala, Nairobi",
		Town:          "Litein",
		Email:         "jk@example.com",
		Phone:         "0724765149",
		MemberNo:      "00019",
		AccountNo:     account,
		Product:       "MMF",
		Currency:      "KES",
	}
}

// CashLedger returns n daily deposits of 100 with a running balance.
func CashLedger(account string, n int) []model.Transaction {
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			ID:             int64(i + 1),
			AccountNo:      account,
			Date:           LedgerStart.AddDate(0, 0, i),
			Type:           model.TypePurchase,
			PaymentMethod:  "M-PESA",
			Amount:         100,
			DepositAmount:  100,
			RunningBalance: float64(100 * (i + 1)),
		}
		txns[i].Hash = txns[i].GenerateHash()
	}
	return txns
}

// FundLedger returns n monthly purchases of 10 units at a rising price.
func FundLedger(account string, n int) []model.Transaction {
	txns := make([]model.Transaction, n)
	for i := range txns {
		price := 10 + float64(i)/4
		txns[i] = model.Transaction{
			ID:           int64(i + 1),
			AccountNo:    account,
			Date:         LedgerStart.AddDate(0, i, 0),
			Type:         model.TypePurchase,
			Description:  "Monthly contribution",
			Units:        model.Float(10),
			UnitPrice:    model.Float(price),
			Amount:       10 * price,
			RunningUnits: float64(10 * (i + 1)),
		}
		txns[i].Hash = txns[i].GenerateHash()
	}
	return txns
}

// SeedLedger stores the holder and ledger in store.
func SeedLedger(t *testing.T, store *storage.SQLiteStorage, holder model.Holder, txns []model.Transaction) {
	t.Helper()
	ctx := context.Background()
	if err := store.SaveHolder(ctx, holder); err != nil {
		t.Fatalf("failed to seed holder: %v", err)
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("failed to seed transactions: %v", err)
	}
}
