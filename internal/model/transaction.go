package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionType tags the direction of a ledger entry.
type TransactionType string

// Known transaction types. Anything else is carried through as-is and only
// shows up in the balance columns.
const (
	TypePurchase   TransactionType = "PURCHASE"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeInterest   TransactionType = "INTEREST"
)

// Transaction is a single statement ledger entry.
type Transaction struct {
	Date time.Time

	// Optional unit data, only present for unit-based fund statements.
	Units     *float64
	UnitPrice *float64

	Type          TransactionType
	PaymentMethod string // Method of payment label, e.g. M-PESA
	Description   string
	AccountNo     string
	Hash          string
	Source        string // payload, ofx, plaid or simplefin

	ID               int64
	Amount           float64
	RunningBalance   float64
	RunningUnits     float64
	TaxAmount        float64
	DepositAmount    float64
	WithdrawalAmount float64
	InterestAmount   float64
}

// Label returns the text shown in the description column.
func (t *Transaction) Label() string {
	if t.Description != "" {
		return t.Description
	}
	return t.PaymentMethod
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%d:%s:%.2f:%s",
		t.Date.Format("2006-01-02"),
		t.ID,
		t.Type,
		t.Amount,
		t.AccountNo)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Ledger sources.
const (
	SourcePayload   = "payload"
	SourceOFX       = "ofx"
	SourcePlaid     = "plaid"
	SourceSimpleFIN = "simplefin"
)

// Float returns a pointer to v, handy for the optional unit fields.
func Float(v float64) *float64 {
	return &v
}
