package engine

import (
	"time"

	"github.com/Veraticus/statement-press/internal/model"
)

var ledgerStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// cashLedger builds n deposits of 100 each with a running balance.
func cashLedger(n int) []model.Transaction {
	txns := make([]model.Transaction, n)
	for i := range txns {
		txns[i] = model.Transaction{
			ID:             int64(i + 1),
			Date:           ledgerStart.AddDate(0, 0, i),
			Type:           model.TypePurchase,
			PaymentMethod:  "M-PESA",
			Amount:         100,
			DepositAmount:  100,
			RunningBalance: float64(100 * (i + 1)),
		}
	}
	return txns
}

// fundLedger returns two purchases followed by a sale.
func fundLedger() []model.Transaction {
	return []model.Transaction{
		{
			ID: 1, Date: ledgerStart, Type: model.TypePurchase, Description: "Initial",
			Units: model.Float(100), UnitPrice: model.Float(10), Amount: 1000, RunningUnits: 100,
		},
		{
			ID: 2, Date: ledgerStart.AddDate(0, 1, 0), Type: model.TypePurchase, PaymentMethod: "EFT",
			Units: model.Float(50), UnitPrice: model.Float(12), Amount: 600, RunningUnits: 150,
		},
		{
			ID: 3, Date: ledgerStart.AddDate(0, 2, 0), Type: model.TypeWithdrawal, PaymentMethod: "EFT",
			Units: model.Float(-30), UnitPrice: model.Float(12.5), Amount: -375, RunningUnits: 120,
		},
	}
}

func mustProfile(name string) Profile {
	p, err := LookupProfile(name)
	if err != nil {
		panic(err)
	}
	return p
}

func mustSchedule(name string) Schedule {
	s, err := NewSchedule(mustProfile(name))
	if err != nil {
		panic(err)
	}
	return s
}

// rowTexts returns the texts of one table row in column order.
func rowTexts(table Table, row int) []string {
	var out []string
	for _, c := range table.Cells {
		if c.Row == row && c.Style != StyleGroupHeader {
			out = append(out, c.Text)
		}
	}
	return out
}
