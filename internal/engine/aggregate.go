package engine

import (
	"fmt"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/shopspring/decimal"
)

// Aggregates holds the statement-wide totals printed in the summary block.
// It is computed once per statement and shared by every page.
type Aggregates struct {
	ClosingDate time.Time
	Variant     model.Variant

	// Cash-flow totals.
	FinalBalance     decimal.Decimal
	TotalTax         decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TotalInterest    decimal.Decimal

	// Unit-fund totals.
	PurchaseUnits decimal.Decimal
	PurchaseCost  decimal.Decimal
	SaleUnits     decimal.Decimal
	SaleCost      decimal.Decimal
	FinalUnits    decimal.Decimal
	LatestPrice   decimal.Decimal

	Count int
}

// MarketValue is the latest unit price times the closing unit balance.
func (a Aggregates) MarketValue() decimal.Decimal {
	return a.LatestPrice.Mul(a.FinalUnits)
}

// Aggregate totals the ledger in input order. Sums do not depend on the
// order of txns; the final-balance fields come from the last element.
func Aggregate(txns []model.Transaction, variant model.Variant) (Aggregates, error) {
	if len(txns) == 0 {
		return Aggregates{}, common.ErrEmptyStatement
	}

	agg := Aggregates{
		Variant: variant,
		Count:   len(txns),
	}

	for i := range txns {
		t := &txns[i]

		agg.TotalTax = agg.TotalTax.Add(decimal.NewFromFloat(t.TaxAmount))
		agg.TotalDeposits = agg.TotalDeposits.Add(decimal.NewFromFloat(t.DepositAmount))
		agg.TotalWithdrawals = agg.TotalWithdrawals.Add(decimal.NewFromFloat(t.WithdrawalAmount))
		agg.TotalInterest = agg.TotalInterest.Add(decimal.NewFromFloat(t.InterestAmount))

		switch t.Type {
		case model.TypePurchase:
			agg.PurchaseUnits = agg.PurchaseUnits.Add(optional(t.Units))
			agg.PurchaseCost = agg.PurchaseCost.Add(decimal.NewFromFloat(t.Amount))
		case model.TypeWithdrawal:
			agg.SaleUnits = agg.SaleUnits.Add(optional(t.Units))
			agg.SaleCost = agg.SaleCost.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	last := txns[len(txns)-1]
	agg.FinalBalance = decimal.NewFromFloat(last.RunningBalance)
	agg.FinalUnits = decimal.NewFromFloat(last.RunningUnits)
	agg.ClosingDate = last.Date

	if last.UnitPrice != nil {
		agg.LatestPrice = decimal.NewFromFloat(*last.UnitPrice)
	} else if variant == model.VariantUnitFund {
		return Aggregates{}, fmt.Errorf("%w: transaction %d on %s",
			common.ErrMissingUnitPrice, last.ID, last.Date.Format("2006-01-02"))
	}

	return agg, nil
}

func optional(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
