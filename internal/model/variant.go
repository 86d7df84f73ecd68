package model

import "fmt"

// Variant selects the column schedule and summary shape of a statement.
type Variant string

const (
	// VariantCashFlow is the deposit / interest / withdrawal ledger.
	VariantCashFlow Variant = "cash-flow"
	// VariantUnitFund is the unit-based fund ledger with purchases and sales.
	VariantUnitFund Variant = "unit-fund"
)

// ParseVariant converts user input into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantCashFlow, VariantUnitFund:
		return Variant(s), nil
	case "mmf", "cashflow":
		return VariantCashFlow, nil
	case "bf", "unitfund", "fund":
		return VariantUnitFund, nil
	default:
		return "", fmt.Errorf("unknown statement variant %q", s)
	}
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return string(v)
}
