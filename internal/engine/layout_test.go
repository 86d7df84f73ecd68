package engine

import (
	"testing"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_ColumnX(t *testing.T) {
	s := mustSchedule(ProfileCashFlow)

	assert.InDelta(t, 10.0, s.ColumnX(0), 1e-9)
	assert.InDelta(t, 80.0, s.ColumnX(3), 1e-9)
	assert.InDelta(t, 10+15+20+20+15+15+20+23+35, s.ColumnX(7), 1e-9)
}

func TestSchedule_Mismatch(t *testing.T) {
	p := mustProfile(ProfileUnitFund)
	p.ColumnWidths = CashFlowWidths

	_, err := NewSchedule(p)
	assert.ErrorIs(t, err, common.ErrColumnScheduleMismatch)

	sched := mustSchedule(ProfileCashFlow)
	sched.Widths = sched.Widths[:5]
	_, err = LayoutPage(PageLayout{Records: cashLedger(1)}, Aggregates{}, sched, 200)
	assert.ErrorIs(t, err, common.ErrColumnScheduleMismatch)
}

func TestLayoutPage_CashFlowGeometry(t *testing.T) {
	sched := mustSchedule(ProfileCashFlow)
	txns := cashLedger(2)
	agg, err := Aggregate(txns, model.VariantCashFlow)
	require.NoError(t, err)

	origin := 224.0
	table, err := LayoutPage(PageLayout{Records: txns, RenderSummary: true}, agg, sched, origin)
	require.NoError(t, err)

	require.Len(t, table.Cells, 8*4)
	for _, c := range table.Cells {
		assert.InDelta(t, sched.ColumnX(c.Column), c.X, 1e-9)
		assert.InDelta(t, origin-float64(c.Row)*sched.RowHeight-sched.CellPadding, c.Y, 1e-9)
	}

	assert.Equal(t, []string{
		"Trans No.", "Trans Date", "Description", "Deposit", "Interest",
		"Withdrawal", "Withholding Tax", "Running Balance",
	}, rowTexts(table, 0))
	assert.Equal(t, []string{"1", "2024-01-01", "M-PESA", "100.00", "", "", "0.00", "100.00"}, rowTexts(table, 1))
	assert.Equal(t, []string{"Summations", "", "", "200.00", "0.00", "0.00", "0.00", "200.00"}, rowTexts(table, 3))

	for _, c := range table.Cells {
		switch c.Row {
		case 0:
			assert.Equal(t, StyleHeader, c.Style)
		case 3:
			assert.Equal(t, StyleSummary, c.Style)
			assert.Equal(t, ToneAccent, c.Tone)
		default:
			assert.Equal(t, StyleBody, c.Style)
		}
	}

	assert.Equal(t, []Rule{
		{Y: 217, X1: 10, X2: 200, Tone: ToneAccent, Kind: RuleHeader},
		{Y: 210, X1: 10, X2: 200, Tone: ToneNeutral, Kind: RuleBody},
		{Y: 203, X1: 10, X2: 200, Tone: ToneAccent, Kind: RuleSummary},
		{Y: 196, X1: 10, X2: 200, Tone: ToneAccent, Kind: RuleClosing},
	}, table.Rules)
}

func TestLayoutPage_NoSummaryClosesLastRow(t *testing.T) {
	sched := mustSchedule(ProfileCashFlow)
	txns := cashLedger(2)

	table, err := LayoutPage(PageLayout{Records: txns}, Aggregates{}, sched, 224)
	require.NoError(t, err)

	require.Len(t, table.Cells, 8*3)
	require.Len(t, table.Rules, 3)
	last := table.Rules[2]
	assert.Equal(t, RuleClosing, last.Kind)
	assert.Equal(t, ToneNeutral, last.Tone)
	assert.InDelta(t, 203.0, last.Y, 1e-9)
}

func TestLayoutPage_CashFlowTypeColumns(t *testing.T) {
	sched := mustSchedule(ProfileCashFlow)
	txns := []model.Transaction{
		{ID: 7, Date: ledgerStart, Type: model.TypeInterest, Description: "Interest", Amount: 12.5, TaxAmount: -1.875, RunningBalance: 1010.625},
		{ID: 8, Date: ledgerStart, Type: model.TypeWithdrawal, PaymentMethod: "EFT", Amount: -1500, RunningBalance: -489.375},
		{ID: 9, Date: ledgerStart, Type: "REVERSAL", Amount: 3, RunningBalance: 10},
	}

	table, err := LayoutPage(PageLayout{Records: txns}, Aggregates{}, sched, 224)
	require.NoError(t, err)

	assert.Equal(t, []string{"7", "2024-01-01", "Interest", "", "12.50", "", "1.88", "1,010.63"}, rowTexts(table, 1))
	assert.Equal(t, []string{"8", "2024-01-01", "EFT", "", "", "1,500.00", "0.00", "-489.38"}, rowTexts(table, 2))
	assert.Equal(t, []string{"9", "2024-01-01", "", "", "", "", "0.00", "10.00"}, rowTexts(table, 3))
}

func TestLayoutPage_WholeUnits(t *testing.T) {
	sched := mustSchedule(ProfileMoneyMarket)
	txns := []model.Transaction{
		{ID: 1, Date: ledgerStart, Type: model.TypePurchase, Amount: 1234.56, DepositAmount: 1234.56, RunningBalance: 1234.56},
	}
	agg, err := Aggregate(txns, model.VariantCashFlow)
	require.NoError(t, err)

	table, err := LayoutPage(PageLayout{Records: txns, RenderSummary: true}, agg, sched, 231)
	require.NoError(t, err)

	assert.Equal(t, "1,235.00", rowTexts(table, 1)[3])
	assert.Equal(t, "1,235.00", rowTexts(table, 2)[3])
}

func TestLayoutPage_UnitFund(t *testing.T) {
	sched := mustSchedule(ProfileUnitFund)
	txns := fundLedger()
	agg, err := Aggregate(txns, model.VariantUnitFund)
	require.NoError(t, err)

	origin := 237.0
	table, err := LayoutPage(PageLayout{Records: txns, RenderSummary: true}, agg, sched, origin)
	require.NoError(t, err)

	var groups []Cell
	for _, c := range table.Cells {
		if c.Style == StyleGroupHeader {
			groups = append(groups, c)
		}
	}
	require.Len(t, groups, 4)
	assert.Equal(t, "Purchases", groups[1].Text)
	assert.Equal(t, 3, groups[1].Column)
	assert.Equal(t, 3, groups[1].Span)
	assert.Equal(t, "Balance", groups[3].Text)
	assert.Equal(t, 9, groups[3].Column)
	assert.Equal(t, 2, groups[3].Span)

	assert.Equal(t, []string{
		"Trans Id", "Trans Date", "Description", "Units", "Price", "Cost",
		"Units", "Price", "Cost", "Units", "Nav",
	}, rowTexts(table, 1))

	assert.Equal(t, []string{
		"1", "2024-01-01", "Initial", "100.0000", "10.0000", "1,000.00",
		"", "", "", "100.0000", "10.0000",
	}, rowTexts(table, 2))
	assert.Equal(t, []string{
		"3", "2024-03-01", "EFT", "", "", "",
		"30.0000", "12.5000", "375.00", "120.0000", "12.5000",
	}, rowTexts(table, 4))

	assert.Equal(t, []string{
		"Summations", "", "", "150.0000", "", "1,600.00",
		"30.0000", "", "375.00", "120.0000", "12.5000",
	}, rowTexts(table, 5))

	closing := rowTexts(table, 6)
	require.Len(t, closing, 11)
	assert.Equal(t, "Closing balance as at: 2024-03-01", closing[0])
	assert.Equal(t, "Market Value:", closing[8])
	assert.Equal(t, "1,500.00", closing[9])

	// Body rows start below both header rows.
	for _, c := range table.Cells {
		if c.Row == 2 {
			assert.InDelta(t, origin-2*8-5, c.Y, 1e-9)
		}
	}

	var kinds []RuleKind
	for _, r := range table.Rules {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []RuleKind{
		RuleHeader, RuleHeader,
		RuleBody, RuleBody,
		RuleSummary, RuleSummary, RuleClosing,
	}, kinds)
}

func TestLayoutPage_UnitFundMissingUnits(t *testing.T) {
	sched := mustSchedule(ProfileUnitFund)
	txns := fundLedger()
	txns[0].Units = nil
	txns[0].UnitPrice = nil

	table, err := LayoutPage(PageLayout{Records: txns[:1]}, Aggregates{}, sched, 237)
	require.NoError(t, err)

	row := rowTexts(table, 2)
	assert.Equal(t, "", row[3])
	assert.Equal(t, "", row[4])
	assert.Equal(t, "1,000.00", row[5])
	assert.Equal(t, "", row[10])
}

func TestTable_Rows(t *testing.T) {
	sched := mustSchedule(ProfileUnitFund)
	table, err := LayoutPage(PageLayout{Records: fundLedger()}, Aggregates{}, sched, 237)
	require.NoError(t, err)

	rows := table.Rows(len(sched.Columns))
	require.Len(t, rows, 4)
	assert.Equal(t, "Trans Id", rows[0][0])
	assert.Equal(t, "3", rows[3][0])
}
