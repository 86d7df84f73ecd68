package terminal

import (
	"strings"
	"testing"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compose(t *testing.T, profile string, txns []model.Transaction) []engine.PageRenderPlan {
	t.Helper()
	p, err := engine.LookupProfile(profile)
	require.NoError(t, err)

	pages, err := engine.Compose(engine.Statement{
		Holder:       testutil.Holder("ACC-9"),
		Branding:     engine.DefaultBranding(),
		Transactions: txns,
		Profile:      p,
	})
	require.NoError(t, err)
	return pages
}

func TestPreview_CashFlowFirstPage(t *testing.T) {
	pages := compose(t, engine.ProfileCashFlow, testutil.CashLedger("ACC-9", 3))
	require.Len(t, pages, 1)

	out := NewPreview(engine.ColumnsFor(model.VariantCashFlow), 0).Page(pages[0])

	assert.Contains(t, out, "page 1/1")
	assert.Contains(t, out, "Running Balance")
	assert.Contains(t, out, "M-PESA")
	assert.Contains(t, out, "Summations")
	assert.Contains(t, out, "300.00")
	assert.Contains(t, out, "Member No. 00019")
	assert.Contains(t, out, "Bank account details")
}

func TestPreview_LaterPageIsCompact(t *testing.T) {
	pages := compose(t, engine.ProfileCashFlow, testutil.CashLedger("ACC-9", 30))
	require.Len(t, pages, 2)

	out := NewPreview(engine.ColumnsFor(model.VariantCashFlow), 0).Page(pages[1])
	assert.Contains(t, out, "page 2/2")
	assert.NotContains(t, out, "Member No.")
	assert.Contains(t, out, "Summations")

	first := NewPreview(engine.ColumnsFor(model.VariantCashFlow), 0).Page(pages[0])
	assert.NotContains(t, first, "Summations")
}

func TestPreview_UnitFundGroups(t *testing.T) {
	pages := compose(t, engine.ProfileUnitFund, testutil.FundLedger("ACC-9", 4))
	out := NewPreview(engine.ColumnsFor(model.VariantUnitFund), 0).Document(pages)

	assert.Contains(t, out, "Purchases Units")
	assert.Contains(t, out, "Sales Cost")
	assert.Contains(t, out, "Balance Nav")
	assert.Contains(t, out, "Market Value:")
}

func TestPreview_Document(t *testing.T) {
	pages := compose(t, engine.ProfileMoneyMarket, testutil.CashLedger("ACC-9", 40))
	out := NewPreview(engine.ColumnsFor(model.VariantCashFlow), 0).Document(pages)

	assert.Equal(t, 1, strings.Count(out, "Summations"))
	assert.Contains(t, out, "page 2/2")
}
