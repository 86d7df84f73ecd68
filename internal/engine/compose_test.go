package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashStatement(n int) Statement {
	return Statement{
		Name:         "member-42",
		Transactions: cashLedger(n),
		Profile:      mustProfile(ProfileCashFlow),
		Branding:     DefaultBranding(),
		Holder: model.Holder{
			Name:          "Jane Wanjiku",
			PostalAddress: "100-00100",
			Email:         "jane@example.com",
			Phone:         "0700000000",
			MemberNo:      "M-42",
			AccountNo:     "ACC-42",
			Product:       "CIC Money Market Fund",
		},
	}
}

func TestCompose_ThirtyRecordsSpillToSecondPage(t *testing.T) {
	pages, err := Compose(cashStatement(30))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	first, second := pages[0], pages[1]

	assert.Len(t, first.Layout.Records, 28)
	assert.Equal(t, int64(1), first.Layout.Records[0].ID)
	assert.Equal(t, int64(28), first.Layout.Records[27].ID)
	assert.False(t, first.Layout.RenderSummary)
	assert.True(t, first.Layout.IsFirst)
	assert.InDelta(t, 297.0-73.0, first.Layout.OriginY, 1e-9)
	for _, c := range first.Table.Cells {
		assert.NotEqual(t, StyleSummary, c.Style)
	}

	assert.Len(t, second.Layout.Records, 2)
	assert.Equal(t, int64(29), second.Layout.Records[0].ID)
	assert.True(t, second.Layout.RenderSummary)
	assert.True(t, second.Layout.IsLast)
	assert.InDelta(t, 297.0-25.0, second.Layout.OriginY, 1e-9)

	summary := rowTexts(second.Table, 3)
	require.NotEmpty(t, summary)
	assert.Equal(t, "Summations", summary[0])
	assert.Equal(t, "3,000.00", summary[7])
}

func TestCompose_TwentyEightRecordsFitOnePage(t *testing.T) {
	pages, err := Compose(cashStatement(28))
	require.NoError(t, err)
	require.Len(t, pages, 1)

	page := pages[0]
	assert.Len(t, page.Layout.Records, 28)
	assert.True(t, page.Layout.IsFirst)
	assert.True(t, page.Layout.IsLast)
	assert.True(t, page.Layout.RenderSummary)
	assert.Equal(t, "Summations", rowTexts(page.Table, 29)[0])
}

func TestCompose_Headers(t *testing.T) {
	stmt := cashStatement(40)
	stmt.GeneratedAt = time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)

	c, err := NewComposer(stmt)
	require.NoError(t, err)
	require.Equal(t, 2, c.TotalPages())

	first, err := c.Page(0)
	require.NoError(t, err)
	assert.Equal(t, HeaderFull, first.Header.Kind)
	assert.Equal(t, "CIC Money Market Fund | 2024-06-30", first.Header.Title)
	assert.Equal(t, []string{
		"Jane Wanjiku", "P.O Box: 100-00100", "Email: jane@example.com", "Tel. No. 0700000000",
	}, first.Header.HolderLines)
	assert.Contains(t, first.Header.Institution, "Member No. M-42")
	assert.Contains(t, first.Header.Institution, "Account No. ACC-42")

	second, err := c.Page(1)
	require.NoError(t, err)
	assert.Equal(t, HeaderCompact, second.Header.Kind)
	assert.Equal(t, "page 2/2", second.Header.PageLabel)

	_, err = c.Page(2)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCompose_GeneratedAtFallsBackToClosingDate(t *testing.T) {
	pages, err := Compose(cashStatement(3))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(pages[0].Header.Title, "| 2024-01-03"))
}

func TestCompose_Footer(t *testing.T) {
	pages, err := Compose(cashStatement(40))
	require.NoError(t, err)

	for _, p := range pages {
		require.NotEmpty(t, p.Footer.Lines)
		for _, line := range p.Footer.Lines {
			assert.LessOrEqual(t, len(line), FooterWidth)
		}
		assert.Contains(t, strings.Join(p.Footer.Lines, " "), "KCOOKENA.")
	}

	assert.Empty(t, NewFooter("  ").Lines)
}

func TestNewFooter_LineLimit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		lines []int
	}{
		{"default branding", DefaultBranding().FooterText, nil},
		{"hyphenated words", strings.Repeat("CO-OP ", 40), []int{95, 95, 47}},
		{"word over the limit", strings.Repeat("x", 250), []int{100, 100, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			footer := NewFooter(tt.text)
			require.NotEmpty(t, footer.Lines)

			var widths []int
			for _, line := range footer.Lines {
				assert.LessOrEqual(t, len(line), FooterWidth, "line %q", line)
				widths = append(widths, len(line))
			}
			if tt.lines != nil {
				assert.Equal(t, tt.lines, widths)
			}
		})
	}

	for _, word := range strings.Fields(strings.Join(NewFooter(strings.Repeat("CO-OP ", 40)).Lines, " ")) {
		assert.Equal(t, "CO-OP", word)
	}
}

func TestCompose_Errors(t *testing.T) {
	t.Run("empty ledger", func(t *testing.T) {
		_, err := Compose(cashStatement(0))
		assert.ErrorIs(t, err, common.ErrEmptyStatement)
	})

	t.Run("bad capacity", func(t *testing.T) {
		stmt := cashStatement(5)
		stmt.Profile.LaterPageCapacity = 0
		_, err := Compose(stmt)
		assert.ErrorIs(t, err, common.ErrInvalidCapacity)
	})

	t.Run("schedule mismatch", func(t *testing.T) {
		stmt := cashStatement(5)
		stmt.Profile.ColumnWidths = UnitFundWidths
		_, err := Compose(stmt)
		assert.ErrorIs(t, err, common.ErrColumnScheduleMismatch)
	})

	t.Run("missing closing price aborts the whole statement", func(t *testing.T) {
		txns := fundLedger()
		txns[2].UnitPrice = nil
		pages, err := Compose(Statement{Transactions: txns, Profile: mustProfile(ProfileUnitFund)})
		assert.ErrorIs(t, err, common.ErrMissingUnitPrice)
		assert.Nil(t, pages)
	})
}
