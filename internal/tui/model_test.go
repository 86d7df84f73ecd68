package tui

import (
	"testing"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/testutil"
	"github.com/Veraticus/statement-press/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComposer(t *testing.T, profile string, n int) *engine.Composer {
	t.Helper()
	p, err := engine.LookupProfile(profile)
	require.NoError(t, err)

	c, err := engine.NewComposer(engine.Statement{
		Holder:       testutil.Holder("ACC-7"),
		Branding:     engine.DefaultBranding(),
		Transactions: testutil.CashLedger("ACC-7", n),
		Profile:      p,
	})
	require.NoError(t, err)
	return c
}

func press(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_PageNavigation(t *testing.T) {
	// 28 + 35 + 7 records: three pages.
	m := New(newComposer(t, engine.ProfileCashFlow, 70))
	assert.Equal(t, 0, m.Page())
	assert.Len(t, m.table.Rows(), 28)

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.Page())
	assert.Len(t, m.table.Rows(), 35)

	m = press(m, runes("G"))
	assert.Equal(t, 2, m.Page())
	// Seven records plus the summary row.
	assert.Len(t, m.table.Rows(), 8)
	assert.Equal(t, "Summations", m.table.Rows()[7][0])

	m = press(m, runes("n"))
	assert.Equal(t, 2, m.Page(), "next on the last page stays put")

	m = press(m, runes("p"), runes("g"))
	assert.Equal(t, 0, m.Page())

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.Page(), "previous on the first page stays put")
	assert.NoError(t, m.Err())
}

func TestModel_PagesAreCached(t *testing.T) {
	m := New(newComposer(t, engine.ProfileCashFlow, 40))
	m = press(m, runes("n"), runes("p"), runes("n"))
	assert.Len(t, m.pages, 2)
}

func TestModel_View(t *testing.T) {
	m := New(newComposer(t, engine.ProfileMoneyMarket, 10), WithTitle("Statement"), WithTheme(themes.GetTheme("catppuccin-mocha")))
	m = press(m, tea.WindowSizeMsg{Width: 140, Height: 50})

	view := m.View()
	assert.Contains(t, view, "page 1/1")
	assert.Contains(t, view, "Japheth Kiptoo")
	assert.Contains(t, view, "Running Balance")
	assert.Contains(t, view, "summary")

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.NotContains(t, m.View(), "Japheth Kiptoo")
}

func TestModel_HelpToggle(t *testing.T) {
	m := New(newComposer(t, engine.ProfileCashFlow, 5))
	assert.False(t, m.help.ShowAll)
	m = press(m, runes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "first page")
}

func TestModel_Quit(t *testing.T) {
	m := New(newComposer(t, engine.ProfileCashFlow, 5))
	next, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.(Model).View())
}

func TestFitColumns(t *testing.T) {
	cols := fitColumns(engine.ColumnsFor("cash-flow"), [][]string{
		{"1", "2024-01-01", "M-PESA", "1,000.00", "", "", "0.00", "1,000.00"},
		{"Summations", "", "", "1,000.00", "0.00", "0.00", "0.00", "1,000.00"},
	})
	require.Len(t, cols, 8)
	assert.Equal(t, len("Summations"), cols[0].Width)
	assert.Equal(t, len("Trans Date"), cols[1].Width)
	assert.Equal(t, len("Running Balance"), cols[7].Width)
}
