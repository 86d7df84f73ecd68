// Package tui is an interactive page browser for composed statements.
package tui

import (
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chrome is the number of lines taken by the title, status and help bars.
const chrome = 6

// Model holds the browser state. Pages are laid out lazily through the
// composer and cached once built.
type Model struct {
	theme    themes.Theme
	lastErr  error
	composer *engine.Composer
	pages    map[int]engine.PageRenderPlan
	columns  []engine.Column
	table    table.Model
	help     help.Model
	keymap   KeyMap
	config   Config
	current  int
	width    int
	height   int
	quitting bool
}

// New creates a browser over the composer's pages.
func New(composer *engine.Composer, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := Model{
		theme:    cfg.Theme,
		composer: composer,
		pages:    make(map[int]engine.PageRenderPlan),
		columns:  composer.Schedule().Columns,
		help:     help.New(),
		keymap:   DefaultKeyMap(),
		config:   cfg,
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.table = table.New(table.WithFocused(true), table.WithStyles(m.tableStyles()))
	m.load(0)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.NextPage):
			m.load(m.current + 1)
			return m, nil
		case key.Matches(msg, m.keymap.PrevPage):
			m.load(m.current - 1)
			return m, nil
		case key.Matches(msg, m.keymap.FirstPage):
			m.load(0)
			return m, nil
		case key.Matches(msg, m.keymap.LastPage):
			m.load(m.composer.TotalPages() - 1)
			return m, nil
		case key.Matches(msg, m.keymap.ToggleHeader):
			m.config.ShowHeader = !m.config.ShowHeader
			m.resize()
			return m, nil
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Page returns the zero-based index of the page on screen.
func (m Model) Page() int {
	return m.current
}

// Err returns the last layout error, if any.
func (m Model) Err() error {
	return m.lastErr
}

// load switches to page i, clamped to the document.
func (m *Model) load(i int) {
	total := m.composer.TotalPages()
	if i < 0 {
		i = 0
	}
	if i >= total {
		i = total - 1
	}

	plan, ok := m.pages[i]
	if !ok {
		var err error
		plan, err = m.composer.Page(i)
		if err != nil {
			m.lastErr = err
			return
		}
		m.pages[i] = plan
	}

	m.current = i
	m.lastErr = nil

	rows := plan.Table.Rows(len(m.columns))
	if len(rows) > 0 {
		rows = rows[1:] // column titles live in the table header
	}

	tableRows := make([]table.Row, len(rows))
	for r, row := range rows {
		tableRows[r] = table.Row(row)
	}

	// Columns must be replaced before rows so the widths fit the new data.
	m.table.SetRows(nil)
	m.table.SetColumns(fitColumns(m.columns, rows))
	m.table.SetRows(tableRows)
	m.table.SetCursor(0)
	m.resize()
}

func (m *Model) resize() {
	h := m.height - chrome
	if m.config.ShowHeader && m.current == 0 {
		h -= len(m.pages[0].Header.HolderLines) + 1
	}
	if m.help.ShowAll {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
}

func (m Model) tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = m.theme.Header.Padding(0, 1)
	s.Selected = m.theme.Selected
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	return s
}

// fitColumns sizes each column to its widest title or cell.
func fitColumns(columns []engine.Column, rows [][]string) []table.Column {
	out := make([]table.Column, len(columns))
	for i, c := range columns {
		w := lipgloss.Width(c.Title)
		for _, row := range rows {
			// Summary labels span several columns on paper; keep them from
			// stretching the first column.
			if i == 0 && len(row[0]) > 12 {
				continue
			}
			if cw := lipgloss.Width(row[i]); cw > w {
				w = cw
			}
		}
		out[i] = table.Column{Title: c.Title, Width: w}
	}
	return out
}
