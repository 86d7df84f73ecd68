// Package terminal previews composed statement pages as lipgloss tables.
package terminal

import (
	"sort"
	"strings"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Styles holds the preview styles.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Header   lipgloss.Style
	Body     lipgloss.Style
	Summary  lipgloss.Style
	Footer   lipgloss.Style
	Border   lipgloss.Style
	Purchase lipgloss.Color
	Sale     lipgloss.Color
}

// DefaultStyles returns the preview styles used by the CLI and the browser.
func DefaultStyles() Styles {
	accent := lipgloss.Color("#5FA8D3")
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Body:     lipgloss.NewStyle().Padding(0, 1),
		Summary:  lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		Footer:   lipgloss.NewStyle().Faint(true),
		Border:   lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		Purchase: lipgloss.Color("#1B7A3E"),
		Sale:     lipgloss.Color("#B02626"),
	}
}

// Preview renders page plans as text.
type Preview struct {
	styles  Styles
	columns []engine.Column
	width   int
}

// NewPreview creates a preview for the given variant columns. Width limits
// the table; zero leaves it unbounded.
func NewPreview(columns []engine.Column, width int) *Preview {
	return &Preview{styles: DefaultStyles(), columns: columns, width: width}
}

// WithStyles replaces the preview styles.
func (p *Preview) WithStyles(s Styles) *Preview {
	p.styles = s
	return p
}

// Page renders one page: header lines, the table and the footer.
func (p *Preview) Page(plan engine.PageRenderPlan) string {
	parts := []string{p.header(plan.Header), p.Table(plan.Table)}
	if len(plan.Footer.Lines) > 0 {
		parts = append(parts, p.styles.Footer.Render(strings.Join(plan.Footer.Lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Document renders every page separated by a blank line.
func (p *Preview) Document(plans []engine.PageRenderPlan) string {
	pages := make([]string, 0, len(plans))
	for _, plan := range plans {
		pages = append(pages, p.Page(plan))
	}
	return strings.Join(pages, "\n\n")
}

func (p *Preview) header(h engine.HeaderBlock) string {
	label := p.styles.Label.Render(h.PageLabel)
	if h.Kind == engine.HeaderCompact {
		return label
	}

	lines := []string{p.styles.Title.Render(h.Title) + "  " + label}
	lines = append(lines, h.HolderLines...)
	lines = append(lines, p.styles.Label.Render(strings.Join(nonEmpty(h.Institution), " · ")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Table renders the header, body and summary rows of one page. Group header
// cells are folded into the column titles.
func (p *Preview) Table(t engine.Table) string {
	rows, styles := p.grid(t)
	if len(rows) == 0 {
		return ""
	}

	headers := make([]string, len(p.columns))
	for i, c := range p.columns {
		headers[i] = c.Title
		if g := groupTitle(t, i); g != "" {
			headers[i] = g + " " + c.Title
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.columnStyle(p.styles.Header, col)
			}
			s := p.styles.Body
			if row >= 0 && row < len(styles) && styles[row] == engine.StyleSummary {
				s = p.styles.Summary
			}
			if col >= 3 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	if p.width > 0 {
		tbl = tbl.Width(p.width)
	}
	return tbl.String()
}

func (p *Preview) columnStyle(base lipgloss.Style, col int) lipgloss.Style {
	if col < len(p.columns) {
		switch p.columns[col].Tone {
		case engine.TonePurchase:
			return base.Foreground(p.styles.Purchase)
		case engine.ToneSale:
			return base.Foreground(p.styles.Sale)
		}
	}
	return base
}

// grid collects body and summary rows in row order, skipping header rows.
func (p *Preview) grid(t engine.Table) ([][]string, []engine.CellStyle) {
	byRow := map[int][]string{}
	style := map[int]engine.CellStyle{}
	for _, c := range t.Cells {
		if c.Style == engine.StyleGroupHeader || c.Style == engine.StyleHeader {
			continue
		}
		row, ok := byRow[c.Row]
		if !ok {
			row = make([]string, len(p.columns))
			byRow[c.Row] = row
			style[c.Row] = c.Style
		}
		if c.Column < len(row) {
			row[c.Column] = c.Text
		}
	}

	keys := make([]int, 0, len(byRow))
	for k := range byRow {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	rows := make([][]string, 0, len(keys))
	styles := make([]engine.CellStyle, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, byRow[k])
		styles = append(styles, style[k])
	}
	return rows, styles
}

// groupTitle returns the super-header covering column col, if any.
func groupTitle(t engine.Table, col int) string {
	for _, c := range t.Cells {
		if c.Style != engine.StyleGroupHeader || c.Text == "" {
			continue
		}
		span := c.Span
		if span < 1 {
			span = 1
		}
		if col >= c.Column && col < c.Column+span {
			return c.Text
		}
	}
	return ""
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
