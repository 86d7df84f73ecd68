package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	plan := m.pages[m.current]
	parts := []string{m.renderTitle(plan)}

	if m.config.ShowHeader && plan.Header.Kind == engine.HeaderFull {
		parts = append(parts, m.renderHolder(plan.Header))
	}

	parts = append(parts,
		m.theme.BorderedBox.Render(m.table.View()),
		m.renderStatus(plan),
		m.help.View(m.keymap),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTitle(plan engine.PageRenderPlan) string {
	title := m.config.Title
	if plan.Header.Title != "" {
		title = plan.Header.Title
	}
	left := m.theme.Title.Render(title)
	right := m.theme.Subtitle.Render(plan.Header.PageLabel)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHolder(h engine.HeaderBlock) string {
	lines := make([]string, 0, len(h.HolderLines))
	for i, line := range h.HolderLines {
		if i == 0 {
			lines = append(lines, m.theme.Bold.Render(line))
			continue
		}
		lines = append(lines, m.theme.Normal.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderStatus(plan engine.PageRenderPlan) string {
	if m.lastErr != nil {
		return m.theme.StatusError.Render("Error: " + m.lastErr.Error())
	}

	status := fmt.Sprintf("%d records on this page", len(plan.Layout.Records))
	if plan.Layout.RenderSummary {
		status += " · summary"
	}
	return m.theme.StatusInfo.Render(status)
}
