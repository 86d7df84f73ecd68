// Package themes holds the color schemes of the statement browser.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Header        lipgloss.Style
	Summary       lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	BorderedBox   lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Foreground    lipgloss.Color
	Purchase      lipgloss.Color
	Sale          lipgloss.Color
	SelectedColor lipgloss.Color
}

func build(primary, muted, border, fg, subtle, purchase, sale, selFg lipgloss.Color) Theme {
	return Theme{
		Primary:       primary,
		Muted:         muted,
		Border:        border,
		Foreground:    fg,
		Purchase:      purchase,
		Sale:          sale,
		SelectedColor: selFg,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(subtle),
		Normal: lipgloss.NewStyle().
			Foreground(fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(fg),
		Selected: lipgloss.NewStyle().
			Background(primary).
			Foreground(selFg).
			Bold(true),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
		Summary: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		StatusInfo: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		StatusError: lipgloss.NewStyle().
			Foreground(sale).
			Bold(true),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

// Default is the default theme.
var Default = build(
	lipgloss.Color("#3b82f6"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#a3a3a3"),
	lipgloss.Color("#10b981"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#fafafa"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(
	lipgloss.Color("#89b4fa"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#a6adc8"),
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#1e1e2e"),
)

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
