package tui

import "github.com/Veraticus/statement-press/internal/tui/themes"

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	Title      string
	Width      int
	Height     int
	ShowHelp   bool
	ShowHeader bool
	AltScreen  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:      themes.Default,
		Width:      120,
		Height:     40,
		ShowHeader: true,
		AltScreen:  true,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithTitle sets the title shown above every page.
func WithTitle(title string) Option {
	return func(c *Config) { c.Title = title }
}

// WithSize sets the initial terminal size, before the first resize event.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) { c.AltScreen = enabled }
}
