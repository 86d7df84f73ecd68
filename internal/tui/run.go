package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/statement-press/internal/engine"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the browser on the composer's pages and blocks until the user
// quits or ctx is canceled.
func Run(ctx context.Context, composer *engine.Composer, opts ...Option) error {
	if composer == nil {
		return fmt.Errorf("composer is required")
	}

	m := New(composer, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		return fmt.Errorf("statement browser: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.lastErr != nil {
		return fm.lastErr
	}
	return nil
}
