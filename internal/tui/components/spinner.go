// Package components holds small reusable widgets shared by the pages.
package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"clashtui/internal/tui/theme"
)

// NewSpinner returns the themed spinner used for in-flight probes and
// pending API calls.
func NewSpinner(th theme.Theme) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(th.Primary)
	return s
}
