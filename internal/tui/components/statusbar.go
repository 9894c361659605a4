package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"clashtui/internal/tui/theme"
)

// StatusBar renders the bottom bar: left-aligned transient message,
// right-aligned mode/preset indicator. Long messages wrap to at most
// two lines instead of being cut mid-word.
type StatusBar struct {
	theme theme.Theme
}

// NewStatusBar builds a status bar for the theme.
func NewStatusBar(th theme.Theme) StatusBar {
	return StatusBar{theme: th}
}

// Render draws the bar at the given width.
func (b StatusBar) Render(width int, message string, isError bool, indicator string) string {
	if width <= 0 {
		return ""
	}

	indStyle := lipgloss.NewStyle().Foreground(b.theme.Secondary).Bold(true)
	ind := indStyle.Render(indicator)
	indWidth := lipgloss.Width(ind)

	msgWidth := width - indWidth - 1
	if msgWidth < 10 {
		msgWidth = width
		ind = ""
		indWidth = 0
	}

	msgColor := b.theme.Subtext
	if isError {
		msgColor = b.theme.Error
	}
	msg := wordwrap.String(message, msgWidth)
	if lines := strings.Split(msg, "\n"); len(lines) > 2 {
		msg = strings.Join(lines[:2], "\n")
	}
	msg = lipgloss.NewStyle().Foreground(msgColor).Render(msg)

	first := strings.Split(msg, "\n")[0]
	gap := width - lipgloss.Width(first) - indWidth
	if gap < 1 {
		gap = 1
	}

	rest := ""
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		rest = msg[i:]
	}
	return first + strings.Repeat(" ", gap) + ind + rest
}
