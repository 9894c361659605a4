package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"clashtui/internal/state"
	"clashtui/internal/tui/components"
	"clashtui/internal/tui/layout"
)

var tabPages = []state.Page{
	state.PageHome, state.PageRoutes, state.PageRules, state.PageConnections,
	state.PageSettings, state.PageUpdate, state.PageLogs, state.PageGroups,
	state.PagePerformance,
}

// View implements tea.Model. It renders from the model's current state
// and mutates nothing.
func (m *Model) View() string {
	if m.showHelp {
		return components.RenderHelp(m.width)
	}

	var b strings.Builder
	b.WriteString(m.viewTabs())
	b.WriteString("\n")

	body := m.viewPage()
	b.WriteString(body)

	// Pin the status bar to the bottom.
	used := lipgloss.Height(b.String())
	for i := used; i < m.height-1; i++ {
		b.WriteString("\n")
	}
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m *Model) viewTabs() string {
	active := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(m.theme.Overlay)

	parts := make([]string, 0, len(tabPages))
	for i, p := range tabPages {
		label := fmt.Sprintf("%d:%s", i+1, p)
		if p == m.app.Page || (m.app.Page == state.PageConfirmQuit && p == state.PageHome) {
			parts = append(parts, active.Render(label))
		} else {
			parts = append(parts, inactive.Render(label))
		}
	}
	return layout.Truncate(strings.Join(parts, "  "), m.width)
}

func (m *Model) viewPage() string {
	switch m.app.Page {
	case state.PageHome:
		return m.viewHome()
	case state.PageRoutes:
		return m.viewRoutes()
	case state.PageRules:
		return m.viewRules()
	case state.PageConnections:
		return m.viewConnections()
	case state.PageSettings:
		return m.viewSettings()
	case state.PageUpdate:
		return m.viewUpdate()
	case state.PageLogs:
		return m.viewLogs()
	case state.PageGroups:
		return m.viewGroups()
	case state.PagePerformance:
		return m.viewPerformance()
	case state.PageConfirmQuit:
		return m.viewConfirmQuit()
	default:
		return ""
	}
}

func (m *Model) viewStatusBar() string {
	indicator := fmt.Sprintf("%s · %s", m.app.Mode, m.app.Preset)
	return m.bar.Render(m.width, m.app.Status.Text, m.app.Status.Error, indicator)
}

func (m *Model) viewConfirmQuit() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 3)
	prompt := lipgloss.NewStyle().Foreground(m.theme.Text).Render("Quit clashtui?") +
		"\n\n" +
		lipgloss.NewStyle().Foreground(m.theme.Subtext).Render("y: quit    n: back")
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, box.Render(prompt))
}
