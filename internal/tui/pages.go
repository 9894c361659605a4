package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"clashtui/internal/api"
	"clashtui/internal/probe"
	"clashtui/internal/tui/layout"
)

func (m *Model) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(m.theme.Secondary).Bold(true)
}

func (m *Model) dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(m.theme.Overlay)
}

func (m *Model) cursorLine(selected bool, line string) string {
	if selected {
		return lipgloss.NewStyle().Foreground(m.theme.Primary).Render("> " + line)
	}
	return "  " + line
}

// latencyCell renders the latency column for a node: the spinner while
// a probe is unresolved, the colored delay or failure otherwise.
func (m *Model) latencyCell(node string) string {
	if m.agg.Testing(node) {
		return m.spin.View() + " testing"
	}
	meas, ok := m.latency[node]
	if !ok {
		return m.dimStyle().Render("—")
	}
	style := lipgloss.NewStyle().Foreground(m.theme.Rating(meas.Rating()))
	switch meas.Rating() {
	case probe.RatingTimeout:
		return style.Render("timeout")
	case probe.RatingError:
		return style.Render("error")
	default:
		return style.Render(fmt.Sprintf("%dms %s", meas.DelayMs, meas.Rating()))
	}
}

func (m *Model) viewHome() string {
	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Daemon") + "\n")
	b.WriteString(fmt.Sprintf("  controller  %s\n", m.client.BaseURL()))
	b.WriteString(fmt.Sprintf("  proxy mode  %s\n", m.daemonCfg.Mode))
	if m.daemonCfg.MixedPort != 0 {
		b.WriteString(fmt.Sprintf("  mixed port  %d\n", m.daemonCfg.MixedPort))
	} else if m.daemonCfg.Port != 0 {
		b.WriteString(fmt.Sprintf("  http port   %d\n", m.daemonCfg.Port))
	}
	b.WriteString("\n")

	b.WriteString(m.titleStyle().Render("Overview") + "\n")
	b.WriteString(fmt.Sprintf("  groups       %d\n", len(m.groups)))
	b.WriteString(fmt.Sprintf("  connections  %d\n", len(m.conns.Connections)))
	b.WriteString(fmt.Sprintf("  traffic      ↓%s ↑%s\n",
		formatBytes(m.conns.DownloadTotal), formatBytes(m.conns.UploadTotal)))
	b.WriteString("\n")
	b.WriteString(m.dimStyle().Render("  2:routes to pick a node · ? for help"))
	return b.String()
}

// expandedNodes is the expanded group's node list in display order:
// favorites first, then the group's own ordering.
func (m *Model) expandedNodes() []string {
	g, ok := m.proxies[m.app.ExpandedGroup]
	if !ok {
		return nil
	}
	fav := make([]string, 0, len(g.All))
	rest := make([]string, 0, len(g.All))
	for _, n := range g.All {
		if m.cfg.IsFavorite(n) {
			fav = append(fav, n)
		} else {
			rest = append(rest, n)
		}
	}
	return append(fav, rest...)
}

func (m *Model) viewRoutes() string {
	if m.app.RoutesExpanded() {
		return m.viewExpandedGroup()
	}

	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Groups") + "\n")
	if len(m.groups) == 0 {
		b.WriteString(m.dimStyle().Render("  no groups (r to refresh)"))
		return b.String()
	}
	widths := []int{28, 24, 10}
	for i, name := range m.groups {
		g := m.proxies[name]
		busy := ""
		if m.agg.InFlight(name) {
			busy = m.spin.View() + fmt.Sprintf(" %d left", m.agg.Pending(name))
		}
		line := layout.Columns(widths, name, g.Now, g.Type) + "  " + busy
		b.WriteString(m.cursorLine(i == m.groupCursor, line) + "\n")
	}
	b.WriteString("\n" + m.dimStyle().Render("  enter: expand · t: test · T: test all"))
	return b.String()
}

func (m *Model) viewExpandedGroup() string {
	group := m.app.ExpandedGroup
	g := m.proxies[group]

	var b strings.Builder
	header := fmt.Sprintf("%s (%s) → %s", group, g.Type, g.Now)
	b.WriteString(m.titleStyle().Render(header) + "\n")

	star := lipgloss.NewStyle().Foreground(m.theme.Star)
	widths := []int{2, 30}
	for i, node := range m.expandedNodes() {
		mark := " "
		if m.cfg.IsFavorite(node) {
			mark = star.Render("★")
		}
		name := node
		if node == g.Now {
			name = lipgloss.NewStyle().Foreground(m.theme.Success).Render(node + " ●")
		}
		line := layout.Columns(widths, mark, name) + "  " + m.latencyCell(node)
		b.WriteString(m.cursorLine(i == m.nodeCursor, line) + "\n")
	}
	b.WriteString("\n" + m.dimStyle().Render("  enter: switch · t: test · f: star · esc: back"))
	return b.String()
}

func (m *Model) filteredRules() []api.Rule {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		return m.rules
	}
	out := make([]api.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		if strings.Contains(strings.ToLower(r.Payload), q) ||
			strings.Contains(strings.ToLower(r.Proxy), q) ||
			strings.Contains(strings.ToLower(r.Type), q) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) viewRules() string {
	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Rules") + " ")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n")

	rules := m.filteredRules()
	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.ruleCursor >= visible {
		start = m.ruleCursor - visible + 1
	}
	widths := []int{16, 36, 20}
	for i := start; i < len(rules) && i < start+visible; i++ {
		r := rules[i]
		line := layout.Columns(widths, r.Type, r.Payload, r.Proxy)
		b.WriteString(m.cursorLine(i == m.ruleCursor, line) + "\n")
	}
	if len(rules) == 0 {
		b.WriteString(m.dimStyle().Render("  no rules match"))
	}

	if len(m.cfg.Rules.Whitelist) > 0 || len(m.cfg.Rules.Blacklist) > 0 {
		b.WriteString("\n" + m.titleStyle().Render("Local") + "\n")
		for _, r := range m.cfg.Rules.Whitelist {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(m.theme.Success).Render("allow ") + r + "\n")
		}
		for _, r := range m.cfg.Rules.Blacklist {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(m.theme.Error).Render("block ") + r + "\n")
		}
	}
	return b.String()
}

func (m *Model) filteredConnections() []api.Connection {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		return m.conns.Connections
	}
	out := make([]api.Connection, 0, len(m.conns.Connections))
	for _, c := range m.conns.Connections {
		if strings.Contains(strings.ToLower(c.Metadata.Host), q) ||
			strings.Contains(strings.ToLower(c.Metadata.DestinationIP), q) ||
			strings.Contains(strings.ToLower(strings.Join(c.Chains, " ")), q) {
			out = append(out, c)
		}
	}
	return out
}

func (m *Model) viewConnections() string {
	var b strings.Builder
	title := fmt.Sprintf("Connections (%d) ↓%s ↑%s",
		len(m.conns.Connections),
		formatBytes(m.conns.DownloadTotal), formatBytes(m.conns.UploadTotal))
	b.WriteString(m.titleStyle().Render(title) + " ")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
	}
	b.WriteString("\n")

	conns := m.filteredConnections()
	widths := []int{32, 20, 10, 10}
	visible := m.height - 8
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.connCursor >= visible {
		start = m.connCursor - visible + 1
	}
	for i := start; i < len(conns) && i < start+visible; i++ {
		c := conns[i]
		host := c.Metadata.Host
		if host == "" {
			host = c.Metadata.DestinationIP
		}
		host = fmt.Sprintf("%s:%s", host, c.Metadata.DestinationPort)
		chain := ""
		if len(c.Chains) > 0 {
			chain = c.Chains[len(c.Chains)-1]
		}
		line := layout.Columns(widths, host, chain,
			formatBytes(c.Download), formatBytes(c.Upload))
		b.WriteString(m.cursorLine(i == m.connCursor, line) + "\n")
	}
	if len(conns) == 0 {
		b.WriteString(m.dimStyle().Render("  no connections"))
	}
	b.WriteString("\n" + m.dimStyle().Render("  x: close · X: close all (expert) · /: filter"))
	return b.String()
}

func (m *Model) viewSettings() string {
	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Application") + "\n")
	b.WriteString(fmt.Sprintf("  config      %s\n", m.cfgPath))
	b.WriteString(fmt.Sprintf("  preset      %s\n", m.app.Preset))
	b.WriteString(fmt.Sprintf("  mode        %s\n", m.app.Mode))
	b.WriteString(fmt.Sprintf("  theme       %s\n", m.cfg.Theme))
	b.WriteString(fmt.Sprintf("  test url    %s\n", m.cfg.TestURL))
	b.WriteString(fmt.Sprintf("  timeout     %dms\n", m.cfg.TestTimeoutMs))
	b.WriteString(fmt.Sprintf("  probe cap   %d\n", m.cfg.ProbeCeiling))
	b.WriteString("\n")

	b.WriteString(m.titleStyle().Render("Daemon") + "\n")
	b.WriteString(fmt.Sprintf("  mode        %s\n", m.daemonCfg.Mode))
	b.WriteString(fmt.Sprintf("  log level   %s\n", m.daemonCfg.LogLevel))
	b.WriteString(fmt.Sprintf("  allow lan   %v\n", m.daemonCfg.AllowLAN))
	b.WriteString("\n")
	b.WriteString(m.dimStyle().Render("  edit the config file; changes reload live"))
	return b.String()
}

func (m *Model) providerNames() []string {
	names := make([]string, 0, len(m.providers))
	for name, p := range m.providers {
		if p.VehicleType == "Compatible" {
			continue // inline providers carry nothing updatable
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Model) viewUpdate() string {
	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Providers") + "\n")

	names := m.providerNames()
	if len(names) == 0 {
		b.WriteString(m.dimStyle().Render("  no updatable providers"))
		return b.String()
	}
	widths := []int{24, 10, 22}
	for i, name := range names {
		p := m.providers[name]
		line := layout.Columns(widths, name, p.VehicleType, formatUpdatedAt(p.UpdatedAt))
		if p.SubscriptionInfo != nil && p.SubscriptionInfo.Total > 0 {
			used := p.SubscriptionInfo.Upload + p.SubscriptionInfo.Download
			line += "  " + m.dimStyle().Render(fmt.Sprintf("%s / %s",
				formatBytes(used), formatBytes(p.SubscriptionInfo.Total)))
		}
		b.WriteString(m.cursorLine(i == m.providerCursor, line) + "\n")
	}
	b.WriteString("\n" + m.dimStyle().Render("  u: update provider (expert)"))
	return b.String()
}

func (m *Model) refreshLogView() {
	lines := make([]string, 0, len(m.logs))
	for _, e := range m.logs {
		color := m.theme.Subtext
		switch e.Type {
		case "warning":
			color = m.theme.Warning
		case "error":
			color = m.theme.Error
		case "debug":
			color = m.theme.Overlay
		}
		level := lipgloss.NewStyle().Foreground(color).Render(layout.Pad(e.Type, 7))
		lines = append(lines, level+" "+e.Payload)
	}
	atBottom := m.logView.AtBottom()
	m.logView.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.logView.GotoBottom()
	}
}

func (m *Model) viewLogs() string {
	var b strings.Builder
	b.WriteString(m.titleStyle().Render(fmt.Sprintf("Logs (%s)", m.cfg.LogLevel)) + "\n")
	if len(m.logs) == 0 {
		b.WriteString(m.dimStyle().Render("  waiting for entries…"))
		return b.String()
	}
	b.WriteString(m.logView.View())
	return b.String()
}

func (m *Model) viewGroups() string {
	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Custom groups") + "\n")
	if len(m.cfg.Groups) == 0 {
		b.WriteString(m.dimStyle().Render("  none defined (add [[groups]] to the config file)") + "\n")
	}
	for _, g := range m.cfg.Groups {
		b.WriteString(fmt.Sprintf("  %s  %s\n", layout.Pad(g.Name, 20),
			m.dimStyle().Render(strings.Join(g.Nodes, ", "))))
	}

	if m.clashFile != nil {
		b.WriteString("\n" + m.titleStyle().Render("Declared in daemon config") + "\n")
		for _, g := range m.clashFile.ProxyGroups {
			members := len(g.Proxies) + len(g.Use)
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				layout.Pad(g.Name, 20),
				m.dimStyle().Render(fmt.Sprintf("%s · %d members", g.Type, members))))
		}
	}
	return b.String()
}

func (m *Model) viewPerformance() string {
	var counts [6]int
	var best, worst string
	bestMs, worstMs := -1, -1
	for node, meas := range m.latency {
		counts[meas.Rating()]++
		if !meas.OK() {
			continue
		}
		if bestMs == -1 || meas.DelayMs < bestMs {
			best, bestMs = node, meas.DelayMs
		}
		if meas.DelayMs > worstMs {
			worst, worstMs = node, meas.DelayMs
		}
	}

	var b strings.Builder
	b.WriteString(m.titleStyle().Render("Probe statistics") + "\n")
	b.WriteString(fmt.Sprintf("  measured  %d nodes\n\n", len(m.latency)))

	row := func(r probe.Rating) {
		style := lipgloss.NewStyle().Foreground(m.theme.Rating(r))
		b.WriteString(fmt.Sprintf("  %s  %d\n", style.Render(layout.Pad(r.String(), 8)), counts[r]))
	}
	row(probe.RatingFast)
	row(probe.RatingGood)
	row(probe.RatingSlow)
	row(probe.RatingTimeout)
	row(probe.RatingError)

	if best != "" {
		b.WriteString(fmt.Sprintf("\n  best   %s (%dms)\n", best, bestMs))
		b.WriteString(fmt.Sprintf("  worst  %s (%dms)\n", worst, worstMs))
	}
	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatUpdatedAt(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
