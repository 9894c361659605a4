package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"clashtui/internal/state"
)

// pageOrder is the tab-cycle order, matching the number keys.
var pageOrder = []state.Command{
	state.CmdGoHome, state.CmdGoRoutes, state.CmdGoRules, state.CmdGoConnections,
	state.CmdGoSettings, state.CmdGoUpdate, state.CmdGoLogs, state.CmdGoGroups,
	state.CmdGoPerformance,
}

var pageByCommand = map[state.Command]state.Page{
	state.CmdGoHome:        state.PageHome,
	state.CmdGoRoutes:      state.PageRoutes,
	state.CmdGoRules:       state.PageRules,
	state.CmdGoConnections: state.PageConnections,
	state.CmdGoSettings:    state.PageSettings,
	state.CmdGoUpdate:      state.PageUpdate,
	state.CmdGoLogs:        state.PageLogs,
	state.CmdGoGroups:      state.PageGroups,
	state.CmdGoPerformance: state.PagePerformance,
}

// handleKey translates a key press into a state-machine command (or a
// pure cursor movement) and applies it.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The filter input captures everything while active.
	if m.filtering {
		switch msg.String() {
		case "esc", "enter":
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Cursor movement and scrolling are view concerns, not transitions.
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	}
	if m.app.Page == state.PageLogs {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		if cmd != nil {
			return m, cmd
		}
	}

	cmd, arg := m.commandFor(msg)
	if cmd == state.CmdNone {
		return m, nil
	}
	return m.apply(cmd, arg)
}

// commandFor maps a key press to a Command plus its target argument.
func (m *Model) commandFor(msg tea.KeyMsg) (state.Command, string) {
	// Number keys jump straight to a page.
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return pageOrder[s[0]-'1'], ""
	}

	if m.app.Page == state.PageConfirmQuit {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return state.CmdConfirm, ""
		case key.Matches(msg, m.keys.Cancel):
			return state.CmdCancel, ""
		case key.Matches(msg, m.keys.Quit):
			return state.CmdCancel, ""
		}
		return state.CmdNone, ""
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return state.CmdQuit, ""
	case key.Matches(msg, m.keys.NextPage):
		return m.nextPageCommand(), ""
	case key.Matches(msg, m.keys.ToggleMode):
		return state.CmdToggleMode, ""
	case key.Matches(msg, m.keys.Preset):
		return state.CmdCyclePreset, ""
	case key.Matches(msg, m.keys.Help):
		return state.CmdToggleHelp, ""
	case key.Matches(msg, m.keys.Refresh):
		return state.CmdRefresh, ""
	case key.Matches(msg, m.keys.ProxyMode):
		return state.CmdCycleProxyMode, ""

	case key.Matches(msg, m.keys.Enter):
		switch {
		case m.app.RoutesExpanded():
			return state.CmdSwitchNode, m.selectedNode()
		case m.app.Page == state.PageRoutes:
			return state.CmdExpandGroup, m.selectedGroup()
		}
	case key.Matches(msg, m.keys.Back):
		if m.app.RoutesExpanded() {
			return state.CmdCollapseGroup, ""
		}
	case key.Matches(msg, m.keys.Test):
		if m.app.Page == state.PageRoutes {
			if g := m.targetGroup(); g != "" {
				return state.CmdTestGroup, g
			}
		}
	case key.Matches(msg, m.keys.TestAll):
		if m.app.Page == state.PageRoutes {
			return state.CmdTestAll, ""
		}
	case key.Matches(msg, m.keys.Favorite):
		if m.app.RoutesExpanded() {
			return state.CmdToggleFavorite, m.selectedNode()
		}
	case key.Matches(msg, m.keys.Close):
		if m.app.Page == state.PageConnections {
			if id := m.selectedConnection(); id != "" {
				return state.CmdCloseConnection, id
			}
		}
	case key.Matches(msg, m.keys.CloseAll):
		if m.app.Page == state.PageConnections {
			return state.CmdCloseAllConnections, ""
		}
	case key.Matches(msg, m.keys.Update):
		if m.app.Page == state.PageUpdate {
			if name := m.selectedProvider(); name != "" {
				return state.CmdUpdateProvider, name
			}
		}
	case key.Matches(msg, m.keys.Filter):
		switch m.app.Page {
		case state.PageRules, state.PageConnections:
			m.filtering = true
			m.filter.Focus()
		}
	}
	return state.CmdNone, ""
}

// apply runs the command through the transition function, then
// performs whatever side effect a legal command asks for.
func (m *Model) apply(cmd state.Command, arg string) (tea.Model, tea.Cmd) {
	next, eff := state.Apply(m.app, cmd, arg)
	prevPage := m.app.Page
	m.app = next

	switch eff {
	case state.EffectTerminate:
		m.shutdown()
		return m, tea.Quit

	case state.EffectAct:
		return m, m.perform(cmd, arg)
	}

	// Entering a page triggers its refresh.
	if m.app.Page != prevPage {
		m.nodeCursor = 0
		switch m.app.Page {
		case state.PageConnections:
			return m, m.fetchConnections()
		case state.PageRules:
			return m, m.fetchRules()
		case state.PageUpdate:
			return m, m.fetchProviders()
		case state.PageLogs:
			m.refreshLogView()
		}
	}
	return m, nil
}

// perform executes a side-effect command the machine approved.
func (m *Model) perform(cmd state.Command, arg string) tea.Cmd {
	switch cmd {
	case state.CmdSwitchNode:
		return m.switchNode(m.app.ExpandedGroup, arg)
	case state.CmdTestGroup:
		m.startBatch(arg)
		return nil
	case state.CmdTestAll:
		for _, g := range m.groups {
			m.startBatch(g)
		}
		return nil
	case state.CmdToggleFavorite:
		if m.cfg.ToggleFavorite(arg) {
			m.setStatus("starred "+arg, false)
		} else {
			m.setStatus("unstarred "+arg, false)
		}
		return m.saveConfig()
	case state.CmdCycleProxyMode:
		return m.setProxyMode(m.daemonCfg.Mode.Next())
	case state.CmdCloseConnection:
		return m.closeConnection(arg)
	case state.CmdCloseAllConnections:
		return m.closeAllConnections()
	case state.CmdUpdateProvider:
		return m.updateProvider(arg)
	case state.CmdRefresh:
		return tea.Batch(
			m.fetchDaemonConfig(), m.fetchProxies(), m.fetchRules(),
			m.fetchConnections(), m.fetchProviders(),
		)
	case state.CmdToggleHelp:
		m.showHelp = !m.showHelp
		return nil
	}
	return nil
}

func (m *Model) nextPageCommand() state.Command {
	for i, cmd := range pageOrder {
		if pageByCommand[cmd] == m.app.Page {
			return pageOrder[(i+1)%len(pageOrder)]
		}
	}
	return state.CmdGoHome
}

// targetGroup is the group a test command applies to: the expanded one
// if any, otherwise the one under the cursor.
func (m *Model) targetGroup() string {
	if m.app.RoutesExpanded() {
		return m.app.ExpandedGroup
	}
	return m.selectedGroup()
}

func (m *Model) selectedGroup() string {
	if m.groupCursor < len(m.groups) {
		return m.groups[m.groupCursor]
	}
	return ""
}

// selectedNode resolves the node under the cursor in the expanded
// group's favorite-first ordering.
func (m *Model) selectedNode() string {
	nodes := m.expandedNodes()
	if m.nodeCursor < len(nodes) {
		return nodes[m.nodeCursor]
	}
	return ""
}

// selectedConnection resolves the connection under the cursor in the
// filtered view, which is what the cursor is bounded by and what the
// page highlights.
func (m *Model) selectedConnection() string {
	conns := m.filteredConnections()
	if m.connCursor < len(conns) {
		return conns[m.connCursor].ID
	}
	return ""
}

func (m *Model) selectedProvider() string {
	names := m.providerNames()
	if m.providerCursor < len(names) {
		return names[m.providerCursor]
	}
	return ""
}

func (m *Model) moveCursor(delta int) {
	move := func(cur *int, n int) {
		if n == 0 {
			*cur = 0
			return
		}
		*cur += delta
		if *cur < 0 {
			*cur = 0
		}
		if *cur >= n {
			*cur = n - 1
		}
	}

	switch {
	case m.app.RoutesExpanded():
		move(&m.nodeCursor, len(m.expandedNodes()))
	case m.app.Page == state.PageRoutes:
		move(&m.groupCursor, len(m.groups))
	case m.app.Page == state.PageRules:
		move(&m.ruleCursor, len(m.filteredRules()))
	case m.app.Page == state.PageConnections:
		move(&m.connCursor, len(m.filteredConnections()))
	case m.app.Page == state.PageUpdate:
		move(&m.providerCursor, len(m.providerNames()))
	case m.app.Page == state.PageLogs:
		if delta < 0 {
			m.logView.LineUp(1)
		} else {
			m.logView.LineDown(1)
		}
	}
}
