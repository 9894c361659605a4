package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"clashtui/internal/api"
	"clashtui/internal/config"
)

// apiTimeout bounds the fire-and-forget daemon calls issued from the
// loop. Probes carry their own timeout.
const apiTimeout = 10 * time.Second

// tick schedules the next drain of the aggregator.
func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchDaemonConfig() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		cfg, err := m.client.Config(ctx)
		return daemonConfigMsg{cfg: cfg, err: err}
	}
}

func (m Model) fetchProxies() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		resp, err := m.client.Proxies(ctx)
		return proxiesMsg{resp: resp, err: err}
	}
}

func (m Model) fetchRules() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		rules, err := m.client.Rules(ctx)
		return rulesMsg{rules: rules, err: err}
	}
}

func (m Model) fetchConnections() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		resp, err := m.client.Connections(ctx)
		return connectionsMsg{resp: resp, err: err}
	}
}

func (m Model) fetchProviders() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		providers, err := m.client.Providers(ctx)
		return providersMsg{providers: providers, err: err}
	}
}

func (m Model) switchNode(group, node string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		err := m.client.SwitchNode(ctx, group, node)
		return switchedMsg{group: group, node: node, err: err}
	}
}

func (m Model) setProxyMode(mode api.ProxyMode) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		err := m.client.SetMode(ctx, mode)
		return modeSetMsg{mode: mode, err: err}
	}
}

func (m Model) closeConnection(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		err := m.client.CloseConnection(ctx, id)
		return connClosedMsg{id: id, err: err}
	}
}

func (m Model) closeAllConnections() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		err := m.client.CloseAllConnections(ctx)
		return connClosedMsg{err: err}
	}
}

func (m Model) updateProvider(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		err := m.client.UpdateProvider(ctx, name)
		return providerUpdatedMsg{name: name, err: err}
	}
}

func (m Model) saveConfig() tea.Cmd {
	// Deep copy: the loop keeps mutating favorites while the save runs.
	cfg := m.cfg.Clone()
	path := m.cfgPath
	return func() tea.Msg {
		return configSavedMsg{err: cfg.Save(path)}
	}
}

func (m Model) loadClashFile() tea.Cmd {
	path := m.cfg.ClashConfigPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		file, err := config.LoadClashFile(path)
		return clashFileMsg{file: file, err: err}
	}
}

// waitForLog blocks on the log channel and converts the next entry into
// a message. Re-issued after every delivery.
func waitForLog(ch <-chan api.LogEntry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return logStreamClosedMsg{}
		}
		return logMsg(entry)
	}
}

// waitForReload blocks on the config-watch channel.
func waitForReload(ch <-chan configReloadedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// startLogStream opens the daemon's streaming endpoint in its own
// goroutine; entries arrive through the channel via waitForLog.
func (m Model) startLogStream(ctx context.Context) tea.Cmd {
	level := m.cfg.LogLevel
	client := m.client
	ch := m.logChan
	go func() {
		_ = client.StreamLogs(ctx, level, ch)
	}()
	return waitForLog(ch)
}
