// Package tui is the coordination loop: a single Bubble Tea model that
// exclusively owns all mutable state. Input keys become state-machine
// commands, network work runs as fire-and-forget commands reporting
// back through typed messages, and a periodic tick drains the probe
// aggregator. No handler blocks on I/O.
package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"clashtui/internal/api"
	"clashtui/internal/config"
	"clashtui/internal/probe"
	"clashtui/internal/state"
	"clashtui/internal/tui/components"
	"clashtui/internal/tui/theme"
)

// statusTTL is how long a transient status message stays visible.
const statusTTL = 5 * time.Second

// maxLogLines bounds the in-memory log buffer.
const maxLogLines = 1000

// Model is the single owner of all mutable state.
type Model struct {
	cfg     *config.Config
	cfgPath string
	client  *api.Client
	sched   *probe.Scheduler
	agg     *probe.Aggregator

	app  state.AppState
	keys KeyMap

	theme theme.Theme
	bar   components.StatusBar
	spin  spinner.Model

	width  int
	height int

	// Daemon data, refreshed on demand.
	daemonCfg api.ConfigResponse
	proxies   map[string]api.Proxy
	groups    []string // selectable group names, sorted
	rules     []api.Rule
	conns     api.ConnectionsResponse
	providers map[string]api.Provider
	clashFile *config.ClashFile

	// Merged probe results, node name -> last measurement.
	latency map[string]probe.Measurement

	// Per-page cursors.
	groupCursor    int
	nodeCursor     int
	ruleCursor     int
	connCursor     int
	providerCursor int

	filter    textinput.Model
	filtering bool

	logView viewport.Model
	logs    []api.LogEntry
	logChan chan api.LogEntry

	showHelp bool

	reloadCh  chan configReloadedMsg
	stopWatch func()
	streamCtx context.Context
	stopLogs  context.CancelFunc
}

// New builds the model. The caller supplies the loaded config and the
// path it came from (for saves and the file watcher).
func New(cfg *config.Config, cfgPath string, client *api.Client) *Model {
	th := theme.FromName(cfg.Theme)
	sched := newScheduler(client, cfg)

	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.CharLimit = 64

	streamCtx, stopLogs := context.WithCancel(context.Background())

	return &Model{
		cfg:       cfg,
		cfgPath:   cfgPath,
		client:    client,
		sched:     sched,
		agg:       probe.NewAggregator(sched.Results()),
		app:       state.New(state.ParsePreset(cfg.Preset)),
		keys:      defaultKeys,
		theme:     th,
		bar:       components.NewStatusBar(th),
		spin:      components.NewSpinner(th),
		width:     80,
		height:    24,
		proxies:   map[string]api.Proxy{},
		providers: map[string]api.Provider{},
		latency:   map[string]probe.Measurement{},
		filter:    filter,
		logView:   viewport.New(80, 20),
		logChan:   make(chan api.LogEntry, 64),
		reloadCh:  make(chan configReloadedMsg, 1),
		streamCtx: streamCtx,
		stopLogs:  stopLogs,
	}
}

// newScheduler binds the probe engine to the client. The test URL and
// ceiling are frozen per engine; a live reload that changes them builds
// a fresh engine instead of mutating values the workers read.
func newScheduler(client *api.Client, cfg *config.Config) *probe.Scheduler {
	testURL := cfg.TestURL
	return probe.NewScheduler(
		probe.ProberFunc(func(ctx context.Context, node string, timeout time.Duration) (int, error) {
			return client.ProbeLatency(ctx, node, testURL, timeout)
		}),
		probe.WithCeiling(cfg.ProbeCeiling),
	)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if stop, err := config.Watch(m.cfgPath, func(cfg *config.Config, sum config.ChangeSummary) {
		select {
		case m.reloadCh <- configReloadedMsg{cfg: cfg, sum: sum}:
		default:
		}
	}); err == nil {
		m.stopWatch = stop
	}

	cmds := []tea.Cmd{
		tick(),
		m.spin.Tick,
		m.fetchDaemonConfig(),
		m.fetchProxies(),
		m.fetchRules(),
		m.fetchConnections(),
		m.fetchProviders(),
		m.startLogStream(m.streamCtx),
		waitForReload(m.reloadCh),
	}
	if c := m.loadClashFile(); c != nil {
		cmds = append(cmds, c)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model. Every mutation of the model happens
// here, on the loop's goroutine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width
		m.logView.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if sum := m.agg.Drain(); sum.Changed() {
			for _, u := range sum.Updates {
				m.latency[u.Node] = u.Measurement
			}
			for _, b := range sum.Completed {
				m.setStatus(fmt.Sprintf("tested %s (%d nodes)", b.Group, len(b.Nodes)), false)
			}
		}
		m.expireStatus()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case daemonConfigMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.daemonCfg = msg.cfg
		return m, nil

	case proxiesMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.setProxies(msg.resp.Proxies)
		return m, nil

	case rulesMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.rules = msg.rules
		return m, nil

	case connectionsMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.conns = msg.resp
		if m.connCursor >= len(m.conns.Connections) {
			m.connCursor = 0
		}
		return m, nil

	case providersMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			return m, nil
		}
		m.providers = msg.providers
		return m, nil

	case switchedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("switch failed: %v", msg.err), true)
			return m, nil
		}
		// The most recent switch is authoritative; reflect it without
		// waiting for the next full refresh.
		if p, ok := m.proxies[msg.group]; ok {
			p.Now = msg.node
			m.proxies[msg.group] = p
		}
		m.setStatus(fmt.Sprintf("switched %s to %s", msg.group, msg.node), false)
		return m, m.fetchProxies()

	case modeSetMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("mode change failed: %v", msg.err), true)
			return m, nil
		}
		m.daemonCfg.Mode = msg.mode
		m.setStatus(fmt.Sprintf("proxy mode: %s", msg.mode), false)
		return m, nil

	case connClosedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("close failed: %v", msg.err), true)
			return m, nil
		}
		if msg.id == "" {
			m.setStatus("closed all connections", false)
		} else {
			m.setStatus("connection closed", false)
		}
		return m, m.fetchConnections()

	case providerUpdatedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("update %s failed: %v", msg.name, msg.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("provider %s updated", msg.name), false)
		return m, m.fetchProviders()

	case configSavedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("config save failed: %v", msg.err), true)
		}
		return m, nil

	case configReloadedMsg:
		m.applyReloadedConfig(msg.cfg)
		m.setStatus(msg.sum.String(), false)
		return m, waitForReload(m.reloadCh)

	case clashFileMsg:
		if msg.err == nil {
			m.clashFile = msg.file
		}
		return m, nil

	case logMsg:
		m.logs = append(m.logs, api.LogEntry(msg))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		if m.app.Page == state.PageLogs {
			m.refreshLogView()
		}
		return m, waitForLog(m.logChan)

	case logStreamClosedMsg:
		return m, nil
	}

	return m, nil
}

// setProxies rebuilds the group index from a fresh proxy table and
// forgets measurements for nodes that no longer exist.
func (m *Model) setProxies(proxies map[string]api.Proxy) {
	m.proxies = proxies

	m.groups = m.groups[:0]
	for name, p := range proxies {
		if p.IsGroup() {
			m.groups = append(m.groups, name)
		}
	}
	sort.Strings(m.groups)

	if m.groupCursor >= len(m.groups) {
		m.groupCursor = 0
	}
	m.agg.Forget(func(node string) bool {
		_, ok := proxies[node]
		return ok
	})
	for node := range m.latency {
		if _, ok := proxies[node]; !ok {
			delete(m.latency, node)
		}
	}
}

// applyReloadedConfig takes an edited config file into use. The preset
// change goes through the state machine so mode and visibility follow.
func (m *Model) applyReloadedConfig(cfg *config.Config) {
	old := m.cfg
	m.cfg = cfg

	if cfg.Preset != old.Preset {
		p := state.ParsePreset(cfg.Preset)
		m.app.Preset = p
		m.app.Mode = p.Policy().DefaultMode
	}
	if cfg.Theme != old.Theme {
		m.theme = theme.FromName(cfg.Theme)
		m.bar = components.NewStatusBar(m.theme)
		m.spin = components.NewSpinner(m.theme)
	}
	if cfg.TestURL != old.TestURL || cfg.ProbeCeiling != old.ProbeCeiling {
		// In-flight probes keep reporting into the superseded engine's
		// channel; nothing drains it, so they are dropped wholesale.
		m.sched = newScheduler(m.client, cfg)
		m.agg = probe.NewAggregator(m.sched.Results())
	}
}

// startBatch launches probes for every testable node of the group.
// Non-blocking: the scheduler allocates the epoch and returns.
func (m *Model) startBatch(group string) {
	g, ok := m.proxies[group]
	if !ok {
		m.setStatus(fmt.Sprintf("unknown group %q", group), true)
		return
	}
	nodes := make([]string, 0, len(g.All))
	for _, n := range g.All {
		if p, ok := m.proxies[n]; !ok || p.IsTestable() {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		m.setStatus(fmt.Sprintf("%s has no testable nodes", group), true)
		return
	}
	timeout := time.Duration(m.cfg.TestTimeoutMs) * time.Millisecond
	batch := m.sched.StartBatch(context.Background(), group, nodes, 0, timeout)
	m.agg.Track(batch)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.app.Status = state.Status{Text: text, Error: isErr, At: time.Now()}
}

func (m *Model) expireStatus() {
	if m.app.Status.Text != "" && time.Since(m.app.Status.At) > statusTTL {
		m.app.Status = state.Status{}
	}
}

// shutdown releases the watcher and the log stream. Called on quit.
func (m *Model) shutdown() {
	if m.stopWatch != nil {
		m.stopWatch()
	}
	if m.stopLogs != nil {
		m.stopLogs()
	}
}
