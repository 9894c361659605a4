package tui

import (
	"time"

	"clashtui/internal/api"
	"clashtui/internal/config"
)

// tickMsg drives the aggregator drain and status expiry.
type tickMsg time.Time

// daemonConfigMsg carries GET /configs.
type daemonConfigMsg struct {
	cfg api.ConfigResponse
	err error
}

// proxiesMsg carries GET /proxies.
type proxiesMsg struct {
	resp api.ProxiesResponse
	err  error
}

// rulesMsg carries GET /rules.
type rulesMsg struct {
	rules []api.Rule
	err   error
}

// connectionsMsg carries GET /connections.
type connectionsMsg struct {
	resp api.ConnectionsResponse
	err  error
}

// providersMsg carries GET /providers/proxies.
type providersMsg struct {
	providers map[string]api.Provider
	err       error
}

// switchedMsg reports a completed PUT /proxies/{group}.
type switchedMsg struct {
	group string
	node  string
	err   error
}

// modeSetMsg reports a completed PATCH /configs.
type modeSetMsg struct {
	mode api.ProxyMode
	err  error
}

// connClosedMsg reports one or all connections closed.
type connClosedMsg struct {
	id  string // empty for close-all
	err error
}

// providerUpdatedMsg reports a provider refresh.
type providerUpdatedMsg struct {
	name string
	err  error
}

// configSavedMsg reports the app config written to disk.
type configSavedMsg struct {
	err error
}

// logMsg is one streamed daemon log entry.
type logMsg api.LogEntry

// logStreamClosedMsg means the log stream ended.
type logStreamClosedMsg struct {
	err error
}

// configReloadedMsg arrives when the config file was edited on disk.
type configReloadedMsg struct {
	cfg *config.Config
	sum config.ChangeSummary
}

// clashFileMsg carries the parsed daemon YAML config.
type clashFileMsg struct {
	file *config.ClashFile
	err  error
}
