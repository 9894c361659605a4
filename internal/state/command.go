package state

// Command is one discrete user intention. Every command passes through
// the capability table before it may mutate anything.
type Command int

const (
	CmdNone Command = iota

	// Navigation.
	CmdGoHome
	CmdGoRoutes
	CmdGoRules
	CmdGoConnections
	CmdGoSettings
	CmdGoUpdate
	CmdGoLogs
	CmdGoGroups
	CmdGoPerformance

	// Routes page.
	CmdExpandGroup
	CmdCollapseGroup
	CmdSwitchNode
	CmdTestGroup
	CmdTestAll
	CmdToggleFavorite

	// Daemon control.
	CmdCycleProxyMode

	// Connections page.
	CmdCloseConnection
	CmdCloseAllConnections

	// Update page.
	CmdUpdateProvider

	// App control.
	CmdRefresh
	CmdToggleMode
	CmdCyclePreset
	CmdToggleHelp
	CmdQuit
	CmdConfirm
	CmdCancel
)

func (c Command) String() string {
	switch c {
	case CmdGoHome:
		return "go-home"
	case CmdGoRoutes:
		return "go-routes"
	case CmdGoRules:
		return "go-rules"
	case CmdGoConnections:
		return "go-connections"
	case CmdGoSettings:
		return "go-settings"
	case CmdGoUpdate:
		return "go-update"
	case CmdGoLogs:
		return "go-logs"
	case CmdGoGroups:
		return "go-groups"
	case CmdGoPerformance:
		return "go-performance"
	case CmdExpandGroup:
		return "expand-group"
	case CmdCollapseGroup:
		return "collapse-group"
	case CmdSwitchNode:
		return "switch-node"
	case CmdTestGroup:
		return "test-group"
	case CmdTestAll:
		return "test-all"
	case CmdToggleFavorite:
		return "toggle-favorite"
	case CmdCycleProxyMode:
		return "cycle-proxy-mode"
	case CmdCloseConnection:
		return "close-connection"
	case CmdCloseAllConnections:
		return "close-all-connections"
	case CmdUpdateProvider:
		return "update-provider"
	case CmdRefresh:
		return "refresh"
	case CmdToggleMode:
		return "toggle-mode"
	case CmdCyclePreset:
		return "cycle-preset"
	case CmdToggleHelp:
		return "toggle-help"
	case CmdQuit:
		return "quit"
	case CmdConfirm:
		return "confirm"
	case CmdCancel:
		return "cancel"
	default:
		return "none"
	}
}
