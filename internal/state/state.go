// Package state owns the navigation state machine: which page is
// shown, which mode and preset are active, and which commands the
// combination permits. It is pure: no I/O, no rendering, a total
// transition function over (state, command).
package state

import "time"

// Page identifies one screen of the control panel.
type Page int

const (
	PageHome Page = iota
	PageRoutes
	PageRules
	PageConnections
	PageSettings
	PageUpdate
	PageLogs
	PageGroups
	PagePerformance
	PageConfirmQuit
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "Home"
	case PageRoutes:
		return "Routes"
	case PageRules:
		return "Rules"
	case PageConnections:
		return "Connections"
	case PageSettings:
		return "Settings"
	case PageUpdate:
		return "Update"
	case PageLogs:
		return "Logs"
	case PageGroups:
		return "Groups"
	case PagePerformance:
		return "Performance"
	case PageConfirmQuit:
		return "Quit?"
	default:
		return "Unknown"
	}
}

// Mode is the Simple/Expert visibility axis, orthogonal to presets.
type Mode int

const (
	ModeSimple Mode = iota
	ModeExpert
)

func (m Mode) String() string {
	if m == ModeExpert {
		return "Expert"
	}
	return "Simple"
}

// Toggle flips between Simple and Expert.
func (m Mode) Toggle() Mode {
	if m == ModeSimple {
		return ModeExpert
	}
	return ModeSimple
}

// Status is a transient message surfaced in the status bar.
type Status struct {
	Text  string
	Error bool
	At    time.Time
}

// AppState is everything the machine owns. ExpandedGroup is meaningful
// only on the Routes page; empty means the collapsed group list.
type AppState struct {
	Page          Page
	ExpandedGroup string
	Mode          Mode
	Preset        Preset
	ActiveGroup   string
	Status        Status
}

// New builds the startup state for a preset, on Home with the preset's
// default mode.
func New(preset Preset) AppState {
	return AppState{
		Page:   PageHome,
		Mode:   preset.Policy().DefaultMode,
		Preset: preset,
	}
}

// RoutesExpanded reports whether the Routes page is showing a group's
// node list rather than the group overview.
func (s AppState) RoutesExpanded() bool {
	return s.Page == PageRoutes && s.ExpandedGroup != ""
}
