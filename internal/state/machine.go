package state

import (
	"fmt"
	"time"
)

// PolicyRejection explains why the current mode/preset refused a command.
type PolicyRejection struct {
	Command Command
	Reason  string
}

func (r *PolicyRejection) Error() string {
	return fmt.Sprintf("%s rejected: %s", r.Command, r.Reason)
}

// Effect tells the caller what a transition asks of the outside world.
type Effect int

const (
	// EffectNone means the transition was purely internal (or rejected).
	EffectNone Effect = iota
	// EffectAct means the command is legal and the caller should perform
	// its side effect (probe, switch, close, refresh).
	EffectAct
	// EffectTerminate means the user confirmed quitting.
	EffectTerminate
)

// globalCommands are legal on every page except the quit modal.
var globalCommands = []Command{
	CmdGoHome, CmdGoRoutes, CmdGoRules, CmdGoConnections, CmdGoSettings,
	CmdGoUpdate, CmdGoLogs, CmdGoGroups, CmdGoPerformance,
	CmdRefresh, CmdToggleMode, CmdCyclePreset, CmdToggleHelp, CmdQuit,
	CmdCycleProxyMode,
}

// pageCommands is the per-page half of the capability table. The full
// answer for a (page, mode, preset) triple also applies the mode filter
// and the preset policy, in capable below.
var pageCommands = map[Page][]Command{
	PageHome:        nil,
	PageRoutes:      {CmdExpandGroup, CmdCollapseGroup, CmdSwitchNode, CmdTestGroup, CmdTestAll, CmdToggleFavorite},
	PageRules:       nil,
	PageConnections: {CmdCloseConnection, CmdCloseAllConnections},
	PageSettings:    nil,
	PageUpdate:      {CmdUpdateProvider},
	PageLogs:        nil,
	PageGroups:      nil,
	PagePerformance: nil,
	PageConfirmQuit: {CmdConfirm, CmdCancel},
}

// capable decides whether the (page, mode, preset) triple permits the
// command, and if not, why.
func capable(s AppState, cmd Command) *PolicyRejection {
	if s.Page == PageConfirmQuit {
		for _, c := range pageCommands[PageConfirmQuit] {
			if c == cmd {
				return nil
			}
		}
		return &PolicyRejection{Command: cmd, Reason: "confirm or cancel first"}
	}

	onPage := false
	for _, c := range globalCommands {
		if c == cmd {
			onPage = true
			break
		}
	}
	if !onPage {
		for _, c := range pageCommands[s.Page] {
			if c == cmd {
				onPage = true
				break
			}
		}
	}
	if !onPage {
		return &PolicyRejection{Command: cmd, Reason: fmt.Sprintf("not available on %s", s.Page)}
	}

	if s.Mode == ModeSimple && expertOnly[cmd] {
		return &PolicyRejection{Command: cmd, Reason: "expert mode only"}
	}

	pol := s.Preset.Policy()
	if pol.Hidden[cmd] {
		return &PolicyRejection{Command: cmd, Reason: fmt.Sprintf("hidden by %s preset", s.Preset)}
	}
	if pol.RequiresExpert[cmd] && s.Mode != ModeExpert {
		return &PolicyRejection{Command: cmd, Reason: fmt.Sprintf("%s preset requires expert mode", s.Preset)}
	}
	return nil
}

// Allowed reports whether the command would pass the capability check
// in the given state, without applying anything. Used to build help and
// key-hint displays.
func Allowed(s AppState, cmd Command) bool { return capable(s, cmd) == nil }

// Apply is the total transition function. arg carries the command's
// target where one exists (a group name for CmdExpandGroup, for
// example). Rejections leave everything but the status message alone.
func Apply(s AppState, cmd Command, arg string) (AppState, Effect) {
	if rej := capable(s, cmd); rej != nil {
		s.Status = Status{Text: rej.Error(), Error: true, At: time.Now()}
		return s, EffectNone
	}

	switch cmd {
	case CmdGoHome, CmdGoRoutes, CmdGoRules, CmdGoConnections, CmdGoSettings,
		CmdGoUpdate, CmdGoLogs, CmdGoGroups, CmdGoPerformance:
		s.Page = pageFor(cmd)
		s.ExpandedGroup = ""
		return s, EffectNone

	case CmdExpandGroup:
		s.ExpandedGroup = arg
		s.ActiveGroup = arg
		return s, EffectNone

	case CmdCollapseGroup:
		s.ExpandedGroup = ""
		return s, EffectNone

	case CmdToggleMode:
		s.Mode = s.Mode.Toggle()
		s.Status = Status{Text: fmt.Sprintf("%s mode", s.Mode), At: time.Now()}
		return s, EffectNone

	case CmdCyclePreset:
		s.Preset = s.Preset.Next()
		s.Mode = s.Preset.Policy().DefaultMode
		s.Status = Status{Text: fmt.Sprintf("preset %s (%s mode)", s.Preset, s.Mode), At: time.Now()}
		return s, EffectNone

	case CmdQuit:
		if s.Page == PageHome {
			s.Page = PageConfirmQuit
		} else {
			s.Page = PageHome
			s.ExpandedGroup = ""
		}
		return s, EffectNone

	case CmdConfirm:
		return s, EffectTerminate

	case CmdCancel:
		s.Page = PageHome
		return s, EffectNone

	default:
		// Side-effect commands: legal, state untouched, caller acts.
		return s, EffectAct
	}
}

func pageFor(cmd Command) Page {
	switch cmd {
	case CmdGoRoutes:
		return PageRoutes
	case CmdGoRules:
		return PageRules
	case CmdGoConnections:
		return PageConnections
	case CmdGoSettings:
		return PageSettings
	case CmdGoUpdate:
		return PageUpdate
	case CmdGoLogs:
		return PageLogs
	case CmdGoGroups:
		return PageGroups
	case CmdGoPerformance:
		return PagePerformance
	default:
		return PageHome
	}
}
