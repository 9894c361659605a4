package state

// Preset names a bundled visibility policy.
type Preset string

const (
	PresetDefault Preset = "default"
	PresetWork    Preset = "work"
	PresetStrict  Preset = "strict"
	PresetExpert  Preset = "expert"
)

// Presets in cycle order.
var Presets = []Preset{PresetDefault, PresetWork, PresetStrict, PresetExpert}

// ParsePreset maps a config value onto a known preset, falling back to
// the default for anything unrecognized.
func ParsePreset(s string) Preset {
	for _, p := range Presets {
		if string(p) == s {
			return p
		}
	}
	return PresetDefault
}

// Next cycles default -> work -> strict -> expert -> default.
func (p Preset) Next() Preset {
	for i, known := range Presets {
		if known == p {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return PresetDefault
}

// Policy is a preset's declarative record: the mode it starts in, the
// commands it hides outright, and the commands it gates behind Expert.
type Policy struct {
	DefaultMode    Mode
	Hidden         map[Command]bool
	RequiresExpert map[Command]bool
}

var policies = map[Preset]Policy{
	PresetDefault: {
		DefaultMode: ModeSimple,
	},
	PresetWork: {
		DefaultMode: ModeSimple,
		Hidden: map[Command]bool{
			CmdTestGroup: true,
			CmdTestAll:   true,
		},
	},
	PresetStrict: {
		DefaultMode: ModeSimple,
		RequiresExpert: map[Command]bool{
			CmdSwitchNode:          true,
			CmdCycleProxyMode:      true,
			CmdCloseConnection:     true,
			CmdCloseAllConnections: true,
		},
	},
	PresetExpert: {
		DefaultMode: ModeExpert,
	},
}

// Policy returns the preset's record; unknown presets behave as default.
func (p Preset) Policy() Policy {
	if pol, ok := policies[p]; ok {
		return pol
	}
	return policies[PresetDefault]
}

// expertOnly are commands Simple mode never exposes, independent of preset.
var expertOnly = map[Command]bool{
	CmdCloseAllConnections: true,
	CmdUpdateProvider:      true,
}
