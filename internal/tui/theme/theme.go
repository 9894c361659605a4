// Package theme defines the color palettes for the control panel.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"clashtui/internal/probe"
)

// Theme defines a complete color palette for the TUI.
type Theme struct {
	// Base colors
	Base    lipgloss.Color
	Surface lipgloss.Color
	Border  lipgloss.Color

	// Text colors
	Text    lipgloss.Color
	Subtext lipgloss.Color
	Overlay lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Rating colors for latency results
	Fast    lipgloss.Color
	Good    lipgloss.Color
	Slow    lipgloss.Color
	Timeout lipgloss.Color
	Failed  lipgloss.Color

	// Favorite marker
	Star lipgloss.Color
}

// CatppuccinMocha is the flagship dark theme.
var CatppuccinMocha = Theme{
	Base:    lipgloss.Color("#1e1e2e"),
	Surface: lipgloss.Color("#313244"),
	Border:  lipgloss.Color("#45475a"),

	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),

	Primary:   lipgloss.Color("#89b4fa"),
	Secondary: lipgloss.Color("#cba6f7"),
	Success:   lipgloss.Color("#a6e3a1"),
	Warning:   lipgloss.Color("#f9e2af"),
	Error:     lipgloss.Color("#f38ba8"),
	Info:      lipgloss.Color("#89dceb"),

	Fast:    lipgloss.Color("#a6e3a1"),
	Good:    lipgloss.Color("#f9e2af"),
	Slow:    lipgloss.Color("#fab387"),
	Timeout: lipgloss.Color("#f38ba8"),
	Failed:  lipgloss.Color("#eba0ac"),

	Star: lipgloss.Color("#f9e2af"),
}

// CatppuccinLatte is the light variant.
var CatppuccinLatte = Theme{
	Base:    lipgloss.Color("#eff1f5"),
	Surface: lipgloss.Color("#ccd0da"),
	Border:  lipgloss.Color("#bcc0cc"),

	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#9ca0b0"),

	Primary:   lipgloss.Color("#1e66f5"),
	Secondary: lipgloss.Color("#8839ef"),
	Success:   lipgloss.Color("#40a02b"),
	Warning:   lipgloss.Color("#df8e1d"),
	Error:     lipgloss.Color("#d20f39"),
	Info:      lipgloss.Color("#04a5e5"),

	Fast:    lipgloss.Color("#40a02b"),
	Good:    lipgloss.Color("#df8e1d"),
	Slow:    lipgloss.Color("#fe640b"),
	Timeout: lipgloss.Color("#d20f39"),
	Failed:  lipgloss.Color("#e64553"),

	Star: lipgloss.Color("#df8e1d"),
}

// Nord is the arctic theme.
var Nord = Theme{
	Base:    lipgloss.Color("#2e3440"),
	Surface: lipgloss.Color("#3b4252"),
	Border:  lipgloss.Color("#4c566a"),

	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#d8dee9"),
	Overlay: lipgloss.Color("#7b88a1"),

	Primary:   lipgloss.Color("#88c0d0"),
	Secondary: lipgloss.Color("#b48ead"),
	Success:   lipgloss.Color("#a3be8c"),
	Warning:   lipgloss.Color("#ebcb8b"),
	Error:     lipgloss.Color("#bf616a"),
	Info:      lipgloss.Color("#81a1c1"),

	Fast:    lipgloss.Color("#a3be8c"),
	Good:    lipgloss.Color("#ebcb8b"),
	Slow:    lipgloss.Color("#d08770"),
	Timeout: lipgloss.Color("#bf616a"),
	Failed:  lipgloss.Color("#bf616a"),

	Star: lipgloss.Color("#ebcb8b"),
}

// Plain is a no-color theme using terminal defaults. Used when NO_COLOR
// is set or for accessibility needs.
var Plain = Theme{}

// NoColorEnabled reports whether color output should be disabled.
// Respects the NO_COLOR standard (https://no-color.org/); the
// CLASHTUI_NO_COLOR variable overrides it in either direction.
func NoColorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CLASHTUI_NO_COLOR"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// FromName returns a theme by name. Unknown names fall back to the
// background-detected default.
func FromName(name string) Theme {
	if NoColorEnabled() {
		return Plain
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "nord":
		return Nord
	case "latte", "light":
		return CatppuccinLatte
	case "catppuccin", "mocha":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

// detectDarkBackground inspects the terminal. A variable for testability.
var detectDarkBackground = func() bool {
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

var (
	autoThemeOnce sync.Once
	autoResult    Theme
)

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		if detectDarkBackground() {
			autoResult = CatppuccinMocha
		} else {
			autoResult = CatppuccinLatte
		}
	})
	return autoResult
}

// Rating returns the color for a latency rating.
func (t Theme) Rating(r probe.Rating) lipgloss.Color {
	switch r {
	case probe.RatingFast:
		return t.Fast
	case probe.RatingGood:
		return t.Good
	case probe.RatingSlow:
		return t.Slow
	case probe.RatingTimeout:
		return t.Timeout
	case probe.RatingError:
		return t.Failed
	default:
		return t.Overlay
	}
}
