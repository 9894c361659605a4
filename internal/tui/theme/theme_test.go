package theme

import (
	"testing"

	"clashtui/internal/probe"
)

func TestFromName(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLASHTUI_NO_COLOR", "0") // force colors on regardless of CI env

	cases := []struct {
		name string
		want Theme
	}{
		{"nord", Nord},
		{"mocha", CatppuccinMocha},
		{"catppuccin", CatppuccinMocha},
		{"latte", CatppuccinLatte},
		{"light", CatppuccinLatte},
		{"plain", Plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromName(tc.name); got != tc.want {
				t.Errorf("FromName(%q) returned the wrong palette", tc.name)
			}
		})
	}
}

func TestNoColorWins(t *testing.T) {
	t.Setenv("CLASHTUI_NO_COLOR", "1")
	if got := FromName("nord"); got != Plain {
		t.Error("NO_COLOR override did not force the plain theme")
	}
}

func TestNoColorEnabled(t *testing.T) {
	t.Setenv("CLASHTUI_NO_COLOR", "")
	t.Setenv("NO_COLOR", "1")
	if !NoColorEnabled() {
		t.Error("NO_COLOR set but colors remained enabled")
	}

	t.Setenv("CLASHTUI_NO_COLOR", "0")
	if NoColorEnabled() {
		t.Error("CLASHTUI_NO_COLOR=0 should force colors on")
	}
}

func TestRatingColors(t *testing.T) {
	th := CatppuccinMocha
	if th.Rating(probe.RatingFast) != th.Fast {
		t.Error("fast rating color mismatch")
	}
	if th.Rating(probe.RatingTimeout) != th.Timeout {
		t.Error("timeout rating color mismatch")
	}
	if th.Rating(probe.RatingUnknown) != th.Overlay {
		t.Error("unknown rating should use the dimmed color")
	}
}
