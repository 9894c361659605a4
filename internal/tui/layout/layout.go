// Package layout provides width-aware text helpers shared by the pages.
// All measurements are display cells, not bytes, so wide runes line up.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Width tiers: narrow terminals stack panels, split terminals show the
// list/detail layout side by side.
const SplitThreshold = 110

// Tier describes the current width bucket.
type Tier int

const (
	TierNarrow Tier = iota
	TierSplit
)

// TierForWidth maps a terminal width to a tier.
func TierForWidth(width int) Tier {
	if width >= SplitThreshold {
		return TierSplit
	}
	return TierNarrow
}

// Truncate shortens s to at most width display cells, appending an
// ellipsis when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// Pad right-pads s with spaces to exactly width display cells,
// truncating first if it is too long.
func Pad(s string, width int) string {
	s = Truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// PadLeft left-pads s to exactly width display cells.
func PadLeft(s string, width int) string {
	s = Truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}

// Columns joins cells with two-space gutters, padding each to its width.
// The last column is truncated rather than padded so lines never trail
// whitespace.
func Columns(widths []int, cells ...string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		if i == len(cells)-1 {
			b.WriteString(Truncate(cell, w))
		} else {
			b.WriteString(Pad(cell, w))
		}
	}
	return b.String()
}
