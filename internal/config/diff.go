package config

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeSummary describes what a config reload changed, for the status
// bar. Computed from the raw file text so it works even when the edit
// only touched comments.
type ChangeSummary struct {
	Added   int
	Removed int
}

func (s ChangeSummary) Empty() bool { return s.Added == 0 && s.Removed == 0 }

func (s ChangeSummary) String() string {
	if s.Empty() {
		return "config reloaded (no changes)"
	}
	return fmt.Sprintf("config reloaded (+%d/-%d lines)", s.Added, s.Removed)
}

// Summarize diffs two versions of the config file line-wise.
func Summarize(before, after string) ChangeSummary {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sum ChangeSummary
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		if n == 0 && d.Text != "" {
			n = 1
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sum.Added += n
		case diffmatchpatch.DiffDelete:
			sum.Removed += n
		}
	}
	return sum
}
