package layout

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"tokyo-01", 20, "tokyo-01"},
		{"tokyo-01", 8, "tokyo-01"},
		{"tokyo-01-premium", 8, "tokyo-0…"},
		{"東京ノード", 6, "東京…"},
		{"anything", 0, ""},
		{"anything", 1, "…"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestPadIsExactWidth(t *testing.T) {
	for _, s := range []string{"a", "tokyo-01", "東京", "a very long node name indeed"} {
		got := Pad(s, 12)
		if w := runewidth.StringWidth(got); w != 12 {
			t.Errorf("Pad(%q, 12) has width %d: %q", s, w, got)
		}
	}
}

func TestPadLeft(t *testing.T) {
	if got := PadLeft("42ms", 8); got != "    42ms" {
		t.Errorf("PadLeft = %q", got)
	}
}

func TestColumns(t *testing.T) {
	got := Columns([]int{10, 6, 8}, "tokyo-01", "142ms", "Fast")
	want := "tokyo-01    142ms   Fast"
	if got != want {
		t.Errorf("Columns = %q, want %q", got, want)
	}
}

func TestTierForWidth(t *testing.T) {
	if TierForWidth(80) != TierNarrow {
		t.Error("80 cols should be narrow")
	}
	if TierForWidth(140) != TierSplit {
		t.Error("140 cols should be split")
	}
}
