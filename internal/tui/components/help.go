package components

import (
	"github.com/charmbracelet/glamour"
)

// helpMarkdown is the overlay shown on '?'. Written as markdown and
// rendered with glamour so it picks up the terminal's capabilities.
const helpMarkdown = `# clashtui

## Navigation
| Key | Action |
|-----|--------|
| ` + "`1`-`9`" + ` | jump to page (Home, Routes, Rules, Connections, Settings, Update, Logs, Groups, Performance) |
| ` + "`tab`" + ` | next page |
| ` + "`↑`/`k` `↓`/`j`" + ` | move cursor |
| ` + "`enter`" + ` | expand group / switch to node |
| ` + "`esc`" + ` | collapse / back |
| ` + "`q`" + ` | back to Home, quit from Home |

## Actions
| Key | Action |
|-----|--------|
| ` + "`t`" + ` | latency-test the selected group |
| ` + "`T`" + ` | latency-test every group |
| ` + "`f`" + ` | star/unstar node |
| ` + "`r`" + ` | refresh from daemon |
| ` + "`M`" + ` | cycle proxy mode (rule/global/direct) |
| ` + "`x` / `X`" + ` | close connection / close all (expert) |
| ` + "`u`" + ` | update provider (expert) |

## Modes & presets
| Key | Action |
|-----|--------|
| ` + "`m`" + ` | toggle Simple/Expert mode |
| ` + "`p`" + ` | cycle preset (default/work/strict/expert) |
`

// RenderHelp renders the help overlay for the given width. Falls back
// to the raw markdown if the renderer cannot be built.
func RenderHelp(width int) string {
	if width <= 0 || width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
