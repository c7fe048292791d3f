package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/tui/styles"
)

// Group displays the current multiroom group
type Group struct{}

// NewGroup creates a new Group component
func NewGroup() *Group {
	return &Group{}
}

// Render renders the group panel. Members are listed master first; names are
// resolved from the registered devices where possible.
func (g *Group) Render(state *core.PlaybackState, devices []core.Device, width, height int, focused bool) string {
	title := styles.PanelTitle("Group", focused)

	var content string
	if state == nil || len(state.GroupMembers) == 0 {
		content = styles.Muted.Render("Not grouped")
	} else {
		content = g.renderMembers(state.GroupMembers, devices, height-4)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (g *Group) renderMembers(members []string, devices []core.Device, maxLines int) string {
	names := make(map[string]string, len(devices))
	for _, d := range devices {
		names[d.GUID] = d.Name
	}

	lines := make([]string, 0, len(members))
	for i, guid := range members {
		name := names[guid]
		if name == "" {
			name = guid
		}

		role := styles.Dim.Render("member")
		if i == 0 {
			role = styles.Playing.Render("master")
		}

		lines = append(lines, "  "+name+" "+role)

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
