package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/tui/styles"
)

// Sources displays the selectable inputs of the current speaker
type Sources struct {
	selected int
}

// NewSources creates a new Sources component
func NewSources() *Sources {
	return &Sources{selected: 0}
}

// SelectNext selects the next source
func (s *Sources) SelectNext() {
	s.selected++
}

// SelectPrev selects the previous source
func (s *Sources) SelectPrev() {
	if s.selected > 0 {
		s.selected--
	}
}

// Selected returns the selected source index
func (s *Sources) Selected() int {
	return s.selected
}

// Render renders the sources panel
func (s *Sources) Render(sources []string, state *core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Sources", focused)

	var content string
	if len(sources) == 0 {
		content = styles.Muted.Render("No sources available")
	} else {
		content = s.renderSources(sources, state, height-4, focused)
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

func (s *Sources) renderSources(sources []string, state *core.PlaybackState, maxLines int, focused bool) string {
	if s.selected >= len(sources) {
		s.selected = len(sources) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}

	current := ""
	if state != nil {
		current = state.Source
	}

	lines := make([]string, 0, len(sources))
	for i, source := range sources {
		selector := "  "
		if focused && i == s.selected {
			selector = "▸ "
		}

		active := ""
		if source == current {
			active = styles.Playing.Render(" ●")
		}

		name := source
		if i == s.selected && focused {
			name = styles.Highlight.Render(name)
		}

		lines = append(lines, selector+name+active)

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
