package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/tui/styles"
)

// NowPlaying displays the currently playing track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state *core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	switch {
	case state == nil:
		content = styles.Muted.Render("No speaker connected")
	case state.State == core.StateOff:
		content = styles.Muted.Render("Speaker is in standby")
	case state.Track == nil:
		content = styles.Muted.Render("Nothing playing")
	default:
		content = n.renderTrack(state, width-4)
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

func (n *NowPlaying) renderTrack(state *core.PlaybackState, width int) string {
	track := state.Track

	// Status icon and track title
	icon := styles.StatusIcon(state.IsPlaying())
	titleStyle := styles.Title.Width(width - 4)
	title := titleStyle.Render(track.Title)

	// Artist and album
	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	// Progress bar
	progressWidth := width - 14 // Account for times on either side
	if progressWidth < 10 {
		progressWidth = 10
	}
	progressBar := styles.ProgressBar(state.ProgressPercent(), progressWidth)
	currentTime := formatDuration(state.Progress)
	totalTime := formatDuration(track.Duration)
	progress := fmt.Sprintf("%s %s %s", currentTime, progressBar, totalTime)

	// Device and volume info
	deviceIcon := styles.FamilyIcon(string(state.Device.Family))
	deviceInfo := fmt.Sprintf("%s %s", deviceIcon, state.Device.Name)
	if state.Muted {
		deviceInfo += " 🔇"
	} else {
		deviceInfo += fmt.Sprintf(" 🔊 %d%%", state.Volume)
	}
	if state.Source != "" {
		deviceInfo += styles.Dim.Render("  via " + state.Source)
	}
	deviceInfo = styles.Muted.Render(deviceInfo)

	// Playback controls indicator
	controls := n.renderControls(state)

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
		"",
		deviceInfo,
		controls,
	)
}

func (n *NowPlaying) renderControls(state *core.PlaybackState) string {
	var controls string

	controls += styles.Dim.Render("⏮ ")

	if state.IsPlaying() {
		controls += styles.Playing.Render("⏸")
	} else {
		controls += styles.Paused.Render("▶")
	}

	controls += styles.Dim.Render(" ⏭")

	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(controls)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
