// Package tui implements the interactive dashboard.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/tui/components"
	"github.com/tessro/chime/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelSources
	PanelDevices
	PanelGroup
)

// Controller is what the dashboard needs from a speaker session.
type Controller interface {
	core.Player

	// Device returns the speaker currently being controlled.
	Device() core.Device

	// Devices lists all registered speakers.
	Devices(ctx context.Context) ([]core.Device, error)

	// Sources lists the selectable inputs of the current speaker.
	Sources(ctx context.Context) ([]string, error)

	// SelectSource switches the current speaker to the named source.
	SelectSource(ctx context.Context, source string) error

	// Use switches control to another speaker.
	Use(ctx context.Context, device core.Device) error
}

// App holds the TUI application state
type App struct {
	controller    Controller
	refreshRate   time.Duration
	volumeStep    int
	defaultDevice string // Device name from config
}

// NewApp creates a new TUI application
func NewApp(controller Controller, refreshRate time.Duration, volumeStep int, defaultDevice string) *App {
	if refreshRate == 0 {
		refreshRate = time.Second
	}
	if volumeStep <= 0 {
		volumeStep = 5
	}
	return &App{
		controller:    controller,
		refreshRate:   refreshRate,
		volumeStep:    volumeStep,
		defaultDevice: defaultDevice,
	}
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	state   *core.PlaybackState
	devices []core.Device
	sources []string

	// Components
	nowPlaying  *components.NowPlaying
	sourcesView *components.Sources
	devicesView *components.Devices
	groupView   *components.Group

	// Overlays
	showHelp bool

	// Error handling
	lastError   error
	errorExpiry time.Time // When to clear the error

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	return Model{
		app:          app,
		focusedPanel: PanelNowPlaying,
		nowPlaying:   components.NewNowPlaying(),
		sourcesView:  components.NewSources(),
		devicesView:  components.NewDevices(),
		groupView:    components.NewGroup(),
	}
}

// Messages
type tickMsg time.Time
type stateMsg *core.PlaybackState
type devicesMsg []core.Device
type sourcesMsg []string
type errMsg error
type refreshAfterActionMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchState() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		state, err := m.app.controller.GetState(ctx)
		if err != nil {
			return errMsg(err)
		}
		return stateMsg(state)
	}
}

func (m Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		devices, err := m.app.controller.Devices(ctx)
		if err != nil {
			return errMsg(err)
		}
		return devicesMsg(devices)
	}
}

func (m Model) fetchSources() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sources, err := m.app.controller.Sources(ctx)
		if err != nil {
			return errMsg(err)
		}
		return sourcesMsg(sources)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.fetchState(),
		m.fetchDevices(),
		m.fetchSources(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tick(), m.fetchState())

	case stateMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.state = msg
		return m, nil

	case devicesMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.devices = msg
		return m, nil

	case sourcesMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.sources = msg
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second) // Show error for 5 seconds
		return m, nil

	case refreshAfterActionMsg:
		return m, tea.Batch(m.fetchState(), m.fetchSources())
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 4
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 3) % 4
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.togglePlayPause()
	case "n":
		return m, m.nextTrack()
	case "p":
		return m, m.prevTrack()
	case "+", "=":
		return m, m.volumeUp()
	case "-":
		return m, m.volumeDown()
	case "m":
		return m, m.toggleMute()
	case "r":
		return m, tea.Batch(m.fetchState(), m.fetchDevices(), m.fetchSources())
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelSources:
		switch msg.String() {
		case "j", "down":
			m.sourcesView.SelectNext()
		case "k", "up":
			m.sourcesView.SelectPrev()
		case "enter":
			return m, m.selectSource()
		}
	case PanelDevices:
		switch msg.String() {
		case "j", "down":
			m.devicesView.SelectNext()
		case "k", "up":
			m.devicesView.SelectPrev()
		case "enter":
			return m, m.switchDevice()
		}
	}

	return m, nil
}

func (m Model) togglePlayPause() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if m.state != nil && m.state.IsPlaying() {
			_ = m.app.controller.Pause(ctx)
		} else {
			_ = m.app.controller.Play(ctx)
		}
		time.Sleep(200 * time.Millisecond)
		return refreshAfterActionMsg{}
	}
}

func (m Model) nextTrack() tea.Cmd {
	return func() tea.Msg {
		_ = m.app.controller.Next(context.Background())
		// Small delay to let the speaker update state
		time.Sleep(200 * time.Millisecond)
		return refreshAfterActionMsg{}
	}
}

func (m Model) prevTrack() tea.Cmd {
	return func() tea.Msg {
		_ = m.app.controller.Prev(context.Background())
		// Small delay to let the speaker update state
		time.Sleep(200 * time.Millisecond)
		return refreshAfterActionMsg{}
	}
}

func (m Model) volumeUp() tea.Cmd {
	return func() tea.Msg {
		if m.state != nil {
			newVol := m.state.Volume + m.app.volumeStep
			if newVol > 100 {
				newVol = 100
			}
			_ = m.app.controller.SetVolume(context.Background(), newVol)
		}
		return refreshAfterActionMsg{}
	}
}

func (m Model) volumeDown() tea.Cmd {
	return func() tea.Msg {
		if m.state != nil {
			newVol := m.state.Volume - m.app.volumeStep
			if newVol < 0 {
				newVol = 0
			}
			_ = m.app.controller.SetVolume(context.Background(), newVol)
		}
		return refreshAfterActionMsg{}
	}
}

func (m Model) toggleMute() tea.Cmd {
	return func() tea.Msg {
		if m.state != nil {
			_ = m.app.controller.SetMuted(context.Background(), !m.state.Muted)
		}
		return refreshAfterActionMsg{}
	}
}

func (m Model) selectSource() tea.Cmd {
	return func() tea.Msg {
		selected := m.sourcesView.Selected()
		if selected < 0 || selected >= len(m.sources) {
			return nil
		}
		if err := m.app.controller.SelectSource(context.Background(), m.sources[selected]); err != nil {
			return errMsg(err)
		}
		time.Sleep(200 * time.Millisecond)
		return refreshAfterActionMsg{}
	}
}

func (m Model) switchDevice() tea.Cmd {
	return func() tea.Msg {
		selected := m.devicesView.Selected()
		if selected < 0 || selected >= len(m.devices) {
			return nil
		}
		if err := m.app.controller.Use(context.Background(), m.devices[selected]); err != nil {
			return errMsg(err)
		}
		return refreshAfterActionMsg{}
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Sources (bottom)
	// Right: Speakers (top), Group (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 50 / 100
	bottomHeight := m.height - topHeight - 2

	currentGUID := m.app.controller.Device().GUID

	nowPlaying := m.nowPlaying.Render(m.state, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	sourcesView := m.sourcesView.Render(m.sources, m.state, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelSources)
	devicesView := m.devicesView.Render(m.devices, rightWidth-2, topHeight-2, m.focusedPanel == PanelDevices, currentGUID, m.app.defaultDevice)
	groupView := m.groupView.Render(m.state, m.devices, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelGroup)

	// Compose layout
	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, sourcesView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, devicesView, groupView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	// Status bar
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  space:play/pause  n:next  p:prev  +/-:volume  m:mute  tab:switch panel")

	if m.lastError != nil {
		status = styles.Paused.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Chime UI - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  Tab          Next panel
  Shift+Tab    Previous panel
  r            Refresh

  Playback
  ────────
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/=          Volume up
  -            Volume down
  m            Mute/Unmute

  Sources Panel
  ─────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Switch source

  Speakers Panel
  ──────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Control speaker

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run starts the TUI application
func Run(controller Controller, refreshRate time.Duration, volumeStep int, defaultDevice string) error {
	app := NewApp(controller, refreshRate, volumeStep, defaultDevice)
	model := NewModel(app)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
