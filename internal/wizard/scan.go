package wizard

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/chime/internal/core"
)

// ScanFunc performs the actual network scan.
type ScanFunc func(ctx context.Context) ([]core.Device, error)

type scanDoneMsg struct {
	devices []core.Device
	err     error
}

// scanModel shows a spinner while discovery runs.
type scanModel struct {
	spinner spinner.Model
	scan    ScanFunc
	ctx     context.Context

	devices []core.Device
	err     error
	done    bool
}

func newScanModel(ctx context.Context, scan ScanFunc) scanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return scanModel{spinner: s, scan: scan, ctx: ctx}
}

func (m scanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		devices, err := m.scan(m.ctx)
		return scanDoneMsg{devices: devices, err: err}
	})
}

func (m scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}

	case scanDoneMsg:
		m.devices = msg.devices
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m scanModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " Scanning for speakers..." +
		deviceDimStyle.Render("  (esc to cancel)") + "\n"
}

// RunScan runs the scan with a spinner and returns the discovered devices.
func RunScan(ctx context.Context, scan ScanFunc) ([]core.Device, error) {
	model := newScanModel(ctx, scan)
	p := tea.NewProgram(model)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := finalModel.(scanModel)
	return final.devices, final.err
}
