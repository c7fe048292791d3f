package cli

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/registry"
	"github.com/tessro/chime/internal/soundtouch"
	"github.com/tessro/chime/internal/tui"
)

var (
	tuiRefresh int
	tuiDevice  string
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current track, progress, volume
  • Sources     - the speaker's selectable inputs
  • Speakers    - registered speakers, switchable live
  • Group       - multiroom group membership

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/-          Volume up/down
  m            Mute
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	tuiCmd.Flags().StringVarP(&tuiDevice, "device", "d", "", "device to control")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	device, err := resolveDevice(reg, tuiDevice)
	if err != nil {
		return err
	}

	sess, err := openSessionFor(cmd.Context(), device)
	if err != nil {
		return err
	}

	controller := &tuiController{reg: reg, sess: sess}
	defer controller.Close()

	refresh := time.Duration(tuiRefresh) * time.Millisecond
	if tuiRefresh == 0 {
		refresh = time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond
	}

	return tui.Run(controller, refresh, cfg.Defaults.VolumeStep, cfg.Defaults.Device)
}

// tuiController adapts a session and the registry to what the dashboard
// needs. Switching devices swaps the underlying session.
type tuiController struct {
	reg *registry.Registry

	mu   sync.Mutex
	sess *session
}

func (c *tuiController) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *tuiController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil {
		c.sess.Close()
	}
}

func (c *tuiController) Device() core.Device {
	return c.current().device
}

func (c *tuiController) Devices(ctx context.Context) ([]core.Device, error) {
	entries := c.reg.List()
	devices := make([]core.Device, len(entries))
	for i, e := range entries {
		devices[i] = e.Device
	}
	return devices, nil
}

func (c *tuiController) Sources(ctx context.Context) ([]string, error) {
	sess := c.current()

	var names []string
	if sess.speaker != nil {
		sources, err := sess.speaker.GetSources(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range sources.Sources {
			if s.Visible {
				names = append(names, s.SourceName)
			}
		}
		return names, nil
	}

	sources, err := sess.client.GetSources(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sources.Items {
		names = append(names, s.Source)
	}
	return names, nil
}

func (c *tuiController) SelectSource(ctx context.Context, source string) error {
	sess := c.current()
	if sess.speaker != nil {
		return sess.speaker.SetSource(ctx, source, "")
	}
	return sess.client.Select(ctx, soundtouch.ContentItem{Source: source})
}

func (c *tuiController) Use(ctx context.Context, device core.Device) error {
	next, err := openSessionFor(ctx, device)
	if err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.sess
	c.sess = next
	c.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return nil
}

// Playback operations delegate to whichever session is current.

func (c *tuiController) Play(ctx context.Context) error  { return c.current().player.Play(ctx) }
func (c *tuiController) Pause(ctx context.Context) error { return c.current().player.Pause(ctx) }
func (c *tuiController) Stop(ctx context.Context) error  { return c.current().player.Stop(ctx) }
func (c *tuiController) Next(ctx context.Context) error  { return c.current().player.Next(ctx) }
func (c *tuiController) Prev(ctx context.Context) error  { return c.current().player.Prev(ctx) }

func (c *tuiController) Seek(ctx context.Context, position time.Duration) error {
	return c.current().player.Seek(ctx, position)
}

func (c *tuiController) SetVolume(ctx context.Context, percent int) error {
	return c.current().player.SetVolume(ctx, percent)
}

func (c *tuiController) SetMuted(ctx context.Context, muted bool) error {
	return c.current().player.SetMuted(ctx, muted)
}

func (c *tuiController) SetPower(ctx context.Context, on bool) error {
	return c.current().player.SetPower(ctx, on)
}

func (c *tuiController) GetState(ctx context.Context) (*core.PlaybackState, error) {
	return c.current().player.GetState(ctx)
}
