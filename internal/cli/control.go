package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/core"
)

var controlDevice string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start or resume playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd.Context(), "playing", "▶ Playing", func(ctx context.Context, p core.Player) error {
			return p.Play(ctx)
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd.Context(), "paused", "⏸ Paused", func(ctx context.Context, p core.Player) error {
			return p.Pause(ctx)
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd.Context(), "stopped", "■ Stopped", func(ctx context.Context, p core.Player) error {
			return p.Stop(ctx)
		})
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd.Context(), "skipped", "⏭ Skipped to next track", func(ctx context.Context, p core.Player) error {
			return p.Next(ctx)
		})
	},
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runControl(cmd.Context(), "previous", "⏮ Previous track", func(ctx context.Context, p core.Player) error {
			return p.Prev(ctx)
		})
	},
}

var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Seek within the current track",
	Long: `Seek to a position in the current track.

The position is either seconds (90) or minutes:seconds (1:30).
Only the smart speaker family supports seeking.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Show, set, or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it in steps.

Examples:
  chime volume 50      # Set volume to 50%
  chime volume --up    # Increase volume by one step
  chime volume --down  # Decrease volume by one step`,
	RunE: runVolume,
}

var muteCmd = &cobra.Command{
	Use:   "mute [on|off]",
	Short: "Mute or unmute",
	Long:  `Mute or unmute the speaker. With no argument, toggles.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMute,
}

var powerCmd = &cobra.Command{
	Use:   "power <on|off>",
	Short: "Turn a speaker on or put it in standby",
	Args:  cobra.ExactArgs(1),
	RunE:  runPower,
}

func init() {
	for _, c := range []*cobra.Command{playCmd, pauseCmd, stopCmd, nextCmd, prevCmd, seekCmd, volumeCmd, muteCmd, powerCmd} {
		c.Flags().StringVarP(&controlDevice, "device", "d", "", "target device")
		rootCmd.AddCommand(c)
	}
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "increase volume by one step")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "decrease volume by one step")
}

func runControl(ctx context.Context, status, message string, op func(context.Context, core.Player) error) error {
	sess, err := openSession(ctx, controlDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := op(ctx, sess.player); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": status})
	}
	fmt.Println(message)
	return nil
}

func runSeek(cmd *cobra.Command, args []string) error {
	position, err := parsePosition(args[0])
	if err != nil {
		return err
	}

	return runControl(cmd.Context(), "seeked", fmt.Sprintf("⏩ Seeked to %s", FormatDuration(int(position/time.Second))),
		func(ctx context.Context, p core.Player) error {
			return p.Seek(ctx, position)
		})
}

// parsePosition accepts "90" (seconds) or "1:30" (minutes:seconds).
func parsePosition(s string) (time.Duration, error) {
	var m, sec int
	if n, _ := fmt.Sscanf(s, "%d:%d", &m, &sec); n == 2 {
		if sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid position: %s", s)
		}
		return time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid position: %s", s)
	}
	return time.Duration(v) * time.Second, nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, controlDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	state, err := sess.player.GetState(ctx)
	if err != nil {
		return fmt.Errorf("get playback state: %w", err)
	}
	current := state.Volume

	// No argument and no flags: just report.
	if len(args) == 0 && !volumeUp && !volumeDown {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(map[string]int{"volume": current})
		}
		fmt.Printf("🔊 Volume: %d%%\n", current)
		return nil
	}

	step := cfg.Defaults.VolumeStep
	target := current
	switch {
	case volumeUp:
		target = min(current+step, 100)
	case volumeDown:
		target = max(current-step, 0)
	default:
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume level: %s", args[0])
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		target = v
	}

	if err := sess.player.SetVolume(ctx, target); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]int{"volume": target, "previous": current})
	}
	fmt.Printf("🔊 Volume: %d%% (was %d%%)\n", target, current)
	return nil
}

func runMute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, controlDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	var muted bool
	if len(args) == 1 {
		switch args[0] {
		case "on":
			muted = true
		case "off":
			muted = false
		default:
			return fmt.Errorf("expected 'on' or 'off', got %q", args[0])
		}
	} else {
		state, err := sess.player.GetState(ctx)
		if err != nil {
			return fmt.Errorf("get playback state: %w", err)
		}
		muted = !state.Muted
	}

	if err := sess.player.SetMuted(ctx, muted); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]bool{"muted": muted})
	}
	if muted {
		fmt.Println("🔇 Muted")
	} else {
		fmt.Println("🔊 Unmuted")
	}
	return nil
}

func runPower(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("expected 'on' or 'off', got %q", args[0])
	}

	message := "⏻ Standby"
	status := "standby"
	if on {
		message = "⚡ Powered on"
		status = "on"
	}
	return runControl(cmd.Context(), status, message, func(ctx context.Context, p core.Player) error {
		return p.SetPower(ctx, on)
	})
}
