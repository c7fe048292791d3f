package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/core"
)

var statusDevice string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what a speaker is doing",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusDevice, "device", "d", "", "target device")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context(), statusDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	state, err := sess.player.GetState(cmd.Context())
	if err != nil {
		return fmt.Errorf("get playback state: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(state)
	}

	printState(sess.device, state)
	return nil
}

func printState(device core.Device, state *core.PlaybackState) {
	fmt.Printf("%s (%s, %s)\n", device.Name, device.Family, device.IP)

	switch {
	case state.State == core.StateOff:
		fmt.Println("  ⏻ Standby")
	case state.HasTrack():
		icon := "⏸"
		if state.IsPlaying() {
			icon = "▶"
		}
		fmt.Printf("  %s %s — %s\n", icon,
			TruncateString(state.Track.Title, 50), TruncateString(state.Track.Artist, 30))
		if state.Track.Album != "" {
			fmt.Printf("     %s\n", TruncateString(state.Track.Album, 60))
		}
		if state.Track.Duration > 0 {
			pos := int(state.Progress / time.Second)
			total := int(state.Track.Duration / time.Second)
			fmt.Printf("     %s %s/%s\n", FormatProgress(pos, total, 20),
				FormatDuration(pos), FormatDuration(total))
		}
	default:
		fmt.Println("  ■ Nothing playing")
	}

	vol := fmt.Sprintf("🔊 %d%%", state.Volume)
	if state.Muted {
		vol = "🔇 muted"
	}
	fmt.Printf("  %s", vol)
	if state.Source != "" {
		fmt.Printf("   source: %s", state.Source)
	}
	fmt.Println()

	if len(state.GroupMembers) > 1 {
		fmt.Printf("  🔗 group of %d (master %s)\n", len(state.GroupMembers), state.GroupMembers[0])
	}
}
