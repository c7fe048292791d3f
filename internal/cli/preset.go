package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

var presetDevice string

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Use the speaker's hardware presets",
	Long: `Use the numbered presets (1-6) that SoundTouch speakers expose as
hardware buttons. Smart speakers have no preset buttons; use 'chime
favorite' with them instead.`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	RunE:  runPresetList,
}

var presetPlayCmd = &cobra.Command{
	Use:   "play <1-6>",
	Short: "Play a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetPlay,
}

func init() {
	presetCmd.PersistentFlags().StringVarP(&presetDevice, "device", "d", "", "target device")
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetPlayCmd)
	rootCmd.AddCommand(presetCmd)
}

func runPresetList(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context(), presetDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.client == nil {
		return chimeerrors.WithSuggestion(chimeerrors.ErrUnsupported,
			"Smart speakers have no presets; try 'chime favorite list'")
	}

	presets, err := sess.client.GetPresets(cmd.Context())
	if err != nil {
		return fmt.Errorf("list presets: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(presets)
	}

	if len(presets) == 0 {
		fmt.Println("No presets stored on this speaker")
		return nil
	}

	table := NewTable("#", "NAME", "SOURCE")
	for _, p := range presets {
		table.Row(strconv.Itoa(p.ID), p.ContentItem.Name, p.ContentItem.Source)
	}
	table.Flush()
	return nil
}

func runPresetPlay(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 || id > 6 {
		return fmt.Errorf("preset must be 1-6, got %q", args[0])
	}

	sess, err := openSession(cmd.Context(), presetDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.client == nil {
		return chimeerrors.WithSuggestion(chimeerrors.ErrUnsupported,
			"Smart speakers have no presets; try 'chime favorite play'")
	}

	if err := sess.client.PlayPreset(cmd.Context(), id); err != nil {
		return fmt.Errorf("play preset %d: %w", id, err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]int{"preset": id})
	}
	fmt.Printf("▶ Preset %d\n", id)
	return nil
}
