package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

var soundDevice string

var soundCmd = &cobra.Command{
	Use:   "sound",
	Short: "Tune audio settings",
	Long: `Read and write audio settings like bass, treble, and lip-sync
delay. Which settings exist depends on the product; 'chime sound list'
shows what the speaker supports.

Only the smart speaker family exposes these settings.`,
}

var soundListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported audio settings and their values",
	RunE:  runSoundList,
}

var soundGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Show one audio setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSoundGet,
}

var soundSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Change an audio setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSoundSet,
}

func init() {
	soundCmd.PersistentFlags().StringVarP(&soundDevice, "device", "d", "", "target device")
	soundCmd.AddCommand(soundListCmd)
	soundCmd.AddCommand(soundGetCmd)
	soundCmd.AddCommand(soundSetCmd)
	rootCmd.AddCommand(soundCmd)
}

// soundSpeaker opens a session and requires the smart family.
func soundSpeaker(cmd *cobra.Command) (*session, *bose.Speaker, error) {
	sess, err := openSession(cmd.Context(), soundDevice)
	if err != nil {
		return nil, nil, err
	}
	if sess.speaker == nil {
		sess.Close()
		return nil, nil, chimeerrors.ErrUnsupported
	}
	return sess, sess.speaker, nil
}

func runSoundList(cmd *cobra.Command, args []string) error {
	sess, speaker, err := soundSpeaker(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	specs := speaker.SupportedSettings()

	type row struct {
		Name  string `json:"name"`
		Value *int   `json:"value,omitempty"`
		Min   int    `json:"min"`
		Max   int    `json:"max"`
		Step  int    `json:"step"`
	}
	var rows []row
	for _, spec := range specs {
		r := row{Name: spec.Name, Min: spec.Min, Max: spec.Max, Step: spec.Step}
		if setting, err := speaker.GetAudioSetting(cmd.Context(), spec.Name); err == nil {
			v := setting.Value
			r.Value = &v
		}
		rows = append(rows, r)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("This speaker reports no tunable audio settings")
		return nil
	}

	table := NewTable("SETTING", "VALUE", "RANGE")
	for _, r := range rows {
		value := "-"
		if r.Value != nil {
			value = strconv.Itoa(*r.Value)
		}
		table.Row(r.Name, value, fmt.Sprintf("%d..%d step %d", r.Min, r.Max, r.Step))
	}
	table.Flush()
	return nil
}

func runSoundGet(cmd *cobra.Command, args []string) error {
	sess, speaker, err := soundSpeaker(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	setting, err := speaker.GetAudioSetting(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(setting)
	}
	fmt.Printf("%s: %d (%d..%d step %d)\n", args[0], setting.Value,
		setting.Properties.Min, setting.Properties.Max, setting.Properties.Step)
	return nil
}

func runSoundSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid value: %s", args[1])
	}

	sess, speaker, err := soundSpeaker(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := speaker.SetAudioSetting(cmd.Context(), args[0], value); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"setting": args[0], "value": value})
	}
	fmt.Printf("✓ %s: %d\n", args[0], value)
	return nil
}
