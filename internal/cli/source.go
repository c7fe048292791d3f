package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/soundtouch"
)

var sourceDevice string

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "List and switch input sources",
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a speaker's selectable sources",
	RunE:  runSourceList,
}

var sourceSetCmd = &cobra.Command{
	Use:     "set <source> [account]",
	Aliases: []string{"select"},
	Short:   "Switch a speaker to a source",
	Long: `Switch a speaker to the named source, for example BLUETOOTH,
AUX, or TUNEIN. Some sources carry an account, given as a second
argument.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSourceSet,
}

func init() {
	sourceCmd.PersistentFlags().StringVarP(&sourceDevice, "device", "d", "", "target device")
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceSetCmd)
	rootCmd.AddCommand(sourceCmd)
}

// sourceEntry is the family-neutral view of one selectable input.
type sourceEntry struct {
	Source  string `json:"source"`
	Account string `json:"account,omitempty"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty"`
}

func listSources(cmd *cobra.Command, sess *session) ([]sourceEntry, error) {
	if sess.speaker != nil {
		sources, err := sess.speaker.GetSources(cmd.Context())
		if err != nil {
			return nil, err
		}
		var out []sourceEntry
		for _, s := range sources.Sources {
			if !s.Visible {
				continue
			}
			out = append(out, sourceEntry{
				Source:  s.SourceName,
				Account: s.SourceAccountName,
				Name:    s.DisplayName,
				Status:  s.Status,
			})
		}
		return out, nil
	}

	sources, err := sess.client.GetSources(cmd.Context())
	if err != nil {
		return nil, err
	}
	var out []sourceEntry
	for _, s := range sources.Items {
		out = append(out, sourceEntry{
			Source:  s.Source,
			Account: s.SourceAccount,
			Name:    s.Name,
			Status:  s.Status,
		})
	}
	return out, nil
}

func runSourceList(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context(), sourceDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	sources, err := listSources(cmd, sess)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(sources)
	}

	table := NewTable("SOURCE", "NAME", "ACCOUNT", "STATUS")
	for _, s := range sources {
		table.Row(s.Source, s.Name, s.Account, s.Status)
	}
	table.Flush()
	return nil
}

func runSourceSet(cmd *cobra.Command, args []string) error {
	source := strings.ToUpper(args[0])
	account := ""
	if len(args) == 2 {
		account = args[1]
	}

	sess, err := openSession(cmd.Context(), sourceDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.speaker != nil {
		err = sess.speaker.SetSource(cmd.Context(), source, account)
	} else {
		err = sess.client.Select(cmd.Context(), soundtouch.ContentItem{
			Source:        source,
			SourceAccount: account,
		})
	}
	if err != nil {
		return fmt.Errorf("set source: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"source": source})
	}
	fmt.Printf("📻 Source: %s\n", source)
	return nil
}
