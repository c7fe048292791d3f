package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	requestDevice string
	requestMethod string
	requestBody   string
)

var requestCmd = &cobra.Command{
	Use:   "request <resource>",
	Short: "Send a raw API request to a speaker",
	Long: `Send a raw request to a speaker's local API and print the response.
Useful for endpoints chime has no dedicated command for.

Smart speakers take a websocket resource path and an optional JSON
body; SoundTouch speakers take an HTTP path and an optional XML body.

Examples:
  chime request /system/info
  chime request /audio/bass --method POST --body '{"value": -20}'
  chime request /now_playing -d kitchen`,
	Args: cobra.ExactArgs(1),
	RunE: runRequest,
}

func init() {
	requestCmd.Flags().StringVarP(&requestDevice, "device", "d", "", "target device")
	requestCmd.Flags().StringVarP(&requestMethod, "method", "X", "GET", "request method")
	requestCmd.Flags().StringVarP(&requestBody, "body", "b", "", "request body")
	rootCmd.AddCommand(requestCmd)
}

func runRequest(cmd *cobra.Command, args []string) error {
	resource := args[0]
	method := strings.ToUpper(requestMethod)

	sess, err := openSession(cmd.Context(), requestDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.speaker != nil {
		var body any
		if requestBody != "" {
			var parsed json.RawMessage
			if err := json.Unmarshal([]byte(requestBody), &parsed); err != nil {
				return fmt.Errorf("body is not valid JSON: %w", err)
			}
			body = parsed
		}

		resp, err := sess.speaker.Request(cmd.Context(), resource, method, body)
		if err != nil {
			return err
		}

		var pretty any
		if json.Unmarshal(resp, &pretty) == nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		}
		fmt.Println(string(resp))
		return nil
	}

	resp, err := sess.client.Raw(cmd.Context(), method, resource, []byte(requestBody))
	if err != nil {
		return err
	}
	fmt.Println(string(resp))
	return nil
}
