package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose/auth"
	chimeerrors "github.com/tessro/chime/internal/errors"
	"github.com/tessro/chime/internal/wizard"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Bose account authentication",
	Long: `Manage the Bose account session used by the smart speaker family.

SoundTouch speakers need no authentication; this only matters if you
own speakers from the smart line.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with your Bose account",
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE:  runAuthLogout,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return fmt.Errorf("auth login needs an interactive terminal")
	}

	email, password, err := wizard.PromptCredentials(cfg.Account.Email)
	if err != nil {
		return err
	}

	client := auth.NewClient()
	token, err := client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return err
	}
	if err := storage.Save(token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	fmt.Printf("✓ Signed in as %s\n", email)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return err
	}
	token, err := storage.Load()
	if err != nil {
		return err
	}

	if JSONOutput() {
		out := map[string]any{"authenticated": token != nil}
		if token != nil {
			out["expired"] = token.IsExpired()
			out["expires_at"] = token.ExpiresAt.Format(time.RFC3339)
			out["person_id"] = token.BosePersonID
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if token == nil {
		fmt.Println("Not signed in")
		fmt.Println(chimeerrors.GetSuggestion(chimeerrors.ErrNotAuthenticated))
		return nil
	}

	if token.IsExpired() {
		fmt.Println("Session expired (will refresh on next use)")
	} else {
		fmt.Printf("Signed in, session valid for %s\n", token.ValidFor().Round(time.Minute))
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return err
	}
	if !storage.Exists() {
		fmt.Println("Not signed in")
		return nil
	}
	if err := storage.Delete(); err != nil {
		return err
	}
	fmt.Println("✓ Signed out")
	return nil
}
