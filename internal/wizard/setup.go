package wizard

import (
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tessro/chime/internal/core"
)

// PromptCredentials asks for Bose account credentials. The email field is
// pre-filled with the configured address when there is one.
func PromptCredentials(defaultEmail string) (email, password string, err error) {
	email = defaultEmail

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bose account email").
				Description("Smart speakers require a Bose account for local control").
				Value(&email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password cannot be empty")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("setup cancelled: %w", err)
	}
	return email, password, nil
}

// PromptManualDevice asks for a device address and family, for speakers that
// mDNS discovery cannot see.
func PromptManualDevice() (ip string, family core.Family, err error) {
	familyStr := string(core.FamilySmart)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Speaker IP address").
				Value(&ip).
				Validate(func(s string) error {
					if net.ParseIP(s) == nil {
						return fmt.Errorf("enter a valid IP address")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Speaker family").
				Options(
					huh.NewOption("Smart (Home Speaker, Soundbar, Portable)", string(core.FamilySmart)),
					huh.NewOption("SoundTouch", string(core.FamilySoundTouch)),
				).
				Value(&familyStr),
		),
	)

	if err := form.Run(); err != nil {
		return "", "", fmt.Errorf("setup cancelled: %w", err)
	}
	return ip, core.Family(familyStr), nil
}

// PromptAlias asks for an optional short name for a registered device.
func PromptAlias(deviceName string) (string, error) {
	var alias string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Alias for %s (optional)", deviceName)).
				Description("A short name to use in commands, e.g. 'kitchen'").
				Value(&alias),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("setup cancelled: %w", err)
	}
	return strings.TrimSpace(alias), nil
}

// Confirm asks a yes/no question.
func Confirm(title string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
