package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose/auth"
	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/soundtouch"
	"github.com/tessro/chime/internal/wizard"
)

var setupManual bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Discover and register speakers",
	Long: `Walk through first-time setup: scan the network for Bose speakers,
pick one, and register it so other commands can address it by name.

Use --manual to register a speaker by IP address when mDNS discovery
does not reach it (separate VLANs, mDNS filtering).`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupManual, "manual", false, "register a device by IP address")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return fmt.Errorf("setup needs an interactive terminal")
	}

	ctx := cmd.Context()

	var device *core.Device
	var err error
	if setupManual {
		device, err = manualDevice(ctx)
	} else {
		device, err = discoverAndPick(ctx)
	}
	if err != nil {
		return err
	}
	if device == nil {
		fmt.Println("Setup cancelled")
		return nil
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	entry, err := reg.Add(*device)
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}

	alias, err := wizard.PromptAlias(device.Name)
	if err != nil {
		return err
	}
	if alias != "" && alias != device.Name {
		if err := reg.SetAlias(entry.ID, alias); err != nil {
			return err
		}
	}

	fmt.Printf("✓ Registered %s (%s, %s)\n", device.Name, device.Family, device.IP)

	// The smart family needs an account session before it will talk to us.
	if device.Family == core.FamilySmart {
		if storage, serr := auth.NewTokenStorage(""); serr == nil && !storage.Exists() {
			ok, cerr := wizard.Confirm("Sign in with your Bose account now?")
			if cerr == nil && ok {
				return runAuthLogin(cmd, nil)
			}
			fmt.Println("Run 'chime auth login' before controlling this speaker.")
		}
	}

	return nil
}

func discoverAndPick(ctx context.Context) (*core.Device, error) {
	devices, err := wizard.RunScan(ctx, newDiscovery().Discover)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(devices) == 0 {
		fmt.Println("No speakers found. Try 'chime setup --manual' to add one by IP.")
		return nil, nil
	}

	return wizard.RunDevicePicker(devices)
}

// manualDevice builds a device from a user-supplied IP. SoundTouch devices
// answer an unauthenticated /info request, so their identity can be filled
// in; smart devices are registered with the IP as a placeholder name.
func manualDevice(ctx context.Context) (*core.Device, error) {
	ip, family, err := wizard.PromptManualDevice()
	if err != nil {
		return nil, err
	}

	device := core.Device{
		GUID:   ip,
		Name:   ip,
		IP:     ip,
		Family: family,
	}

	if family == core.FamilySoundTouch {
		client := soundtouch.NewClient(device, soundtouch.WithClientLogger(log))
		info, err := client.GetInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("speaker at %s did not answer: %w", ip, err)
		}
		device.GUID = info.DeviceID
		device.Name = info.Name
		device.Model = info.Type
	}

	return &device, nil
}
