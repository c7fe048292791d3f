package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

var devicesRefresh bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List registered speakers",
	Long: `List registered speakers and their last known addresses.

With --refresh, scan the network first and update stored addresses for
any speakers whose IP changed.`,
	RunE: runDevices,
}

var devicesDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the network for speakers",
	RunE:  runDevicesDiscover,
}

var devicesAliasCmd = &cobra.Command{
	Use:   "alias <device> <name>",
	Short: "Add an alias for a registered speaker",
	Args:  cobra.ExactArgs(2),
	RunE:  runDevicesAlias,
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <device>",
	Short: "Remove a registered speaker",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesRemove,
}

var devicesInfoCmd = &cobra.Command{
	Use:   "info [device]",
	Short: "Show hardware details for a speaker",
	Long: `Show hardware details for a speaker.

Smart speakers report network interfaces, paired accessories, and
battery state when the hardware has one. SoundTouch systems report
their device identity.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDevicesInfo,
}

var (
	accessoriesRears string
	accessoriesSubs  string
)

var devicesAccessoriesCmd = &cobra.Command{
	Use:   "accessories [device]",
	Short: "Show or toggle paired surrounds and subwoofers",
	Long: `Show paired accessory speakers, or enable and disable them.

Without flags, lists the paired rears and subs. With --rears or --subs,
turns that accessory group on or off. Smart speakers only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDevicesAccessories,
}

func init() {
	devicesCmd.Flags().BoolVarP(&devicesRefresh, "refresh", "r", false, "rescan the network and update addresses")
	devicesAccessoriesCmd.Flags().StringVar(&accessoriesRears, "rears", "", "enable or disable paired rears (on|off)")
	devicesAccessoriesCmd.Flags().StringVar(&accessoriesSubs, "subs", "", "enable or disable paired subs (on|off)")
	devicesCmd.AddCommand(devicesDiscoverCmd)
	devicesCmd.AddCommand(devicesAliasCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	devicesCmd.AddCommand(devicesInfoCmd)
	devicesCmd.AddCommand(devicesAccessoriesCmd)
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if devicesRefresh {
		found, err := newDiscovery().Discover(cmd.Context())
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}
		for _, d := range found {
			_ = reg.UpdateIP(d.GUID, d.IP)
		}
	}

	entries := reg.List()

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No registered speakers. Run 'chime setup' to add one.")
		return nil
	}

	table := NewTable("NAME", "FAMILY", "IP", "MODEL", "ALIASES")
	for _, e := range entries {
		aliases := ""
		if len(e.Aliases) > 0 {
			aliases = e.Aliases[0]
			for _, a := range e.Aliases[1:] {
				aliases += ", " + a
			}
		}
		table.Row(e.Device.Name, string(e.Device.Family), e.Device.IP, e.Device.Model, aliases)
	}
	table.Flush()
	return nil
}

func runDevicesDiscover(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(os.Stderr, "Scanning...")

	devices, err := newDiscovery().Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No speakers found")
		return nil
	}

	table := NewTable("NAME", "FAMILY", "IP", "MODEL")
	for _, d := range devices {
		table.Row(d.Name, string(d.Family), d.IP, d.Model)
	}
	table.Flush()
	return nil
}

func runDevicesAlias(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	if err := reg.SetAlias(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("✓ %s is now also known as %q\n", args[0], args[1])
	return nil
}

func runDevicesRemove(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	if err := reg.Remove(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Removed %s\n", args[0])
	return nil
}

func runDevicesInfo(cmd *cobra.Command, args []string) error {
	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	}

	sess, err := openSession(cmd.Context(), identifier)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.client != nil {
		info, err := sess.client.GetInfo(cmd.Context())
		if err != nil {
			return err
		}
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(info)
		}
		fmt.Printf("%s (%s)\n", info.Name, info.Type)
		fmt.Printf("  device id: %s\n", info.DeviceID)
		if info.Account != "" {
			fmt.Printf("  account:   %s\n", info.Account)
		}
		return nil
	}

	ctx := cmd.Context()
	speaker := sess.speaker

	info, err := speaker.GetSystemInfo(ctx)
	if err != nil {
		return err
	}
	network, netErr := speaker.GetNetworkStatus(ctx)
	accessories, accErr := speaker.GetAccessories(ctx)
	battery, battErr := speaker.GetBattery(ctx)

	if JSONOutput() {
		out := map[string]any{"system": info}
		if netErr == nil {
			out["network"] = network
		}
		if accErr == nil {
			out["accessories"] = accessories
		}
		if battErr == nil {
			out["battery"] = battery
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	fmt.Printf("%s (%s)\n", info.Name, info.ProductName)
	fmt.Printf("  guid: %s\n", info.GUID)

	if battErr == nil {
		fmt.Printf("  battery: %d%% (%s)\n", battery.Percent, battery.ChargeStatus)
	}

	if netErr == nil && len(network.Interfaces) > 0 {
		fmt.Println("\nNetwork:")
		table := NewTable("", "INTERFACE", "TYPE", "IP", "MAC")
		for _, iface := range network.Interfaces {
			table.Row(StatusIcon(iface.Name == network.PrimaryInterface),
				iface.Name, iface.Type, iface.IPInfo.IPAddress, iface.MACAddress)
		}
		table.Flush()
	}

	if accErr == nil && (len(accessories.Rears) > 0 || len(accessories.Subs) > 0) {
		fmt.Println("\nAccessories:")
		printAccessories(accessories)
	}

	return nil
}

func runDevicesAccessories(cmd *cobra.Command, args []string) error {
	var identifier string
	if len(args) > 0 {
		identifier = args[0]
	}

	sess, err := openSession(cmd.Context(), identifier)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.speaker == nil {
		return fmt.Errorf("%w: %s has no accessory support", chimeerrors.ErrUnsupported, sess.device.Name)
	}

	ctx := cmd.Context()
	accessories, err := sess.speaker.GetAccessories(ctx)
	if err != nil {
		return err
	}

	if accessoriesRears == "" && accessoriesSubs == "" {
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(accessories)
		}
		printAccessories(accessories)
		return nil
	}

	rears := accessories.Enabled.Rears
	subs := accessories.Enabled.Subs
	if accessoriesRears != "" {
		if rears, err = parseOnOff(accessoriesRears); err != nil {
			return err
		}
	}
	if accessoriesSubs != "" {
		if subs, err = parseOnOff(accessoriesSubs); err != nil {
			return err
		}
	}

	if err := sess.speaker.SetAccessories(ctx, rears, subs); err != nil {
		return err
	}
	fmt.Printf("✓ rears %s, subs %s\n", onOff(rears), onOff(subs))
	return nil
}

func printAccessories(accessories *bose.Accessories) {
	table := NewTable("", "KIND", "TYPE", "SERIAL", "VERSION")
	for _, a := range accessories.Rears {
		table.Row(StatusIcon(a.Available && accessories.Enabled.Rears), "rear", a.Type, a.SerialNumber, a.Version)
	}
	for _, a := range accessories.Subs {
		table.Row(StatusIcon(a.Available && accessories.Enabled.Subs), "sub", a.Type, a.SerialNumber, a.Version)
	}
	table.Flush()
}

func parseOnOff(value string) (bool, error) {
	switch value {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", value)
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
