package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose"
	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/registry"
	"github.com/tessro/chime/internal/soundtouch"
)

var (
	groupDevice  string
	groupMembers []string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage multiroom playback groups",
	Long: `Manage multiroom playback groups.

Grouping is per-family: smart speakers group with smart speakers,
SoundTouch with SoundTouch. The target of 'group join' becomes the
group master; if it already plays in another device's group, the
members join that group instead.`,
}

var groupJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Group speakers for synchronized playback",
	RunE:  runGroupJoin,
}

var groupUnjoinCmd = &cobra.Command{
	Use:   "unjoin",
	Short: "Remove a speaker from its group",
	Long: `Remove a speaker from its group. Run against a member, only that
member leaves; run against the master, the whole group dissolves.`,
	RunE: runGroupUnjoin,
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a speaker's current group",
	RunE:  runGroupList,
}

func init() {
	groupCmd.PersistentFlags().StringVarP(&groupDevice, "device", "d", "", "target device")
	groupJoinCmd.Flags().StringSliceVarP(&groupMembers, "members", "m", nil, "devices to add (name, alias, or GUID)")
	_ = groupJoinCmd.MarkFlagRequired("members")

	groupCmd.AddCommand(groupJoinCmd)
	groupCmd.AddCommand(groupUnjoinCmd)
	groupCmd.AddCommand(groupListCmd)
	rootCmd.AddCommand(groupCmd)
}

// speakerResolver resolves group masters by GUID through the registry and,
// failing that, a network scan. Opened connections are collected so the
// caller can close them.
func speakerResolver(reg *registry.Registry, opened *[]*bose.Speaker) bose.SpeakerResolver {
	return func(ctx context.Context, guid string) (*bose.Speaker, error) {
		device, err := lookupDevice(ctx, reg, guid)
		if err != nil {
			return nil, err
		}
		speaker, err := connectSpeaker(ctx, device)
		if err != nil {
			return nil, err
		}
		*opened = append(*opened, speaker)
		return speaker, nil
	}
}

func clientResolver(reg *registry.Registry) soundtouch.ClientResolver {
	return func(ctx context.Context, deviceID string) (*soundtouch.Client, error) {
		device, err := lookupDevice(ctx, reg, deviceID)
		if err != nil {
			return nil, err
		}
		return soundtouch.NewClient(device, soundtouch.WithClientLogger(log)), nil
	}
}

// lookupDevice finds a device by identifier, falling back to mDNS when it is
// not registered. Group masters can be devices the user never set up.
func lookupDevice(ctx context.Context, reg *registry.Registry, identifier string) (core.Device, error) {
	if entry, err := reg.Get(identifier); err == nil {
		return entry.Device, nil
	}
	return newDiscovery().Find(ctx, identifier)
}

func runGroupJoin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	target, err := resolveDevice(reg, groupDevice)
	if err != nil {
		return err
	}

	// Resolve members up front so a typo fails before any group mutation.
	members := make([]core.Device, 0, len(groupMembers))
	for _, m := range groupMembers {
		device, err := lookupDevice(ctx, reg, m)
		if err != nil {
			return fmt.Errorf("member %q: %w", m, err)
		}
		if device.Family != target.Family {
			return fmt.Errorf("member %q is a %s device; %s speakers only group with their own family",
				m, device.Family, target.Family)
		}
		members = append(members, device)
	}

	sess, err := openSessionFor(ctx, target)
	if err != nil {
		return err
	}
	defer sess.Close()

	switch target.Family {
	case core.FamilySmart:
		guids := make([]string, len(members))
		for i, d := range members {
			guids[i] = d.GUID
		}
		var opened []*bose.Speaker
		defer func() {
			for _, s := range opened {
				_ = s.Disconnect()
			}
		}()
		err = bose.Join(ctx, sess.speaker, speakerResolver(reg, &opened), guids)

	case core.FamilySoundTouch:
		zoneMembers := make([]soundtouch.ZoneMember, len(members))
		for i, d := range members {
			zoneMembers[i] = soundtouch.ZoneMember{IPAddress: d.IP, DeviceID: d.GUID}
		}
		err = soundtouch.Join(ctx, sess.client, clientResolver(reg), zoneMembers)
	}
	if err != nil {
		return fmt.Errorf("join group: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"master":  target.GUID,
			"members": groupMembers,
		})
	}
	fmt.Printf("🔗 Grouped %d speaker(s) with %s\n", len(members), target.Name)
	return nil
}

func runGroupUnjoin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	device, err := resolveDevice(reg, groupDevice)
	if err != nil {
		return err
	}

	sess, err := openSessionFor(ctx, device)
	if err != nil {
		return err
	}
	defer sess.Close()

	switch device.Family {
	case core.FamilySmart:
		var opened []*bose.Speaker
		defer func() {
			for _, s := range opened {
				_ = s.Disconnect()
			}
		}()
		err = bose.Unjoin(ctx, sess.speaker, speakerResolver(reg, &opened))

	case core.FamilySoundTouch:
		err = soundtouch.Unjoin(ctx, sess.client, clientResolver(reg))
	}
	if err != nil {
		return fmt.Errorf("unjoin: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "left"})
	}
	fmt.Printf("✓ %s left its group\n", device.Name)
	return nil
}

func runGroupList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := openSession(ctx, groupDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	var members []string
	if sess.speaker != nil {
		groups, err := sess.speaker.GetActiveGroups(ctx)
		if err != nil {
			return err
		}
		if len(groups) > 0 {
			members = bose.OrderedMembers(groups[0])
		}
	} else {
		zone, err := sess.client.GetZone(ctx)
		if err != nil {
			return err
		}
		members = soundtouch.OrderedMembers(zone)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"members": members})
	}

	if len(members) == 0 {
		fmt.Printf("%s is not in a group\n", sess.device.Name)
		return nil
	}

	reg, _ := openRegistry()
	table := NewTable("ROLE", "DEVICE")
	for i, guid := range members {
		role := "member"
		if i == 0 {
			role = "master"
		}
		name := guid
		if reg != nil {
			if entry, err := reg.Get(guid); err == nil {
				name = entry.Device.Name
			}
		}
		table.Row(role, name)
	}
	table.Flush()
	return nil
}
