package bose

import (
	"context"
	"fmt"
	"sort"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

// GetActiveGroups fetches the multiroom groups this device participates in.
func (s *Speaker) GetActiveGroups(ctx context.Context) ([]ActiveGroup, error) {
	groups, err := request[ActiveGroups](ctx, s, "/grouping/activeGroups", "GET", nil)
	if err != nil {
		return nil, err
	}
	return groups.ActiveGroups, nil
}

// SetActiveGroup creates a new group with this device as master and the given
// devices as members.
func (s *Speaker) SetActiveGroup(ctx context.Context, memberGUIDs []string) error {
	products := make([]map[string]string, 0, len(memberGUIDs)+1)
	products = append(products, map[string]string{"productId": s.DeviceID()})
	for _, guid := range memberGUIDs {
		if guid == s.DeviceID() {
			continue
		}
		products = append(products, map[string]string{"productId": guid})
	}

	_, err := s.Request(ctx, "/grouping/activeGroups", "POST", map[string]any{
		"products": products,
	})
	return err
}

// AddToActiveGroup adds devices to an existing group mastered by this device.
func (s *Speaker) AddToActiveGroup(ctx context.Context, groupID string, memberGUIDs []string) error {
	products := make([]map[string]string, 0, len(memberGUIDs))
	for _, guid := range memberGUIDs {
		products = append(products, map[string]string{"productId": guid})
	}

	_, err := s.Request(ctx, "/grouping/activeGroups", "PUT", map[string]any{
		"activeGroupId": groupID,
		"addProducts":   products,
	})
	return err
}

// RemoveFromActiveGroup removes devices from a group mastered by this device.
func (s *Speaker) RemoveFromActiveGroup(ctx context.Context, groupID string, memberGUIDs []string) error {
	products := make([]map[string]string, 0, len(memberGUIDs))
	for _, guid := range memberGUIDs {
		products = append(products, map[string]string{"productId": guid})
	}

	_, err := s.Request(ctx, "/grouping/activeGroups", "PUT", map[string]any{
		"activeGroupId":  groupID,
		"removeProducts": products,
	})
	return err
}

// StopActiveGroups dissolves all groups mastered by this device.
func (s *Speaker) StopActiveGroups(ctx context.Context) error {
	_, err := s.Request(ctx, "/grouping/activeGroups", "DELETE", nil)
	return err
}

// OrderedMembers returns the group's member GUIDs with the master first. The
// remaining members keep a stable order.
func OrderedMembers(group ActiveGroup) []string {
	guids := make([]string, 0, len(group.Products))
	for _, p := range group.Products {
		guids = append(guids, p.ProductID)
	}
	sort.SliceStable(guids, func(i, j int) bool {
		return guids[i] == group.GroupMasterID && guids[j] != group.GroupMasterID
	})
	return guids
}

// SpeakerResolver returns a connected Speaker for a device GUID. Group
// operations use it to reach other devices when the operation has to run on
// the group master.
type SpeakerResolver func(ctx context.Context, guid string) (*Speaker, error)

// Join adds the given devices to the target's group. The target is treated as
// the intended master: if it already belongs to a group mastered by another
// device, the operation runs on that master instead. Without an existing
// group, a new one is created with the target as master.
func Join(ctx context.Context, target *Speaker, resolve SpeakerResolver, memberGUIDs []string) error {
	groups, err := target.GetActiveGroups(ctx)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		return target.SetActiveGroup(ctx, memberGUIDs)
	}

	group := groups[0]
	if group.GroupMasterID != target.DeviceID() {
		master, err := resolve(ctx, group.GroupMasterID)
		if err != nil {
			return fmt.Errorf("resolve group master %s: %w", group.GroupMasterID, err)
		}
		return master.AddToActiveGroup(ctx, group.ActiveGroupID, memberGUIDs)
	}

	return target.AddToActiveGroup(ctx, group.ActiveGroupID, memberGUIDs)
}

// Unjoin removes the device from its group. A master dissolves the whole
// group; a member asks the master to drop just this device.
func Unjoin(ctx context.Context, s *Speaker, resolve SpeakerResolver) error {
	groups, err := s.GetActiveGroups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("%w: %s", chimeerrors.ErrNotInGroup, s.Device().Name)
	}

	group := groups[0]
	if group.GroupMasterID == s.DeviceID() {
		return s.StopActiveGroups(ctx)
	}

	master, err := resolve(ctx, group.GroupMasterID)
	if err != nil {
		return fmt.Errorf("resolve group master %s: %w", group.GroupMasterID, err)
	}
	return master.RemoveFromActiveGroup(ctx, group.ActiveGroupID, []string{s.DeviceID()})
}
