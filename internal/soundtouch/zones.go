package soundtouch

import (
	"context"
	"fmt"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

// GetZone fetches the multiroom zone state.
func (c *Client) GetZone(ctx context.Context) (*Zone, error) {
	var zone Zone
	if err := c.get(ctx, "/getZone", &zone); err != nil {
		return nil, err
	}
	return &zone, nil
}

// SetZone creates a zone with this device as master and the given devices as
// slaves.
func (c *Client) SetZone(ctx context.Context, members []ZoneMember) error {
	return c.post(ctx, "/setZone", Zone{Master: c.DeviceID(), Members: members})
}

// AddZoneSlaves adds devices to a zone mastered by this device.
func (c *Client) AddZoneSlaves(ctx context.Context, members []ZoneMember) error {
	return c.post(ctx, "/addZoneSlave", Zone{Master: c.DeviceID(), Members: members})
}

// RemoveZoneSlaves removes devices from a zone mastered by this device.
// Removing every slave dissolves the zone.
func (c *Client) RemoveZoneSlaves(ctx context.Context, members []ZoneMember) error {
	return c.post(ctx, "/removeZoneSlave", Zone{Master: c.DeviceID(), Members: members})
}

// OrderedMembers returns the zone's device IDs with the master first.
func OrderedMembers(zone *Zone) []string {
	if zone == nil || zone.Master == "" {
		return nil
	}
	ids := []string{zone.Master}
	for _, m := range zone.Members {
		if m.DeviceID != zone.Master {
			ids = append(ids, m.DeviceID)
		}
	}
	return ids
}

// ClientResolver returns a Client for a device ID. Zone operations use it to
// reach the zone master when the operation has to run there.
type ClientResolver func(ctx context.Context, deviceID string) (*Client, error)

// Join adds the given devices to the target's zone. The target is treated as
// the intended master: if it is already a slave in another device's zone, the
// operation runs on that master instead.
func Join(ctx context.Context, target *Client, resolve ClientResolver, members []ZoneMember) error {
	zone, err := target.GetZone(ctx)
	if err != nil {
		return err
	}

	if zone.Master == "" {
		return target.SetZone(ctx, members)
	}

	if zone.Master != target.DeviceID() {
		master, err := resolve(ctx, zone.Master)
		if err != nil {
			return fmt.Errorf("resolve zone master %s: %w", zone.Master, err)
		}
		return master.AddZoneSlaves(ctx, members)
	}

	return target.AddZoneSlaves(ctx, members)
}

// Unjoin removes the device from its zone. A master dissolves the whole zone
// by removing every slave; a slave asks the master to drop just this device.
func Unjoin(ctx context.Context, c *Client, resolve ClientResolver) error {
	zone, err := c.GetZone(ctx)
	if err != nil {
		return err
	}
	if zone.Master == "" {
		return fmt.Errorf("%w: %s", chimeerrors.ErrNotInGroup, c.Device().Name)
	}

	if zone.Master == c.DeviceID() {
		var slaves []ZoneMember
		for _, m := range zone.Members {
			if m.DeviceID != c.DeviceID() {
				slaves = append(slaves, m)
			}
		}
		return c.RemoveZoneSlaves(ctx, slaves)
	}

	master, err := resolve(ctx, zone.Master)
	if err != nil {
		return fmt.Errorf("resolve zone master %s: %w", zone.Master, err)
	}
	return master.RemoveZoneSlaves(ctx, []ZoneMember{{IPAddress: c.Device().IP, DeviceID: c.DeviceID()}})
}
