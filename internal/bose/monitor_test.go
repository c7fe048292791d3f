package bose

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/chime/internal/core"
)

type stubRediscoverer struct {
	device core.Device
	err    error
}

func (s stubRediscoverer) Find(ctx context.Context, guid string) (core.Device, error) {
	return s.device, s.err
}

func TestMonitorReconnectPersistsNewAddress(t *testing.T) {
	fd := newFakeDevice(t, func(msg Message) (any, int) {
		return capabilitiesBody(), 200
	})
	speaker := NewSpeaker(
		core.Device{GUID: "guid-self", Name: "Kitchen", IP: "10.0.0.5", Family: core.FamilySmart},
		func() string { return "" },
		WithWebsocketURL(fd.wsURL()),
	)
	t.Cleanup(func() { speaker.Disconnect() })

	monitor := NewMonitor(speaker, stubRediscoverer{
		device: core.Device{GUID: "guid-self", Name: "Kitchen", IP: "10.0.0.9"},
	}, zerolog.Nop())

	var moved []core.Device
	monitor.OnAddressChange(func(d core.Device) { moved = append(moved, d) })

	require.NoError(t, monitor.tryReconnect(context.Background()))

	assert.True(t, speaker.IsConnected())
	assert.Equal(t, "10.0.0.9", speaker.Device().IP)
	require.Len(t, moved, 1)
	assert.Equal(t, "guid-self", moved[0].GUID)
	assert.Equal(t, "10.0.0.9", moved[0].IP)
}

func TestMonitorReconnectSameAddress(t *testing.T) {
	fd := newFakeDevice(t, func(msg Message) (any, int) {
		return capabilitiesBody(), 200
	})
	speaker := NewSpeaker(
		core.Device{GUID: "guid-self", Name: "Kitchen", IP: "10.0.0.5", Family: core.FamilySmart},
		func() string { return "" },
		WithWebsocketURL(fd.wsURL()),
	)
	t.Cleanup(func() { speaker.Disconnect() })

	monitor := NewMonitor(speaker, stubRediscoverer{
		device: core.Device{GUID: "guid-self", Name: "Kitchen", IP: "10.0.0.5"},
	}, zerolog.Nop())

	monitor.OnAddressChange(func(d core.Device) {
		t.Errorf("address change reported for unchanged IP %s", d.IP)
	})

	require.NoError(t, monitor.tryReconnect(context.Background()))
	assert.Equal(t, "10.0.0.5", speaker.Device().IP)
}

func TestMonitorReconnectCallback(t *testing.T) {
	fd := newFakeDevice(t, func(msg Message) (any, int) {
		return capabilitiesBody(), 200
	})
	speaker := NewSpeaker(
		core.Device{GUID: "guid-self", Name: "Kitchen"},
		func() string { return "" },
		WithWebsocketURL(fd.wsURL()),
	)
	t.Cleanup(func() { speaker.Disconnect() })

	monitor := NewMonitor(speaker, nil, zerolog.Nop())

	reconnects := 0
	monitor.OnReconnect(func() { reconnects++ })

	monitor.reconnect(context.Background())

	assert.True(t, speaker.IsConnected())
	assert.Equal(t, 1, reconnects)
}
