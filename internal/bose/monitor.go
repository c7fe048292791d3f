package bose

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/chime/internal/core"
)

const (
	// checkInterval is how often the monitor verifies the connection.
	checkInterval = 30 * time.Second

	// reconnectDelay is how long to wait between reconnect attempts.
	reconnectDelay = 10 * time.Second
)

// Rediscoverer finds a device's current address on the network. Speakers can
// come back from standby with a new DHCP lease.
type Rediscoverer interface {
	Find(ctx context.Context, guid string) (core.Device, error)
}

// Monitor watches a speaker connection and reconnects when it drops. Used by
// long-running sessions like tail and the TUI.
type Monitor struct {
	speaker   *Speaker
	discovery Rediscoverer
	log       zerolog.Logger

	onReconnect     func()
	onAddressChange func(device core.Device)
}

// NewMonitor creates a Monitor for the given speaker. discovery may be nil,
// in which case reconnects always target the last known address.
func NewMonitor(speaker *Speaker, discovery Rediscoverer, log zerolog.Logger) *Monitor {
	return &Monitor{
		speaker:   speaker,
		discovery: discovery,
		log:       log,
	}
}

// OnReconnect registers a callback invoked after a successful reconnect, so
// callers can re-establish subscriptions.
func (m *Monitor) OnReconnect(fn func()) {
	m.onReconnect = fn
}

// OnAddressChange registers a callback invoked when rediscovery finds the
// speaker on a new address, so callers can persist the new IP.
func (m *Monitor) OnAddressChange(fn func(device core.Device)) {
	m.onAddressChange = fn
}

// Run checks the connection periodically until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if m.speaker.IsConnected() {
			continue
		}

		m.log.Warn().Str("device", m.speaker.Device().Name).Msg("connection lost, reconnecting")
		m.reconnect(ctx)
	}
}

// reconnect retries until the connection is restored or the context ends.
func (m *Monitor) reconnect(ctx context.Context) {
	for {
		if err := m.tryReconnect(ctx); err == nil {
			m.log.Info().Str("device", m.speaker.Device().Name).Msg("reconnected")
			if m.onReconnect != nil {
				m.onReconnect()
			}
			return
		} else {
			m.log.Debug().Err(err).Msg("reconnect attempt failed")
		}

		timer := time.NewTimer(reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (m *Monitor) tryReconnect(ctx context.Context) error {
	if m.discovery != nil {
		if device, err := m.discovery.Find(ctx, m.speaker.DeviceID()); err == nil {
			if device.IP != m.speaker.Device().IP {
				m.log.Info().
					Str("device", device.Name).
					Str("old_ip", m.speaker.Device().IP).
					Str("new_ip", device.IP).
					Msg("device moved to new address")
				m.speaker.SetAddress(device.IP)
				if m.onAddressChange != nil {
					m.onAddressChange(device)
				}
			}
		}
	}
	return m.speaker.Connect(ctx)
}
