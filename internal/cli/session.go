package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/tessro/chime/internal/bose"
	"github.com/tessro/chime/internal/bose/auth"
	"github.com/tessro/chime/internal/core"
	"github.com/tessro/chime/internal/discovery"
	chimeerrors "github.com/tessro/chime/internal/errors"
	"github.com/tessro/chime/internal/registry"
	"github.com/tessro/chime/internal/soundtouch"
)

// session is an open control connection to one speaker, family-agnostic
// from the caller's point of view.
type session struct {
	device  core.Device
	speaker *bose.Speaker      // set for the smart family
	client  *soundtouch.Client // set for the soundtouch family
	player  core.Player
}

// Close tears down the connection, if the family holds one.
func (s *session) Close() {
	if s.speaker != nil {
		_ = s.speaker.Disconnect()
	}
}

func openRegistry() (*registry.Registry, error) {
	return registry.Open("")
}

// resolveDevice finds the target device for a command: the --device value if
// given, otherwise the configured default, otherwise the sole registered
// device.
func resolveDevice(reg *registry.Registry, identifier string) (core.Device, error) {
	if identifier == "" {
		identifier = cfg.Defaults.Device
	}

	if identifier != "" {
		entry, err := reg.Get(identifier)
		if err != nil {
			return core.Device{}, fmt.Errorf("device %q: %w", identifier, err)
		}
		return entry.Device, nil
	}

	entries := reg.List()
	switch len(entries) {
	case 0:
		return core.Device{}, chimeerrors.WithSuggestion(
			chimeerrors.ErrNotRegistered,
			"Run 'chime setup' to discover and register your speakers")
	case 1:
		return entries[0].Device, nil
	default:
		return core.Device{}, chimeerrors.WithSuggestion(
			fmt.Errorf("%d devices registered, none chosen", len(entries)),
			"Pass --device, or set defaults.device in ~/.chimerc")
	}
}

// loadToken returns the stored control token for the smart family.
func loadToken() (*auth.Token, error) {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return nil, err
	}
	token, err := storage.Load()
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, chimeerrors.ErrNotAuthenticated
	}
	return token, nil
}

// connectSpeaker opens a control connection to a smart speaker, refreshing
// the token first when it has expired.
func connectSpeaker(ctx context.Context, device core.Device) (*bose.Speaker, error) {
	token, err := loadToken()
	if err != nil {
		return nil, err
	}

	if token.IsExpired() {
		client := auth.NewClient()
		refreshed, err := client.Refresh(ctx, token)
		if err != nil {
			return nil, err
		}
		token = refreshed
		if storage, serr := auth.NewTokenStorage(""); serr == nil {
			_ = storage.Save(token)
		}
	}

	access := token.AccessToken
	speaker := bose.NewSpeaker(device, func() string { return access },
		bose.WithSpeakerLogger(log))
	if err := speaker.Connect(ctx); err != nil {
		return nil, err
	}
	return speaker, nil
}

// openSession resolves the target device and opens a player for it.
func openSession(ctx context.Context, identifier string) (*session, error) {
	reg, err := openRegistry()
	if err != nil {
		return nil, err
	}

	device, err := resolveDevice(reg, identifier)
	if err != nil {
		return nil, err
	}

	return openSessionFor(ctx, device)
}

// openSessionFor opens a player for an already-resolved device.
func openSessionFor(ctx context.Context, device core.Device) (*session, error) {
	switch device.Family {
	case core.FamilySmart:
		speaker, err := connectSpeaker(ctx, device)
		if err != nil {
			return nil, err
		}
		return &session{
			device:  device,
			speaker: speaker,
			player:  bose.NewPlayer(speaker),
		}, nil

	case core.FamilySoundTouch:
		client := soundtouch.NewClient(device, soundtouch.WithClientLogger(log))
		return &session{
			device: device,
			client: client,
			player: soundtouch.NewPlayer(client),
		}, nil

	default:
		return nil, fmt.Errorf("unknown device family %q", device.Family)
	}
}

// newDiscovery builds a Discovery from the loaded config.
func newDiscovery() *discovery.Discovery {
	return discovery.New(
		discovery.WithTimeout(time.Duration(cfg.Discovery.Timeout)*time.Second),
		discovery.WithFamilies(cfg.Discovery.Smart, cfg.Discovery.SoundTouch),
		discovery.WithLogger(log),
	)
}
