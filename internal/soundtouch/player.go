package soundtouch

import (
	"context"
	"fmt"
	"time"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

// Player adapts a Client to the shared Player interface.
type Player struct {
	client *Client
}

// NewPlayer wraps a Client.
func NewPlayer(client *Client) *Player {
	return &Player{client: client}
}

func (p *Player) Play(ctx context.Context) error {
	return p.client.PressKey(ctx, KeyPlay)
}

func (p *Player) Pause(ctx context.Context) error {
	return p.client.PressKey(ctx, KeyPause)
}

func (p *Player) Stop(ctx context.Context) error {
	return p.client.PressKey(ctx, KeyStop)
}

func (p *Player) Next(ctx context.Context) error {
	return p.client.PressKey(ctx, KeyNextTrack)
}

func (p *Player) Prev(ctx context.Context) error {
	return p.client.PressKey(ctx, KeyPrevTrack)
}

// Seek is not part of the SoundTouch API.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	return fmt.Errorf("%w: %s cannot seek", chimeerrors.ErrUnsupported, p.client.Device().Name)
}

func (p *Player) SetVolume(ctx context.Context, volume int) error {
	return p.client.SetVolume(ctx, volume)
}

// SetMuted toggles mute. The API only exposes a mute toggle key, so the
// current state is checked first and the key pressed only when it differs.
func (p *Player) SetMuted(ctx context.Context, muted bool) error {
	volume, err := p.client.GetVolume(ctx)
	if err != nil {
		return err
	}
	if volume.MuteEnabled == muted {
		return nil
	}
	return p.client.PressKey(ctx, KeyMute)
}

// SetPower toggles power. Like mute, power is a toggle key; standby is
// detected via the now playing source.
func (p *Player) SetPower(ctx context.Context, on bool) error {
	now, err := p.client.GetNowPlaying(ctx)
	if err != nil {
		return err
	}
	poweredOn := now.Source != SourceStandby
	if poweredOn == on {
		return nil
	}
	return p.client.PressKey(ctx, KeyPower)
}

// GetState assembles a full playback snapshot from the device.
func (p *Player) GetState(ctx context.Context) (*core.PlaybackState, error) {
	now, err := p.client.GetNowPlaying(ctx)
	if err != nil {
		return nil, err
	}

	state := &core.PlaybackState{
		Device: p.client.Device(),
		State:  playStateFromStatus(now),
		Source: now.Source,
	}
	if now.ContentItem.Name != "" {
		state.Source = now.ContentItem.Name
	}

	if now.Track != "" || now.StationName != "" {
		title := now.Track
		if title == "" {
			title = now.StationName
		}
		state.Track = &core.Track{
			Title:    title,
			Artist:   now.Artist,
			Album:    now.Album,
			Duration: time.Duration(now.Time.Total) * time.Second,
			ArtURL:   now.Art.URL,
		}
		state.Progress = time.Duration(now.Time.Position) * time.Second
	}

	if volume, err := p.client.GetVolume(ctx); err == nil {
		state.Volume = volume.ActualVolume
		state.Muted = volume.MuteEnabled
	}

	if zone, err := p.client.GetZone(ctx); err == nil {
		state.GroupMembers = OrderedMembers(zone)
	}

	return state, nil
}

// playStateFromStatus maps the wire play status to the shared state enum.
func playStateFromStatus(now *NowPlaying) core.PlayState {
	if now.Source == SourceStandby {
		return core.StateOff
	}
	switch now.PlayStatus {
	case PlayStatePlaying:
		return core.StatePlaying
	case PlayStatePaused:
		return core.StatePaused
	case PlayStateBuffering:
		return core.StateBuffering
	default:
		return core.StateIdle
	}
}
