package bose

import (
	"context"
	"time"

	"github.com/tessro/chime/internal/core"
)

// Transport control methods.

// Play resumes playback.
func (s *Speaker) Play(ctx context.Context) error {
	return s.transportControl(ctx, "PLAY", nil)
}

// Pause pauses playback.
func (s *Speaker) Pause(ctx context.Context) error {
	return s.transportControl(ctx, "PAUSE", nil)
}

// Stop stops playback.
func (s *Speaker) Stop(ctx context.Context) error {
	return s.transportControl(ctx, "STOP", nil)
}

// Next skips to the next track.
func (s *Speaker) Next(ctx context.Context) error {
	return s.transportControl(ctx, "SKIPNEXT", nil)
}

// Prev skips to the previous track.
func (s *Speaker) Prev(ctx context.Context) error {
	return s.transportControl(ctx, "SKIPPREVIOUS", nil)
}

// Seek jumps to a position in the current track.
func (s *Speaker) Seek(ctx context.Context, position time.Duration) error {
	seconds := int(position.Seconds())
	return s.transportControl(ctx, "SEEK_TO_TIME", map[string]any{"position": seconds})
}

func (s *Speaker) transportControl(ctx context.Context, state string, extra map[string]any) error {
	body := map[string]any{"state": state}
	for k, v := range extra {
		body[k] = v
	}
	_, err := s.Request(ctx, "/content/transportControl", "PUT", body)
	return err
}

// Player adapts a Speaker to the shared Player interface.
type Player struct {
	speaker *Speaker
}

// NewPlayer wraps a connected Speaker.
func NewPlayer(speaker *Speaker) *Player {
	return &Player{speaker: speaker}
}

func (p *Player) Play(ctx context.Context) error  { return p.speaker.Play(ctx) }
func (p *Player) Pause(ctx context.Context) error { return p.speaker.Pause(ctx) }
func (p *Player) Stop(ctx context.Context) error  { return p.speaker.Stop(ctx) }
func (p *Player) Next(ctx context.Context) error  { return p.speaker.Next(ctx) }
func (p *Player) Prev(ctx context.Context) error  { return p.speaker.Prev(ctx) }

func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	return p.speaker.Seek(ctx, position)
}

func (p *Player) SetVolume(ctx context.Context, volume int) error {
	return p.speaker.SetAudioVolume(ctx, volume)
}

func (p *Player) SetMuted(ctx context.Context, muted bool) error {
	return p.speaker.SetMuted(ctx, muted)
}

func (p *Player) SetPower(ctx context.Context, on bool) error {
	return p.speaker.SetPowerState(ctx, on)
}

// GetState assembles a full playback snapshot from the device.
func (p *Player) GetState(ctx context.Context) (*core.PlaybackState, error) {
	now, err := p.speaker.GetNowPlaying(ctx)
	if err != nil {
		return nil, err
	}

	state := &core.PlaybackState{
		Device: p.speaker.Device(),
		State:  playStateFromStatus(now.State.Status),
		Source: now.Source.SourceDisplayName,
	}
	if state.Source == "" {
		state.Source = now.Source.SourceID
	}

	if now.Metadata.TrackName != "" {
		state.Track = &core.Track{
			Title:    now.Metadata.TrackName,
			Artist:   now.Metadata.Artist,
			Album:    now.Metadata.Album,
			Duration: time.Duration(now.Metadata.Duration) * time.Second,
			ArtURL:   now.Container.ContentItem.ContainerArt,
		}
		state.Progress = time.Duration(now.State.TimeIntoTrack) * time.Second
	}

	if volume, err := p.speaker.GetAudioVolume(ctx); err == nil {
		state.Volume = volume.Value
		state.Muted = volume.Muted
	}

	if groups, err := p.speaker.GetActiveGroups(ctx); err == nil && len(groups) > 0 {
		state.GroupMembers = OrderedMembers(groups[0])
	}

	return state, nil
}

// playStateFromStatus maps the wire playback status to the shared state enum.
// An absent status means the device is idle or in standby.
func playStateFromStatus(status string) core.PlayState {
	switch status {
	case PlaybackPlaying:
		return core.StatePlaying
	case PlaybackPaused:
		return core.StatePaused
	case PlaybackBuffering:
		return core.StateBuffering
	case PlaybackStopped, "":
		return core.StateIdle
	default:
		return core.StateIdle
	}
}
