package core

import "time"

// PlayState represents the coarse playback state of a device.
type PlayState string

const (
	StatePlaying   PlayState = "playing"
	StatePaused    PlayState = "paused"
	StateBuffering PlayState = "buffering"
	StateIdle      PlayState = "idle"
	StateOff       PlayState = "off"
)

// PlaybackState represents the current playback state of a device.
type PlaybackState struct {
	Track        *Track        `json:"track"`
	Device       Device        `json:"device"`
	State        PlayState     `json:"state"`
	Progress     time.Duration `json:"progress"`
	Volume       int           `json:"volume"`
	Muted        bool          `json:"muted"`
	Source       string        `json:"source"`
	GroupMembers []string      `json:"group_members,omitempty"`
}

// IsPlaying returns true if the device is actively playing.
func (s *PlaybackState) IsPlaying() bool {
	return s != nil && s.State == StatePlaying
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Track == nil || s.Track.Duration == 0 {
		return 0
	}
	return float64(s.Progress) / float64(s.Track.Duration) * 100
}
