package core

import (
	"context"
	"time"
)

// Player defines the interface for controlling a single Bose device. Both
// product families implement it; operations a family cannot express return an
// unsupported error.
type Player interface {
	// Playback control
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error

	// Volume control
	SetVolume(ctx context.Context, percent int) error
	SetMuted(ctx context.Context, muted bool) error

	// Power control
	SetPower(ctx context.Context, on bool) error

	// State queries
	GetState(ctx context.Context) (*PlaybackState, error)
}
