package soundtouch

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

const standbyXML = `<?xml version="1.0" encoding="UTF-8" ?>
<nowPlaying deviceID="AABBCCDDEEFF" source="STANDBY">
  <ContentItem source="STANDBY" isPresetable="true" />
</nowPlaying>`

func TestPlayerGetState(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/now_playing":
			io.WriteString(w, nowPlayingXML)
		case "/volume":
			io.WriteString(w, volumeXML)
		case "/getZone":
			io.WriteString(w, zoneXML("AABBCCDDEEFF", "slave-a"))
		default:
			http.NotFound(w, r)
		}
	}))

	state, err := NewPlayer(client).GetState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, core.StatePlaying, state.State)
	require.NotNil(t, state.Track)
	assert.Equal(t, "Breathe", state.Track.Title)
	assert.Equal(t, 163*time.Second, state.Track.Duration)
	assert.Equal(t, 42*time.Second, state.Progress)
	assert.Equal(t, 30, state.Volume)
	assert.Equal(t, []string{"AABBCCDDEEFF", "slave-a"}, state.GroupMembers)
	assert.Equal(t, "Morning Mix", state.Source)
}

func TestPlayerStandbyState(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/now_playing":
			io.WriteString(w, standbyXML)
		case "/volume":
			io.WriteString(w, volumeXML)
		case "/getZone":
			io.WriteString(w, zoneXML(""))
		default:
			http.NotFound(w, r)
		}
	}))

	state, err := NewPlayer(client).GetState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, core.StateOff, state.State)
	assert.Nil(t, state.Track)
	assert.Empty(t, state.GroupMembers)
}

func TestPlayerSeekUnsupported(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	err := NewPlayer(client).Seek(context.Background(), 30*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, chimeerrors.ErrUnsupported)
}

func TestPlayerSetMutedIsIdempotent(t *testing.T) {
	var keyPresses int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/volume":
			io.WriteString(w, volumeXML) // muteenabled false
		case "/key":
			keyPresses++
		}
	}))

	player := NewPlayer(client)

	require.NoError(t, player.SetMuted(context.Background(), false))
	assert.Equal(t, 0, keyPresses, "already unmuted, no key press")

	require.NoError(t, player.SetMuted(context.Background(), true))
	assert.Equal(t, 2, keyPresses, "press and release")
}
