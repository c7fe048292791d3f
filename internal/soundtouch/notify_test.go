package soundtouch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/chime/internal/core"
)

func TestNotifierListen(t *testing.T) {
	frames := []string{
		`<updates deviceID="AABBCCDDEEFF"><volumeUpdated><volume deviceID="AABBCCDDEEFF"><targetvolume>25</targetvolume><actualvolume>25</actualvolume><muteenabled>false</muteenabled></volume></volumeUpdated></updates>`,
		`<updates deviceID="AABBCCDDEEFF"><nowPlayingUpdated>` + strings.TrimPrefix(nowPlayingXML, `<?xml version="1.0" encoding="UTF-8" ?>`) + `</nowPlayingUpdated></updates>`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols: []string{notifySubprotocol},
		})
		require.NoError(t, err)
		for _, frame := range frames {
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(frame)); err != nil {
				return
			}
		}
		// Keep the connection open until the client goes away.
		conn.Read(r.Context())
	}))
	t.Cleanup(server.Close)

	notifier := NewNotifier(
		core.Device{GUID: "AABBCCDDEEFF", Name: "Kitchen"},
		WithNotifierURL("ws"+strings.TrimPrefix(server.URL, "http")),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates, err := notifier.Listen(ctx)
	require.NoError(t, err)

	first := <-updates
	require.NotNil(t, first.Volume)
	assert.Equal(t, 25, first.Volume.ActualVolume)
	assert.Nil(t, first.NowPlaying)

	second := <-updates
	require.NotNil(t, second.NowPlaying)
	assert.Equal(t, "Breathe", second.NowPlaying.Track)
}
