package bose

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

// fakeDevice is a websocket server that answers control requests like a
// smart speaker would.
type fakeDevice struct {
	t       *testing.T
	server  *httptest.Server
	handler func(msg Message) (any, int)

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newFakeDevice(t *testing.T, handler func(msg Message) (any, int)) *fakeDevice {
	t.Helper()
	fd := &fakeDevice{t: t, handler: handler}
	fd.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols: []string{controlSubprotocol},
		})
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		fd.mu.Lock()
		fd.conns = append(fd.conns, conn)
		fd.mu.Unlock()
		fd.serve(conn)
	}))
	t.Cleanup(fd.server.Close)
	return fd
}

func (fd *fakeDevice) serve(conn *websocket.Conn) {
	ctx := context.Background()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			fd.t.Errorf("unmarshal request: %v", err)
			continue
		}

		body, status := fd.handler(msg)
		resp := Message{
			Header: Header{
				Resource: msg.Header.Resource,
				Method:   msg.Header.Method,
				MsgType:  MsgTypeResponse,
				ReqID:    msg.Header.ReqID,
				Version:  1,
				Status:   status,
			},
		}
		if body != nil {
			raw, err := json.Marshal(body)
			if err != nil {
				fd.t.Errorf("marshal response: %v", err)
				continue
			}
			resp.Body = raw
		}
		out, _ := json.Marshal(resp)
		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			return
		}
	}
}

// push sends an unsolicited notification on every open connection.
func (fd *fakeDevice) push(resource string, body any) {
	raw, err := json.Marshal(body)
	require.NoError(fd.t, err)
	msg := Message{
		Header: Header{
			Resource: resource,
			Method:   "GET",
			MsgType:  MsgTypeResponse,
			Version:  1,
			Status:   200,
		},
		Body: raw,
	}
	out, _ := json.Marshal(msg)

	fd.mu.Lock()
	defer fd.mu.Unlock()
	for _, conn := range fd.conns {
		_ = conn.Write(context.Background(), websocket.MessageText, out)
	}
}

func (fd *fakeDevice) wsURL() string {
	return "ws" + strings.TrimPrefix(fd.server.URL, "http")
}

func newTestSpeaker(t *testing.T, handler func(msg Message) (any, int)) *Speaker {
	t.Helper()
	fd := newFakeDevice(t, handler)
	speaker := NewSpeaker(
		core.Device{GUID: "guid-self", Name: "Living Room", IP: "127.0.0.1", Family: core.FamilySmart},
		func() string { return "test-token" },
		WithWebsocketURL(fd.wsURL()),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, speaker.Connect(ctx))
	t.Cleanup(func() { speaker.Disconnect() })
	return speaker
}

func capabilitiesBody(endpoints ...string) Capabilities {
	var caps Capabilities
	group := struct {
		APIGroup  string `json:"apiGroup"`
		Version   int    `json:"version"`
		Endpoints []struct {
			Endpoint string `json:"endpoint"`
		} `json:"endpoints"`
	}{APIGroup: "ProductController", Version: 1}
	for _, ep := range endpoints {
		group.Endpoints = append(group.Endpoints, struct {
			Endpoint string `json:"endpoint"`
		}{Endpoint: ep})
	}
	caps.Group = append(caps.Group, group)
	return caps
}

func TestRequestResponseCorrelation(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		switch msg.Header.Resource {
		case "/system/capabilities":
			return capabilitiesBody("/system/info"), 200
		case "/system/info":
			assert.Equal(t, "GET", msg.Header.Method)
			assert.Equal(t, "test-token", msg.Header.Token)
			return SystemInfo{GUID: "guid-self", Name: "Living Room", ProductName: "Bose Home Speaker 500"}, 200
		default:
			return Error{Status: 404, Description: "not found"}, 404
		}
	})

	ctx := context.Background()
	info, err := speaker.GetSystemInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "guid-self", info.GUID)
	assert.Equal(t, "Bose Home Speaker 500", info.ProductName)
}

func TestRequestErrorStatus(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		if msg.Header.Resource == "/system/capabilities" {
			return capabilitiesBody(), 200
		}
		return Error{Status: 404, Description: "no such resource"}, 404
	})

	_, err := speaker.Request(context.Background(), "/does/not/exist", "GET", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such resource")
}

func TestRequestNormalizesResource(t *testing.T) {
	var gotResource string
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		if msg.Header.Resource == "/system/capabilities" {
			return capabilitiesBody(), 200
		}
		gotResource = msg.Header.Resource
		return map[string]string{}, 200
	})

	_, err := speaker.Request(context.Background(), "system/info", "GET", nil)
	require.NoError(t, err)
	assert.Equal(t, "/system/info", gotResource)
}

func TestNotificationDispatch(t *testing.T) {
	fd := newFakeDevice(t, func(msg Message) (any, int) {
		return capabilitiesBody(), 200
	})
	speaker := NewSpeaker(
		core.Device{GUID: "guid-self", Name: "Living Room"},
		func() string { return "" },
		WithWebsocketURL(fd.wsURL()),
	)
	require.NoError(t, speaker.Connect(context.Background()))
	t.Cleanup(func() { speaker.Disconnect() })

	received := make(chan Message, 1)
	speaker.OnNotification(func(msg Message) {
		received <- msg
	})

	fd.push("/content/nowPlaying", NowPlaying{})

	select {
	case msg := <-received:
		assert.Equal(t, "/content/nowPlaying", msg.Header.Resource)
		assert.True(t, msg.IsNotification())
	case <-time.After(2 * time.Second):
		t.Fatal("notification not dispatched")
	}
}

func TestHasCapability(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		if msg.Header.Resource == "/system/capabilities" {
			return capabilitiesBody("/audio/bass", "/audio/volume"), 200
		}
		return map[string]string{}, 200
	})

	assert.True(t, speaker.HasCapability("/audio/bass"))
	assert.False(t, speaker.HasCapability("/audio/height"))
}

func TestAudioSettingValidation(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		value   int
		wantErr bool
	}{
		{"bass in range", "bass", -50, false},
		{"bass too low", "bass", -110, true},
		{"bass off step", "bass", 15, true},
		{"avSync in range", "avSync", 100, false},
		{"avSync negative", "avSync", -10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := LookupSetting(tt.setting)
			require.True(t, ok)
			err := spec.Validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnknownAudioSetting(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		return capabilitiesBody(), 200
	})
	err := speaker.SetAudioSetting(context.Background(), "loudness", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown audio setting")
}

func TestGetNetworkStatus(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		switch msg.Header.Resource {
		case "/system/capabilities":
			return capabilitiesBody("/network/status"), 200
		case "/network/status":
			return map[string]any{
				"primary": "wlan0",
				"interfaces": []map[string]any{
					{
						"name":       "wlan0",
						"type":       "WIFI",
						"macAddress": "aa:bb:cc:dd:ee:ff",
						"ipInfo":     map[string]string{"ipAddress": "10.0.0.5"},
						"state":      "up",
					},
				},
			}, 200
		default:
			return Error{Status: 404, Description: "not found"}, 404
		}
	})

	status, err := speaker.GetNetworkStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wlan0", status.PrimaryInterface)
	require.Len(t, status.Interfaces, 1)
	assert.Equal(t, "10.0.0.5", status.Interfaces[0].IPInfo.IPAddress)
}

func TestGetBattery(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		switch msg.Header.Resource {
		case "/system/capabilities":
			return capabilitiesBody("/system/battery"), 200
		case "/system/battery":
			return Battery{ChargeStatus: "CHARGING", Percent: 80}, 200
		default:
			return Error{Status: 404, Description: "not found"}, 404
		}
	})

	battery, err := speaker.GetBattery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, battery.Percent)
	assert.Equal(t, "CHARGING", battery.ChargeStatus)
}

func TestGetBatteryRequiresCapability(t *testing.T) {
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		return capabilitiesBody(), 200
	})

	_, err := speaker.GetBattery(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, chimeerrors.ErrUnsupported)
}

func TestSetAccessories(t *testing.T) {
	var got Message
	speaker := newTestSpeaker(t, func(msg Message) (any, int) {
		if msg.Header.Resource == "/system/capabilities" {
			return capabilitiesBody(), 200
		}
		got = msg
		return map[string]any{}, 200
	})

	require.NoError(t, speaker.SetAccessories(context.Background(), true, false))
	assert.Equal(t, "/accessories", got.Header.Resource)
	assert.Equal(t, "PUT", got.Header.Method)
	assert.JSONEq(t, `{"enabled":{"rears":true,"subs":false}}`, string(got.Body))
}

func TestOrderedMembers(t *testing.T) {
	group := ActiveGroup{
		ActiveGroupID: "group-1",
		GroupMasterID: "guid-b",
		Products: []GroupProduct{
			{ProductID: "guid-a"},
			{ProductID: "guid-b"},
			{ProductID: "guid-c"},
		},
	}

	got := OrderedMembers(group)
	assert.Equal(t, []string{"guid-b", "guid-a", "guid-c"}, got)
}

func TestPlayStateFromStatus(t *testing.T) {
	tests := []struct {
		status string
		want   core.PlayState
	}{
		{PlaybackPlaying, core.StatePlaying},
		{PlaybackPaused, core.StatePaused},
		{PlaybackBuffering, core.StateBuffering},
		{PlaybackStopped, core.StateIdle},
		{"", core.StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, playStateFromStatus(tt.status))
		})
	}
}
