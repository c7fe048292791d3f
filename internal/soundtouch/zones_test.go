package soundtouch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

// zoneCall records a zone mutation received by a fake device.
type zoneCall struct {
	path string
	body string
}

func newZoneClient(t *testing.T, deviceID string, zoneXML string, calls *[]zoneCall) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" && r.URL.Path == "/getZone" {
			io.WriteString(w, zoneXML)
			return
		}
		data, _ := io.ReadAll(r.Body)
		*calls = append(*calls, zoneCall{path: r.URL.Path, body: string(data)})
	}))
	t.Cleanup(server.Close)
	return NewClient(
		core.Device{GUID: deviceID, Name: deviceID, IP: "127.0.0.1", Family: core.FamilySoundTouch},
		WithBaseURL(server.URL),
	)
}

func zoneXML(master string, memberIDs ...string) string {
	if master == "" {
		return `<zone />`
	}
	out := fmt.Sprintf(`<zone master=%q>`, master)
	for _, id := range memberIDs {
		out += fmt.Sprintf(`<member ipaddress="10.0.0.1">%s</member>`, id)
	}
	return out + `</zone>`
}

func noClientResolver(ctx context.Context, deviceID string) (*Client, error) {
	return nil, errors.New("resolver should not be called")
}

func TestZoneJoinCreatesZone(t *testing.T) {
	var calls []zoneCall
	target := newZoneClient(t, "master-id", zoneXML(""), &calls)

	err := Join(context.Background(), target, noClientResolver, []ZoneMember{
		{IPAddress: "10.0.0.2", DeviceID: "slave-id"},
	})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, "/setZone", calls[0].path)
	assert.Contains(t, calls[0].body, `master="master-id"`)
	assert.Contains(t, calls[0].body, "slave-id")
}

func TestZoneJoinAddsToOwnZone(t *testing.T) {
	var calls []zoneCall
	target := newZoneClient(t, "master-id", zoneXML("master-id", "slave-a"), &calls)

	err := Join(context.Background(), target, noClientResolver, []ZoneMember{
		{IPAddress: "10.0.0.3", DeviceID: "slave-b"},
	})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, "/addZoneSlave", calls[0].path)
	assert.Contains(t, calls[0].body, "slave-b")
}

func TestZoneJoinForwardsToMaster(t *testing.T) {
	var masterCalls []zoneCall
	master := newZoneClient(t, "master-id", zoneXML("master-id", "target-id"), &masterCalls)

	var targetCalls []zoneCall
	target := newZoneClient(t, "target-id", zoneXML("master-id", "target-id"), &targetCalls)

	resolve := func(ctx context.Context, deviceID string) (*Client, error) {
		require.Equal(t, "master-id", deviceID)
		return master, nil
	}

	err := Join(context.Background(), target, resolve, []ZoneMember{
		{IPAddress: "10.0.0.4", DeviceID: "slave-c"},
	})
	require.NoError(t, err)

	assert.Empty(t, targetCalls)
	require.Len(t, masterCalls, 1)
	assert.Equal(t, "/addZoneSlave", masterCalls[0].path)
}

func TestZoneUnjoinMasterDissolvesZone(t *testing.T) {
	var calls []zoneCall
	master := newZoneClient(t, "master-id", zoneXML("master-id", "slave-a", "slave-b"), &calls)

	err := Unjoin(context.Background(), master, noClientResolver)
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, "/removeZoneSlave", calls[0].path)
	assert.Contains(t, calls[0].body, "slave-a")
	assert.Contains(t, calls[0].body, "slave-b")
}

func TestZoneUnjoinSlaveLeavesZone(t *testing.T) {
	var masterCalls []zoneCall
	master := newZoneClient(t, "master-id", zoneXML("master-id", "slave-a"), &masterCalls)

	var slaveCalls []zoneCall
	slave := newZoneClient(t, "slave-a", zoneXML("master-id", "slave-a"), &slaveCalls)

	resolve := func(ctx context.Context, deviceID string) (*Client, error) {
		return master, nil
	}

	err := Unjoin(context.Background(), slave, resolve)
	require.NoError(t, err)

	assert.Empty(t, slaveCalls)
	require.Len(t, masterCalls, 1)
	assert.Equal(t, "/removeZoneSlave", masterCalls[0].path)
	assert.Contains(t, masterCalls[0].body, "slave-a")
}

func TestZoneUnjoinNotInZone(t *testing.T) {
	var calls []zoneCall
	client := newZoneClient(t, "lonely-id", zoneXML(""), &calls)

	err := Unjoin(context.Background(), client, noClientResolver)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chimeerrors.ErrNotInGroup))
}

func TestOrderedZoneMembers(t *testing.T) {
	zone := &Zone{
		Master: "master-id",
		Members: []ZoneMember{
			{DeviceID: "slave-a"},
			{DeviceID: "master-id"},
			{DeviceID: "slave-b"},
		},
	}

	got := OrderedMembers(zone)
	assert.Equal(t, []string{"master-id", "slave-a", "slave-b"}, got)

	assert.Nil(t, OrderedMembers(&Zone{}))
	assert.Nil(t, OrderedMembers(nil))
}
