package bose

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

const (
	// controlPort is the websocket port smart speakers listen on.
	controlPort = 8082

	// controlSubprotocol is required by the device or it drops the connection.
	controlSubprotocol = "eco2"

	requestTimeout = 10 * time.Second
)

// TokenFunc supplies the current control token. Requests pick up refreshed
// tokens automatically.
type TokenFunc func() string

// NotificationFunc receives unsolicited updates pushed by the speaker.
type NotificationFunc func(msg Message)

// Speaker is a control connection to a single smart speaker.
type Speaker struct {
	device core.Device
	token  TokenFunc
	log    zerolog.Logger
	wsURL  string // overrides the device address, for tests

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	nextReqID int
	pending   map[int]chan Message

	subMu       sync.RWMutex
	subscribers []NotificationFunc

	capMu        sync.RWMutex
	capabilities map[string]bool

	readDone chan struct{}
}

// SpeakerOption configures a Speaker.
type SpeakerOption func(*Speaker)

// WithSpeakerLogger sets the logger.
func WithSpeakerLogger(log zerolog.Logger) SpeakerOption {
	return func(s *Speaker) {
		s.log = log
	}
}

// WithWebsocketURL overrides the connection URL. Used in tests.
func WithWebsocketURL(url string) SpeakerOption {
	return func(s *Speaker) {
		s.wsURL = url
	}
}

// NewSpeaker creates a Speaker for the given device. Call Connect before
// issuing requests.
func NewSpeaker(device core.Device, token TokenFunc, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		device:  device,
		token:   token,
		log:     zerolog.Nop(),
		pending: make(map[int]chan Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Device returns the device this speaker was created for.
func (s *Speaker) Device() core.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// DeviceID returns the device GUID.
func (s *Speaker) DeviceID() string {
	return s.device.GUID
}

// SetAddress updates the device IP before the next Connect. Used when
// rediscovery finds the device on a new address.
func (s *Speaker) SetAddress(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device.IP = ip
}

// Connect opens the control websocket and fetches the device capabilities.
func (s *Speaker) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}

	url := s.wsURL
	if url == "" {
		url = fmt.Sprintf("wss://%s:%d", s.device.IP, controlPort)
	}

	// Devices present self-signed certificates.
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient:   httpClient,
		Subprotocols: []string{controlSubprotocol},
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: dial %s: %v", chimeerrors.ErrNetworkError, url, err)
	}
	conn.SetReadLimit(1 << 20)

	s.conn = conn
	s.connected = true
	s.readDone = make(chan struct{})
	s.mu.Unlock()

	go s.readLoop(conn, s.readDone)

	if err := s.loadCapabilities(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to load capabilities")
	}

	return nil
}

// Disconnect closes the control websocket.
func (s *Speaker) Disconnect() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "")
}

// IsConnected reports whether the control websocket is open.
func (s *Speaker) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// OnNotification registers a callback for unsolicited updates.
func (s *Speaker) OnNotification(fn NotificationFunc) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Subscribe asks the device to push updates for the given resources.
func (s *Speaker) Subscribe(ctx context.Context, resources []string) error {
	type notification struct {
		Resource string `json:"resource"`
		Version  int    `json:"version"`
	}
	notifications := make([]notification, len(resources))
	for i, r := range resources {
		notifications[i] = notification{Resource: r, Version: 1}
	}

	_, err := s.Request(ctx, "/subscription", "PUT", map[string]any{
		"notifications": notifications,
	})
	return err
}

// Request sends a request and waits for the matching response. This is also
// the passthrough used by the request command for arbitrary resources.
func (s *Speaker) Request(ctx context.Context, resource, method string, body any) (json.RawMessage, error) {
	resource = normalizeResource(resource)

	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: not connected to %s", chimeerrors.ErrNetworkError, s.device.Name)
	}
	conn := s.conn
	s.nextReqID++
	reqID := s.nextReqID
	ch := make(chan Message, 1)
	s.pending[reqID] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, reqID)
		s.mu.Unlock()
	}()

	var rawBody json.RawMessage
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		rawBody = data
	}

	msg := Message{
		Header: Header{
			Device:   s.device.GUID,
			Resource: resource,
			Method:   method,
			MsgType:  MsgTypeRequest,
			ReqID:    reqID,
			Version:  1,
			Token:    s.token(),
		},
		Body: rawBody,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	s.log.Debug().Str("resource", resource).Str("method", method).Int("reqID", reqID).Msg("sending request")

	writeCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return nil, fmt.Errorf("%w: write: %v", chimeerrors.ErrNetworkError, err)
	}

	select {
	case resp := <-ch:
		if resp.Header.Status >= 400 {
			return nil, responseError(resource, resp)
		}
		return resp.Body, nil
	case <-time.After(requestTimeout):
		return nil, fmt.Errorf("%w: no response for %s %s", chimeerrors.ErrTimeout, method, resource)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func responseError(resource string, resp Message) error {
	var protoErr Error
	if err := json.Unmarshal(resp.Body, &protoErr); err == nil && protoErr.Description != "" {
		if resp.Header.Status == 401 || resp.Header.Status == 403 {
			return fmt.Errorf("%w: %s", chimeerrors.ErrAuthExpired, protoErr.Description)
		}
		return fmt.Errorf("request %s failed: %s (status %d)", resource, protoErr.Description, resp.Header.Status)
	}
	if resp.Header.Status == 401 || resp.Header.Status == 403 {
		return chimeerrors.ErrAuthExpired
	}
	return fmt.Errorf("request %s failed with status %d", resource, resp.Header.Status)
}

// readLoop reads frames until the connection drops, routing responses to
// their waiters and notifications to subscribers.
func (s *Speaker) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.connected = false
				s.conn = nil
			}
			s.mu.Unlock()
			s.log.Debug().Err(err).Msg("control connection closed")
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn().Err(err).Msg("dropping unparseable frame")
			continue
		}

		if msg.IsNotification() {
			s.dispatch(msg)
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[msg.Header.ReqID]
		s.mu.Unlock()
		if ok {
			ch <- msg
		} else {
			s.log.Debug().Int("reqID", msg.Header.ReqID).Msg("response with no waiter")
		}
	}
}

func (s *Speaker) dispatch(msg Message) {
	s.subMu.RLock()
	subs := make([]NotificationFunc, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(msg)
	}
}

func (s *Speaker) loadCapabilities(ctx context.Context) error {
	body, err := s.Request(ctx, "/system/capabilities", "GET", nil)
	if err != nil {
		return err
	}

	var caps Capabilities
	if err := json.Unmarshal(body, &caps); err != nil {
		return fmt.Errorf("parse capabilities: %w", err)
	}

	endpoints := make(map[string]bool)
	for _, group := range caps.Group {
		for _, ep := range group.Endpoints {
			endpoints[ep.Endpoint] = true
		}
	}

	s.capMu.Lock()
	s.capabilities = endpoints
	s.capMu.Unlock()
	return nil
}

// HasCapability reports whether the device supports the given resource.
// Returns true when capabilities haven't been loaded, so callers fail with
// the device's own error instead of a false negative.
func (s *Speaker) HasCapability(resource string) bool {
	s.capMu.RLock()
	defer s.capMu.RUnlock()
	if s.capabilities == nil {
		return true
	}
	return s.capabilities[resource]
}

// Capabilities returns all resources the device reports supporting.
func (s *Speaker) Capabilities() []string {
	s.capMu.RLock()
	defer s.capMu.RUnlock()
	out := make([]string, 0, len(s.capabilities))
	for ep := range s.capabilities {
		out = append(out, ep)
	}
	return out
}

// GetSystemInfo fetches device identity and version details.
func (s *Speaker) GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	return request[SystemInfo](ctx, s, "/system/info", "GET", nil)
}

// GetAudioVolume fetches the current volume.
func (s *Speaker) GetAudioVolume(ctx context.Context) (*AudioVolume, error) {
	return request[AudioVolume](ctx, s, "/audio/volume", "GET", nil)
}

// SetAudioVolume sets the volume (0-100).
func (s *Speaker) SetAudioVolume(ctx context.Context, value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("volume %d out of range 0-100", value)
	}
	_, err := s.Request(ctx, "/audio/volume", "PUT", map[string]int{"value": value})
	return err
}

// SetMuted mutes or unmutes the device.
func (s *Speaker) SetMuted(ctx context.Context, muted bool) error {
	_, err := s.Request(ctx, "/audio/volume", "PUT", map[string]bool{"muted": muted})
	return err
}

// GetNowPlaying fetches the current playback state.
func (s *Speaker) GetNowPlaying(ctx context.Context) (*NowPlaying, error) {
	return request[NowPlaying](ctx, s, "/content/nowPlaying", "GET", nil)
}

// GetPowerState fetches the power state.
func (s *Speaker) GetPowerState(ctx context.Context) (*PowerState, error) {
	return request[PowerState](ctx, s, "/system/power/control", "GET", nil)
}

// SetPowerState turns the device on or puts it in standby.
func (s *Speaker) SetPowerState(ctx context.Context, on bool) error {
	power := PowerStandby
	if on {
		power = PowerOn
	}
	_, err := s.Request(ctx, "/system/power/control", "POST", map[string]string{"power": power})
	return err
}

// GetSources fetches the selectable inputs.
func (s *Speaker) GetSources(ctx context.Context) (*Sources, error) {
	return request[Sources](ctx, s, "/system/sources", "GET", nil)
}

// SetSource switches playback to the given source.
func (s *Speaker) SetSource(ctx context.Context, source, sourceAccount string) error {
	_, err := s.Request(ctx, "/content/playbackRequest", "POST", map[string]any{
		"source":        source,
		"sourceAccount": sourceAccount,
	})
	return err
}

// PlayPreset starts playback of a stored preset's content.
func (s *Speaker) PlayPreset(ctx context.Context, item ContentItem) error {
	_, err := s.Request(ctx, "/content/playbackRequest", "POST", map[string]any{
		"source":        item.Source,
		"sourceAccount": item.SourceAccount,
		"preset": map[string]any{
			"location": item.Location,
			"name":     item.Name,
			"type":     item.Type,
		},
	})
	return err
}

// GetAccessories fetches paired subwoofer and surround speaker state.
func (s *Speaker) GetAccessories(ctx context.Context) (*Accessories, error) {
	return request[Accessories](ctx, s, "/accessories", "GET", nil)
}

// SetAccessories enables or disables paired rears and subs.
func (s *Speaker) SetAccessories(ctx context.Context, rears, subs bool) error {
	_, err := s.Request(ctx, "/accessories", "PUT", map[string]any{
		"enabled": map[string]bool{"rears": rears, "subs": subs},
	})
	return err
}

// GetNetworkStatus fetches network interface state.
func (s *Speaker) GetNetworkStatus(ctx context.Context) (*NetworkStatus, error) {
	return request[NetworkStatus](ctx, s, "/network/status", "GET", nil)
}

// GetBattery fetches battery state. Only portable devices have one.
func (s *Speaker) GetBattery(ctx context.Context) (*Battery, error) {
	if !s.HasCapability("/system/battery") {
		return nil, fmt.Errorf("%w: %s has no battery", chimeerrors.ErrUnsupported, s.device.Name)
	}
	return request[Battery](ctx, s, "/system/battery", "GET", nil)
}

// request is the typed request helper shared by the getters.
func request[T any](ctx context.Context, s *Speaker, resource, method string, body any) (*T, error) {
	raw, err := s.Request(ctx, resource, method, body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", resource, err)
	}
	return &out, nil
}

// normalizeResource ensures a leading slash on user-supplied resources.
func normalizeResource(resource string) string {
	if !strings.HasPrefix(resource, "/") {
		return "/" + resource
	}
	return resource
}
