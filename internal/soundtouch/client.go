package soundtouch

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

const (
	// apiPort is the REST API port.
	apiPort = 8090

	keySender = "Gabbo"
)

// Client talks to a single SoundTouch device.
type Client struct {
	device     core.Device
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient creates a Client for the given device.
func NewClient(device core.Device, opts ...ClientOption) *Client {
	c := &Client{
		device:     device,
		baseURL:    fmt.Sprintf("http://%s:%d", device.IP, apiPort),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Device returns the device this client was created for.
func (c *Client) Device() core.Device {
	return c.device
}

// DeviceID returns the device identifier.
func (c *Client) DeviceID() string {
	return c.device.GUID
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", chimeerrors.ErrNetworkError, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiErrorFrom(path, resp.StatusCode, data)
	}

	if err := xml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := xml.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	c.log.Debug().Str("path", path).Str("body", string(payload)).Msg("posting")

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", chimeerrors.ErrNetworkError, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiErrorFrom(path, resp.StatusCode, data)
	}
	return nil
}

// Raw sends an arbitrary request to the device API and returns the raw
// response body. method is GET or POST; body is sent as-is for POST.
func (c *Client) Raw(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "text/xml")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", chimeerrors.ErrNetworkError, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiErrorFrom(path, resp.StatusCode, data)
	}
	return data, nil
}

func apiErrorFrom(path string, status int, data []byte) error {
	var apiErr apiError
	if err := xml.Unmarshal(data, &apiErr); err == nil && len(apiErr.Errors) > 0 {
		return fmt.Errorf("request %s failed: %s (status %d)", path, apiErr.Errors[0].Message, status)
	}
	return fmt.Errorf("request %s failed with status %d", path, status)
}

// GetInfo fetches device identity and version details.
func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.get(ctx, "/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetNowPlaying fetches the current playback state.
func (c *Client) GetNowPlaying(ctx context.Context) (*NowPlaying, error) {
	var now NowPlaying
	if err := c.get(ctx, "/now_playing", &now); err != nil {
		return nil, err
	}
	return &now, nil
}

// GetVolume fetches the current volume.
func (c *Client) GetVolume(ctx context.Context) (*Volume, error) {
	var volume Volume
	if err := c.get(ctx, "/volume", &volume); err != nil {
		return nil, err
	}
	return &volume, nil
}

// SetVolume sets the volume (0-100).
func (c *Client) SetVolume(ctx context.Context, value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("volume %d out of range 0-100", value)
	}
	return c.post(ctx, "/volume", volumeRequest{Value: value})
}

// GetPresets fetches the six hardware preset slots.
func (c *Client) GetPresets(ctx context.Context) ([]Preset, error) {
	var presets Presets
	if err := c.get(ctx, "/presets", &presets); err != nil {
		return nil, err
	}
	return presets.Presets, nil
}

// GetSources fetches the available inputs.
func (c *Client) GetSources(ctx context.Context) (*Sources, error) {
	var sources Sources
	if err := c.get(ctx, "/sources", &sources); err != nil {
		return nil, err
	}
	return &sources, nil
}

// Select starts playback of the given content.
func (c *Client) Select(ctx context.Context, item ContentItem) error {
	return c.post(ctx, "/select", item)
}

// SetName renames the device.
func (c *Client) SetName(ctx context.Context, name string) error {
	type nameRequest struct {
		XMLName xml.Name `xml:"name"`
		Value   string   `xml:",chardata"`
	}
	return c.post(ctx, "/name", nameRequest{Value: name})
}

// PressKey simulates a remote key press. Keys are sent as a press and
// release pair; the device acts on the release.
func (c *Client) PressKey(ctx context.Context, key string) error {
	if err := c.post(ctx, "/key", keyRequest{State: "press", Sender: keySender, Value: key}); err != nil {
		return err
	}
	return c.post(ctx, "/key", keyRequest{State: "release", Sender: keySender, Value: key})
}

// PlayPreset presses one of the six preset keys.
func (c *Client) PlayPreset(ctx context.Context, id int) error {
	if id < 1 || id > 6 {
		return fmt.Errorf("preset %d out of range 1-6", id)
	}
	return c.PressKey(ctx, fmt.Sprintf("PRESET_%d", id))
}
