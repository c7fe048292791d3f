package soundtouch

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

const (
	// notifyPort is the websocket port devices push updates on.
	notifyPort = 8080

	// notifySubprotocol is required or the device refuses the upgrade.
	notifySubprotocol = "gabbo"
)

// Update is a change notification pushed by the device. Exactly one field is
// set per update.
type Update struct {
	DeviceID   string      `xml:"deviceID,attr"`
	NowPlaying *NowPlaying `xml:"nowPlayingUpdated>nowPlaying"`
	Volume     *Volume     `xml:"volumeUpdated>volume"`
	Zone       *Zone       `xml:"zoneUpdated>zone"`
	Presets    *Presets    `xml:"presetsUpdated>presets"`
	Sources    *Sources    `xml:"sourcesUpdated>sources"`
	NameChange string      `xml:"nameUpdated"`
}

// Notifier listens for change notifications from a SoundTouch device.
type Notifier struct {
	device core.Device
	wsURL  string
	log    zerolog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger.
func WithNotifierLogger(log zerolog.Logger) NotifierOption {
	return func(n *Notifier) {
		n.log = log
	}
}

// WithNotifierURL overrides the connection URL. Used in tests.
func WithNotifierURL(url string) NotifierOption {
	return func(n *Notifier) {
		n.wsURL = url
	}
}

// NewNotifier creates a Notifier for the given device.
func NewNotifier(device core.Device, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		device: device,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Listen connects to the device and delivers updates on the returned channel
// until the context is cancelled or the connection drops. The channel is
// closed when Listen's goroutine exits.
func (n *Notifier) Listen(ctx context.Context) (<-chan Update, error) {
	url := n.wsURL
	if url == "" {
		url = fmt.Sprintf("ws://%s:%d", n.device.IP, notifyPort)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{
		Subprotocols: []string{notifySubprotocol},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", chimeerrors.ErrNetworkError, url, err)
	}
	conn.SetReadLimit(1 << 20)

	updates := make(chan Update, 8)
	go func() {
		defer close(updates)
		defer conn.Close(websocket.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				n.log.Debug().Err(err).Msg("notify connection closed")
				return
			}

			var update Update
			if err := xml.Unmarshal(data, &update); err != nil {
				n.log.Debug().Err(err).Msg("dropping unparseable update")
				continue
			}

			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}
