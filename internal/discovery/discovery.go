// Package discovery finds Bose devices on the local network via mDNS.
//
// Smart speakers announce themselves as _bose-passport._tcp with their GUID in
// the TXT record; SoundTouch systems announce as _soundtouch._tcp.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

const (
	// SmartService is the mDNS service type for the smart speaker family.
	SmartService = "_bose-passport._tcp"

	// SoundTouchService is the mDNS service type for the SoundTouch family.
	SoundTouchService = "_soundtouch._tcp"

	mdnsDomain = "local."

	defaultTimeout = 5 * time.Second
	defaultTTL     = 5 * time.Minute
)

// Discovery browses mDNS for Bose devices and caches the results.
type Discovery struct {
	timeout    time.Duration
	ttl        time.Duration
	smart      bool
	soundtouch bool
	log        zerolog.Logger

	mu      sync.RWMutex
	devices map[string]*cachedDevice // keyed by GUID
}

type cachedDevice struct {
	device   core.Device
	lastSeen time.Time
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithTimeout sets the browse timeout.
func WithTimeout(d time.Duration) Option {
	return func(disc *Discovery) {
		if d > 0 {
			disc.timeout = d
		}
	}
}

// WithFamilies limits discovery to the enabled families.
func WithFamilies(smart, soundtouch bool) Option {
	return func(disc *Discovery) {
		disc.smart = smart
		disc.soundtouch = soundtouch
	}
}

// WithLogger sets the logger used for wire-level discovery details.
func WithLogger(log zerolog.Logger) Option {
	return func(disc *Discovery) {
		disc.log = log
	}
}

// New creates a Discovery.
func New(opts ...Option) *Discovery {
	d := &Discovery{
		timeout:    defaultTimeout,
		ttl:        defaultTTL,
		smart:      true,
		soundtouch: true,
		log:        zerolog.Nop(),
		devices:    make(map[string]*cachedDevice),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover browses the enabled service types and returns all devices found.
// Results are also cached for later lookup.
func (d *Discovery) Discover(ctx context.Context) ([]core.Device, error) {
	type browse struct {
		service string
		family  core.Family
	}
	var browses []browse
	if d.smart {
		browses = append(browses, browse{SmartService, core.FamilySmart})
	}
	if d.soundtouch {
		browses = append(browses, browse{SoundTouchService, core.FamilySoundTouch})
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		devices []core.Device
		errs    []error
	)

	for _, b := range browses {
		wg.Add(1)
		go func(b browse) {
			defer wg.Done()
			found, err := d.browseService(ctx, b.service, b.family)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.service, err))
				return
			}
			devices = append(devices, found...)
		}(b)
	}
	wg.Wait()

	// Partial results are fine; fail only if every browse failed.
	if len(devices) == 0 && len(errs) == len(browses) && len(errs) > 0 {
		return nil, errs[0]
	}

	return devices, nil
}

func (d *Discovery) browseService(ctx context.Context, service string, family core.Family) ([]core.Device, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(ctx, service, mdnsDomain, entries); err != nil {
		return nil, fmt.Errorf("browse: %w", err)
	}

	var devices []core.Device
	seen := make(map[string]bool)

	for entry := range entries {
		device, ok := deviceFromEntry(entry, family)
		if !ok {
			d.log.Debug().Str("instance", entry.Instance).Msg("skipping mDNS entry without usable address")
			continue
		}
		if seen[device.GUID] {
			continue
		}
		seen[device.GUID] = true

		d.log.Debug().
			Str("guid", device.GUID).
			Str("name", device.Name).
			Str("ip", device.IP).
			Str("family", string(family)).
			Msg("discovered device")

		devices = append(devices, device)
		d.cache(device)
	}

	return devices, nil
}

// deviceFromEntry converts an mDNS service entry into a Device.
func deviceFromEntry(entry *zeroconf.ServiceEntry, family core.Family) (core.Device, bool) {
	var ip string
	for _, addr := range entry.AddrIPv4 {
		if !addr.IsLinkLocalUnicast() {
			ip = addr.String()
			break
		}
	}
	if ip == "" {
		for _, addr := range entry.AddrIPv6 {
			if !addr.IsLinkLocalUnicast() {
				ip = addr.String()
				break
			}
		}
	}
	if ip == "" {
		return core.Device{}, false
	}

	txt := parseTXT(entry.Text)

	guid := txt["GUID"]
	if guid == "" {
		guid = txt["MAC"]
	}
	if guid == "" {
		// Fall back to the instance name so the device is still addressable.
		guid = entry.Instance
	}

	return core.Device{
		GUID:   guid,
		Name:   entry.Instance,
		IP:     ip,
		Family: family,
		Model:  txt["MODEL"],
	}, true
}

// parseTXT splits key=value TXT records into a map. Keys are uppercased.
func parseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, rec := range records {
		k, v, found := strings.Cut(rec, "=")
		if !found {
			continue
		}
		out[strings.ToUpper(k)] = v
	}
	return out
}

func (d *Discovery) cache(device core.Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices[device.GUID] = &cachedDevice{device: device, lastSeen: time.Now()}
}

// GetDevice returns a cached device by GUID, name, or IP. Expired cache
// entries are ignored.
func (d *Discovery) GetDevice(identifier string) (core.Device, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if c, ok := d.devices[identifier]; ok && time.Since(c.lastSeen) < d.ttl {
		return c.device, true
	}

	for _, c := range d.devices {
		if time.Since(c.lastSeen) >= d.ttl {
			continue
		}
		if strings.EqualFold(c.device.Name, identifier) || c.device.IP == identifier {
			return c.device, true
		}
	}

	return core.Device{}, false
}

// CachedDevices returns all cached devices that haven't expired.
func (d *Discovery) CachedDevices() []core.Device {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var devices []core.Device
	now := time.Now()
	for _, c := range d.devices {
		if now.Sub(c.lastSeen) < d.ttl {
			devices = append(devices, c.device)
		}
	}
	return devices
}

// Find rediscovers a device by GUID, returning its current address. Used by
// the reconnect path when a speaker drops off its last known IP.
func (d *Discovery) Find(ctx context.Context, guid string) (core.Device, error) {
	devices, err := d.Discover(ctx)
	if err != nil {
		return core.Device{}, err
	}
	for _, device := range devices {
		if device.GUID == guid {
			return device, nil
		}
	}
	return core.Device{}, fmt.Errorf("%w: %s", chimeerrors.ErrDeviceNotFound, guid)
}
