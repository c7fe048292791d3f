package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/tessro/chime/internal/core"
)

func TestDeviceFromEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		family   core.Family
		wantGUID string
		wantIP   string
		wantOK   bool
	}{
		{
			name: "smart speaker with GUID",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Living Room"},
				Text:          []string{"GUID=abc-123", "MODEL=Bose Home Speaker 500"},
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
			},
			family:   core.FamilySmart,
			wantGUID: "abc-123",
			wantIP:   "192.168.1.50",
			wantOK:   true,
		},
		{
			name: "soundtouch with MAC fallback",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Kitchen"},
				Text:          []string{"MAC=AABBCCDDEEFF"},
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.60")},
			},
			family:   core.FamilySoundTouch,
			wantGUID: "AABBCCDDEEFF",
			wantIP:   "192.168.1.60",
			wantOK:   true,
		},
		{
			name: "instance name fallback",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Bedroom"},
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
			},
			family:   core.FamilySmart,
			wantGUID: "Bedroom",
			wantIP:   "10.0.0.5",
			wantOK:   true,
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Ghost"},
				Text:          []string{"GUID=xyz"},
			},
			family: core.FamilySmart,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, ok := deviceFromEntry(tt.entry, tt.family)
			if ok != tt.wantOK {
				t.Fatalf("deviceFromEntry() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if device.GUID != tt.wantGUID {
				t.Errorf("GUID = %q, want %q", device.GUID, tt.wantGUID)
			}
			if device.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", device.IP, tt.wantIP)
			}
			if device.Family != tt.family {
				t.Errorf("Family = %q, want %q", device.Family, tt.family)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"GUID=abc", "model=500", "malformed"})
	if got["GUID"] != "abc" {
		t.Errorf("GUID = %q, want %q", got["GUID"], "abc")
	}
	if got["MODEL"] != "500" {
		t.Errorf("MODEL = %q, want %q", got["MODEL"], "500")
	}
	if _, ok := got["malformed"]; ok {
		t.Error("malformed record should be skipped")
	}
}

func TestCacheLookup(t *testing.T) {
	d := New()
	device := core.Device{GUID: "guid-1", Name: "Living Room", IP: "192.168.1.50", Family: core.FamilySmart}
	d.cache(device)

	tests := []struct {
		identifier string
		want       bool
	}{
		{"guid-1", true},
		{"Living Room", true},
		{"living room", true},
		{"192.168.1.50", true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			got, ok := d.GetDevice(tt.identifier)
			if ok != tt.want {
				t.Fatalf("GetDevice(%q) ok = %v, want %v", tt.identifier, ok, tt.want)
			}
			if ok && got.GUID != device.GUID {
				t.Errorf("GUID = %q, want %q", got.GUID, device.GUID)
			}
		})
	}
}

func TestCacheExpiry(t *testing.T) {
	d := New()
	d.ttl = 10 * time.Millisecond
	d.cache(core.Device{GUID: "guid-1", Name: "Living Room", IP: "192.168.1.50"})

	time.Sleep(20 * time.Millisecond)

	if _, ok := d.GetDevice("guid-1"); ok {
		t.Error("expected cache entry to expire")
	}
	if devices := d.CachedDevices(); len(devices) != 0 {
		t.Errorf("CachedDevices() = %d devices, want 0", len(devices))
	}
}
