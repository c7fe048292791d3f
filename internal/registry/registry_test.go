package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

func testDevice(guid, name, ip string) core.Device {
	return core.Device{
		GUID:   guid,
		Name:   name,
		IP:     ip,
		Family: core.FamilySmart,
		Model:  "Bose Smart Speaker 500",
	}
}

func TestAddAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	entry, err := r.Add(testDevice("guid-1", "Kitchen", "192.168.1.10"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.ID == "" {
		t.Error("Add() returned entry without ID")
	}

	tests := []struct {
		name       string
		identifier string
	}{
		{"by entry id", entry.ID},
		{"by guid", "guid-1"},
		{"by name", "Kitchen"},
		{"by name case-insensitive", "kitchen"},
		{"by ip", "192.168.1.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Get(tt.identifier)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.identifier, err)
			}
			if got.Device.GUID != "guid-1" {
				t.Errorf("Get(%q) GUID = %q", tt.identifier, got.Device.GUID)
			}
		})
	}

	if _, err := r.Get("nope"); !errors.Is(err, chimeerrors.ErrNotRegistered) {
		t.Errorf("Get(unknown) error = %v, want ErrNotRegistered", err)
	}
}

func TestAddDuplicateGUIDUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	r, _ := Open(path)

	first, _ := r.Add(testDevice("guid-1", "Kitchen", "192.168.1.10"))
	second, err := r.Add(testDevice("guid-1", "Kitchen Speaker", "192.168.1.11"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if first.ID != second.ID {
		t.Error("re-adding same GUID created a new entry")
	}
	if len(r.List()) != 1 {
		t.Errorf("List() length = %d, want 1", len(r.List()))
	}
	if second.Device.IP != "192.168.1.11" {
		t.Errorf("IP = %q, want updated IP", second.Device.IP)
	}
}

func TestUpdateIPAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	r, _ := Open(path)
	r.Add(testDevice("guid-1", "Kitchen", "192.168.1.10"))

	if err := r.UpdateIP("guid-1", "192.168.1.42"); err != nil {
		t.Fatalf("UpdateIP() error = %v", err)
	}
	if err := r.UpdateIP("guid-missing", "10.0.0.1"); !errors.Is(err, chimeerrors.ErrNotRegistered) {
		t.Errorf("UpdateIP(unknown) error = %v, want ErrNotRegistered", err)
	}

	// Reload from disk and verify the change survived.
	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open() reload error = %v", err)
	}
	entry, err := reloaded.Get("guid-1")
	if err != nil {
		t.Fatalf("Get() after reload error = %v", err)
	}
	if entry.Device.IP != "192.168.1.42" {
		t.Errorf("IP after reload = %q, want 192.168.1.42", entry.Device.IP)
	}
}

func TestAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	r, _ := Open(path)
	r.Add(testDevice("guid-1", "Kitchen", "192.168.1.10"))

	if err := r.SetAlias("Kitchen", "cocina"); err != nil {
		t.Fatalf("SetAlias() error = %v", err)
	}
	// Idempotent
	if err := r.SetAlias("Kitchen", "Cocina"); err != nil {
		t.Fatalf("SetAlias() repeat error = %v", err)
	}

	entry, err := r.Get("cocina")
	if err != nil {
		t.Fatalf("Get(alias) error = %v", err)
	}
	if len(entry.Aliases) != 1 {
		t.Errorf("Aliases = %v, want exactly one", entry.Aliases)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	r, _ := Open(path)
	r.Add(testDevice("guid-1", "Kitchen", "192.168.1.10"))
	r.Add(testDevice("guid-2", "Bedroom", "192.168.1.11"))

	if err := r.Remove("Kitchen"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(r.List()) != 1 {
		t.Errorf("List() length = %d, want 1", len(r.List()))
	}
	if _, err := r.Get("guid-1"); !errors.Is(err, chimeerrors.ErrNotRegistered) {
		t.Error("removed device still resolvable")
	}
}
