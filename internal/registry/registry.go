// Package registry persists known Bose devices between runs. Discovery finds
// devices; the registry remembers them, their last known IP, and any aliases,
// so commands can address a speaker by name without re-scanning the network.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tessro/chime/internal/core"
	chimeerrors "github.com/tessro/chime/internal/errors"
)

const defaultFileName = "devices.json"

// Entry is a registered device.
type Entry struct {
	ID      string      `json:"id"`
	Device  core.Device `json:"device"`
	Aliases []string    `json:"aliases,omitempty"`
}

// Registry is a JSON-file-backed device store.
type Registry struct {
	path string

	mu      sync.RWMutex
	entries []*Entry
}

// Open loads the registry at path. If path is empty, the default location
// (~/.config/chime/devices.json) is used. A missing file yields an empty
// registry.
func Open(path string) (*Registry, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config directory: %w", err)
		}
		path = filepath.Join(configDir, "chime", defaultFileName)
	}

	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var stored struct {
		Entries []*Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	r.entries = stored.Entries

	return r, nil
}

// save writes the registry to disk. Callers must hold the lock.
func (r *Registry) save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(struct {
		Entries []*Entry `json:"entries"`
	}{Entries: r.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// Add registers a device and returns its entry. Registering a GUID that
// already exists updates the stored device data instead of duplicating it.
func (r *Registry) Add(device core.Device) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Device.GUID == device.GUID {
			e.Device = device
			if err := r.save(); err != nil {
				return nil, err
			}
			return e, nil
		}
	}

	entry := &Entry{
		ID:     uuid.NewString(),
		Device: device,
	}
	r.entries = append(r.entries, entry)
	if err := r.save(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Get finds an entry by entry ID, GUID, name, alias, or IP.
// Name and alias matching is case-insensitive.
func (r *Registry) Get(identifier string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id := strings.ToLower(identifier)
	for _, e := range r.entries {
		if e.ID == identifier || e.Device.GUID == identifier || e.Device.IP == identifier {
			return e, nil
		}
		if strings.ToLower(e.Device.Name) == id {
			return e, nil
		}
		for _, alias := range e.Aliases {
			if strings.ToLower(alias) == id {
				return e, nil
			}
		}
	}
	return nil, chimeerrors.ErrNotRegistered
}

// List returns all registered entries.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// UpdateIP records a new IP for the device with the given GUID. Used after
// rediscovery when a speaker's DHCP lease changed.
func (r *Registry) UpdateIP(guid, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.Device.GUID == guid {
			if e.Device.IP == ip {
				return nil
			}
			e.Device.IP = ip
			return r.save()
		}
	}
	return chimeerrors.ErrNotRegistered
}

// SetAlias adds an alias to a registered device.
func (r *Registry) SetAlias(identifier, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := strings.ToLower(identifier)
	for _, e := range r.entries {
		if e.ID == identifier || e.Device.GUID == identifier || strings.ToLower(e.Device.Name) == id {
			for _, a := range e.Aliases {
				if strings.EqualFold(a, alias) {
					return nil
				}
			}
			e.Aliases = append(e.Aliases, alias)
			return r.save()
		}
	}
	return chimeerrors.ErrNotRegistered
}

// Remove deletes a registered device.
func (r *Registry) Remove(identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := strings.ToLower(identifier)
	for i, e := range r.entries {
		if e.ID == identifier || e.Device.GUID == identifier || strings.ToLower(e.Device.Name) == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return r.save()
		}
	}
	return chimeerrors.ErrNotRegistered
}

// Path returns the registry file path.
func (r *Registry) Path() string {
	return r.path
}
