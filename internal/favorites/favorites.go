// Package favorites stores playable content the user has saved, independent
// of the six hardware preset slots on SoundTouch devices.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultFileName is the default name for the favorites file.
const DefaultFileName = "favorites.json"

// Favorite is a saved piece of playable content.
type Favorite struct {
	Name          string `json:"name"`
	Source        string `json:"source"`
	ItemType      string `json:"item_type"`
	Location      string `json:"location"`
	SourceAccount string `json:"source_account,omitempty"`
	ContainerArt  string `json:"container_art,omitempty"`
	IsPresetable  bool   `json:"is_presetable"`
}

type storeFile struct {
	Favorites []Favorite `json:"favorites"`
}

// Store is a JSON-backed favorites list.
type Store struct {
	mu        sync.Mutex
	path      string
	favorites []Favorite
}

// Open loads the favorites file at path, creating an empty store if it does
// not exist. An empty path uses the default location
// (~/.config/chime/favorites.json).
func Open(path string) (*Store, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "chime", DefaultFileName)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read favorites file: %w", err)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse favorites file: %w", err)
	}
	s.favorites = file.Favorites

	return s, nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(storeFile{Favorites: s.favorites}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write favorites file: %w", err)
	}
	return nil
}

// List returns all favorites.
func (s *Store) List() []Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Favorite, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// Add saves a favorite. Adding content that is already saved (same source and
// location) updates it in place instead of duplicating.
func (s *Store) Add(fav Favorite) error {
	if fav.Name == "" || fav.Source == "" || fav.Location == "" {
		return fmt.Errorf("favorite needs a name, source, and location")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.favorites {
		if existing.Source == fav.Source && existing.Location == fav.Location {
			s.favorites[i] = fav
			return s.save()
		}
	}

	s.favorites = append(s.favorites, fav)
	return s.save()
}

// Remove deletes the favorite at the given location. Removing a location
// that is not saved is not an error.
func (s *Store) Remove(location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.favorites[:0]
	removed := false
	for _, fav := range s.favorites {
		if fav.Location == location {
			removed = true
			continue
		}
		kept = append(kept, fav)
	}
	s.favorites = kept

	if !removed {
		return nil
	}
	return s.save()
}

// Find looks up a favorite by name (case-insensitive) or location.
func (s *Store) Find(identifier string) (Favorite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fav := range s.favorites {
		if strings.EqualFold(fav.Name, identifier) || fav.Location == identifier {
			return fav, true
		}
	}
	return Favorite{}, false
}

// Path returns the path to the favorites file.
func (s *Store) Path() string {
	return s.path
}
