package favorites

import (
	"path/filepath"
	"testing"
)

func testFavorite(name, location string) Favorite {
	return Favorite{
		Name:         name,
		Source:       "SPOTIFY",
		ItemType:     "uri",
		Location:     location,
		IsPresetable: true,
	}
}

func TestAddAndList(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Add(testFavorite("Morning Mix", "spotify:playlist:one")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(testFavorite("Evening Mix", "spotify:playlist:two")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	favorites := store.List()
	if len(favorites) != 2 {
		t.Fatalf("List() = %d favorites, want 2", len(favorites))
	}
}

func TestAddUpdatesExisting(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Add(testFavorite("Old Name", "spotify:playlist:one")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Add(testFavorite("New Name", "spotify:playlist:one")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	favorites := store.List()
	if len(favorites) != 1 {
		t.Fatalf("List() = %d favorites, want 1", len(favorites))
	}
	if favorites[0].Name != "New Name" {
		t.Errorf("Name = %q, want %q", favorites[0].Name, "New Name")
	}
}

func TestAddValidation(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Add(Favorite{Name: "No Location", Source: "SPOTIFY"}); err == nil {
		t.Error("Add() without location should fail")
	}
}

func TestRemove(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Add(testFavorite("Morning Mix", "spotify:playlist:one")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := store.Remove("spotify:playlist:one"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(store.List()) != 0 {
		t.Error("favorite not removed")
	}

	// Removing again is a no-op.
	if err := store.Remove("spotify:playlist:one"); err != nil {
		t.Errorf("Remove() of missing location error = %v", err)
	}
}

func TestFind(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "favorites.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Add(testFavorite("Morning Mix", "spotify:playlist:one")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	tests := []struct {
		identifier string
		want       bool
	}{
		{"Morning Mix", true},
		{"morning mix", true},
		{"spotify:playlist:one", true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			_, ok := store.Find(tt.identifier)
			if ok != tt.want {
				t.Errorf("Find(%q) = %v, want %v", tt.identifier, ok, tt.want)
			}
		})
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Add(testFavorite("Morning Mix", "spotify:playlist:one")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open() reload error = %v", err)
	}
	favorites := reloaded.List()
	if len(favorites) != 1 {
		t.Fatalf("List() after reload = %d favorites, want 1", len(favorites))
	}
	if favorites[0].Location != "spotify:playlist:one" {
		t.Errorf("Location = %q, want %q", favorites[0].Location, "spotify:playlist:one")
	}
}
