package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

func TestTokenIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"expired", time.Now().Add(-time.Hour), true},
		{"expires within buffer", time.Now().Add(30 * time.Second), true},
		{"valid", time.Now().Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &Token{ExpiresAt: tt.expiresAt}
			if got := token.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bose_token.json")
	storage, err := NewTokenStorage(path)
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	if storage.Exists() {
		t.Error("Exists() = true before save")
	}

	loaded, err := storage.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() = %v before save, want nil", loaded)
	}

	token := &Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		BosePersonID: "person-1",
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := storage.Save(token); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err = storage.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.AccessToken != token.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, token.AccessToken)
	}
	if loaded.BosePersonID != token.BosePersonID {
		t.Errorf("BosePersonID = %q, want %q", loaded.BosePersonID, token.BosePersonID)
	}

	if err := storage.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if storage.Exists() {
		t.Error("Exists() = true after delete")
	}
}

func TestSaveRejectsIncompleteToken(t *testing.T) {
	storage, err := NewTokenStorage(filepath.Join(t.TempDir(), "bose_token.json"))
	if err != nil {
		t.Fatalf("NewTokenStorage() error = %v", err)
	}

	tokens := []*Token{
		nil,
		{RefreshToken: "refresh", BosePersonID: "person-1"},
		{AccessToken: "access", RefreshToken: "refresh"},
	}
	for _, token := range tokens {
		if err := storage.Save(token); err == nil {
			t.Errorf("Save(%+v) accepted incomplete credentials", token)
		}
	}
	if storage.Exists() {
		t.Error("Exists() = true after rejected saves")
	}
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" {
			t.Errorf("path = %q, want /token", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["email"] != "user@example.com" {
			t.Errorf("email = %q, want user@example.com", body["email"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"bosePersonID":  "person-1",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	token, err := client.Login(context.Background(), "user@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if token.AccessToken != "access-1" {
		t.Errorf("AccessToken = %q, want access-1", token.AccessToken)
	}
	if token.BosePersonID != "person-1" {
		t.Errorf("BosePersonID = %q, want person-1", token.BosePersonID)
	}
	if token.IsExpired() {
		t.Error("fresh token reported expired")
	}
}

func TestLoginUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.Login(context.Background(), "user@example.com", "wrong")
	if !errors.Is(err, chimeerrors.ErrAuthExpired) {
		t.Errorf("Login() error = %v, want ErrAuthExpired", err)
	}
}

func TestRefreshPreservesPersonID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token/refresh" {
			t.Errorf("path = %q, want /token/refresh", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	token, err := client.Refresh(context.Background(), &Token{
		RefreshToken: "refresh-1",
		BosePersonID: "person-1",
	})
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if token.AccessToken != "access-2" {
		t.Errorf("AccessToken = %q, want access-2", token.AccessToken)
	}
	if token.BosePersonID != "person-1" {
		t.Errorf("BosePersonID = %q, want person-1 (preserved)", token.BosePersonID)
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	client := NewClient()
	if _, err := client.Refresh(context.Background(), nil); !errors.Is(err, chimeerrors.ErrNotAuthenticated) {
		t.Errorf("Refresh(nil) error = %v, want ErrNotAuthenticated", err)
	}
}
