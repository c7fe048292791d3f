package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not authenticated", ErrNotAuthenticated, "auth login"},
		{"auth expired wrapped", fmt.Errorf("refresh: %w", ErrAuthExpired), "auth login"},
		{"device not found", ErrDeviceNotFound, "devices --refresh"},
		{"not registered", ErrNotRegistered, "chime setup"},
		{"not in group", ErrNotInGroup, "group list"},
		{"unsupported", ErrUnsupported, "device family"},
		{"timeout string", fmt.Errorf("dial tcp: i/o timeout"), "powered on"},
		{"unknown", fmt.Errorf("something else entirely"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("GetSuggestion() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	base := fmt.Errorf("boom")
	err := WithSuggestion(base, "try turning it off and on again")

	if got := GetSuggestion(err); got != "try turning it off and on again" {
		t.Errorf("GetSuggestion() = %q, want custom suggestion", got)
	}

	formatted := Format(err)
	if !strings.Contains(formatted, "boom") || !strings.Contains(formatted, "Suggestion:") {
		t.Errorf("Format() = %q, missing error or suggestion", formatted)
	}
}
