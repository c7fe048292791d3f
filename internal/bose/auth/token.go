// Package auth handles Bose account authentication for the smart speaker
// family. Smart speakers require a cloud-issued control token on every
// websocket request; SoundTouch systems need no authentication.
package auth

import "time"

// Token holds the Bose cloud credentials for the smart speaker family.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	BosePersonID string    `json:"bose_person_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired returns true if the token has expired or will expire within the buffer.
func (t *Token) IsExpired() bool {
	// Consider token expired 60 seconds before actual expiry
	return time.Now().Add(60 * time.Second).After(t.ExpiresAt)
}

// ValidFor returns how long the token remains valid. Negative if expired.
func (t *Token) ValidFor() time.Duration {
	return time.Until(t.ExpiresAt)
}
