package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

// DefaultBaseURL is the Bose identity API endpoint.
const DefaultBaseURL = "https://id.api.bose.io/id-jwt-core/v1"

// Client talks to the Bose cloud identity API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new identity API client.
func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used in tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// tokenResponse is the raw response from the identity API.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	BosePersonID string `json:"bosePersonID"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// Login authenticates with a Bose account and returns a control token.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	return c.requestToken(ctx, "/token", body)
}

// Refresh exchanges a refresh token for a new access token. The person ID is
// preserved from the old token when the response omits it.
func (c *Client) Refresh(ctx context.Context, token *Token) (*Token, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, chimeerrors.ErrNotAuthenticated
	}

	body := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": token.RefreshToken,
	}
	refreshed, err := c.requestToken(ctx, "/token/refresh", body)
	if err != nil {
		return nil, err
	}
	if refreshed.BosePersonID == "" {
		refreshed.BosePersonID = token.BosePersonID
	}
	return refreshed, nil
}

func (c *Client) requestToken(ctx context.Context, path string, body map[string]string) (*Token, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, chimeerrors.ErrAuthExpired
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(data, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if tokenResp.Error != "" {
		return nil, fmt.Errorf("token error: %s - %s", tokenResp.Error, tokenResp.ErrorDesc)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return &Token{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		BosePersonID: tokenResp.BosePersonID,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}
