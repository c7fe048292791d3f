package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	chimeerrors "github.com/tessro/chime/internal/errors"
)

const (
	// refreshDelay is how long between each check if the token is valid.
	refreshDelay = time.Hour

	// retryDelay is how long before each retry if refresh fails.
	retryDelay = 2 * time.Minute
)

// Keeper keeps a control token fresh for long-running sessions like tail and
// the TUI. It refreshes the token before expiry and persists each refresh.
type Keeper struct {
	client  *Client
	storage *TokenStorage
	log     zerolog.Logger

	mu    sync.RWMutex
	token *Token
}

// NewKeeper creates a Keeper around an existing token.
func NewKeeper(client *Client, storage *TokenStorage, token *Token, log zerolog.Logger) *Keeper {
	return &Keeper{
		client:  client,
		storage: storage,
		token:   token,
		log:     log,
	}
}

// Token returns the current token.
func (k *Keeper) Token() *Token {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.token
}

// AccessToken returns the current access token string.
func (k *Keeper) AccessToken() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.token == nil {
		return ""
	}
	return k.token.AccessToken
}

// Run refreshes the token periodically until the context is cancelled. It
// returns ErrAuthExpired when the refresh token itself is rejected, at which
// point the user has to log in again.
func (k *Keeper) Run(ctx context.Context) error {
	for {
		// When the token is valid well past the next check, just wait.
		if k.Token() != nil && k.Token().ValidFor() > 2*refreshDelay {
			k.log.Debug().Dur("sleep", refreshDelay).Msg("token still fresh, sleeping")
			if err := sleep(ctx, refreshDelay); err != nil {
				return err
			}
			continue
		}

		if err := k.refresh(ctx); err != nil {
			if errors.Is(err, chimeerrors.ErrAuthExpired) {
				k.log.Warn().Msg("refresh token rejected, re-authentication required")
				return err
			}
			k.log.Warn().Err(err).Dur("retry_in", retryDelay).Msg("token refresh failed")
			if err := sleep(ctx, retryDelay); err != nil {
				return err
			}
			continue
		}

		k.log.Info().Time("expires_at", k.Token().ExpiresAt).Msg("token refreshed")
	}
}

// refresh attempts a single refresh round, retrying transient failures with
// exponential backoff.
func (k *Keeper) refresh(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = retryDelay

	return backoff.Retry(func() error {
		token, err := k.client.Refresh(ctx, k.Token())
		if err != nil {
			if errors.Is(err, chimeerrors.ErrAuthExpired) || errors.Is(err, chimeerrors.ErrNotAuthenticated) {
				return backoff.Permanent(err)
			}
			return err
		}

		k.mu.Lock()
		k.token = token
		k.mu.Unlock()

		if k.storage != nil {
			if err := k.storage.Save(token); err != nil {
				k.log.Warn().Err(err).Msg("failed to persist refreshed token")
			}
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
