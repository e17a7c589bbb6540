package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// StaticTokenManager always returns the same token.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a manager for a fixed bearer token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the configured token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" {
		return "", ErrNoValidCredentials
	}

	return m.token, nil
}

// RefreshToken is a no-op; a static token cannot be renewed.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return nil
}

// SetToken replaces the token. The expiry is ignored.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}

// TokenSourceManager adapts an oauth2.TokenSource.
type TokenSourceManager struct {
	mu     sync.RWMutex
	source oauth2.TokenSource
}

// NewTokenSourceManager wraps source so tokens are reused until they expire.
func NewTokenSourceManager(source oauth2.TokenSource) *TokenSourceManager {
	return &TokenSourceManager{source: oauth2.ReuseTokenSource(nil, source)}
}

// GetToken returns the current token of the source.
func (m *TokenSourceManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	source := m.source
	m.mu.RUnlock()

	if source == nil {
		return "", ErrNoTokenSource
	}

	tok, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("getting token from source: %w", err)
	}

	if tok.AccessToken == "" {
		return "", ErrEmptyAccessToken
	}

	return tok.AccessToken, nil
}

// RefreshToken is a no-op; the source renews tokens itself.
func (m *TokenSourceManager) RefreshToken(ctx context.Context) error {
	return nil
}

// SetToken replaces the source with a static token.
func (m *TokenSourceManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.source = oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "bearer",
		Expiry:      expiresAt,
	})
}
