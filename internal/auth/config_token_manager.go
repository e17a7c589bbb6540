package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves renewed tokens, typically to the CLI config file.
type ConfigPersister interface {
	UpdateToken(token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps OAuth2TokenManager and persists every renewed
// token through a ConfigPersister.
type ConfigTokenManager struct {
	oauth2Manager   *OAuth2TokenManager
	configPersister ConfigPersister
	mutex           sync.Mutex
	lastToken       string
	onPersistError  func(error)
}

// NewConfigTokenManager creates a config-persisting token manager.
func NewConfigTokenManager(config *OAuth2Config, configPersister ConfigPersister, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	oauth2Manager := NewOAuth2TokenManager(config)

	if initialToken != "" {
		oauth2Manager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		oauth2Manager:   oauth2Manager,
		configPersister: configPersister,
		lastToken:       initialToken,
	}
}

// OnPersistError sets a callback for persistence failures. Failures never
// fail the request that triggered them.
func (m *ConfigTokenManager) OnPersistError(fn func(error)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.onPersistError = fn
}

// GetToken returns a valid access token, refreshing and persisting it when needed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	if token != m.lastToken {
		m.persistCurrent()
	}

	return token, nil
}

// RefreshToken forces a token refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.oauth2Manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistCurrent()

	return nil
}

// SetToken manually sets the access token without persisting it.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.oauth2Manager.SetToken(token, expiresAt)
	m.lastToken = token
}

// persistCurrent must be called with the mutex held.
func (m *ConfigTokenManager) persistCurrent() {
	current := m.oauth2Manager.Token()
	if current == nil {
		return
	}

	m.lastToken = current.AccessToken

	err := m.persistToken(current)
	if err != nil && m.onPersistError != nil {
		m.onPersistError(err)
	}
}

func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateToken(token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}
