package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrNoTokenSource      = errors.New("no token source configured")
	ErrEmptyAccessToken   = errors.New("token endpoint returned an empty access token")
)

// OAuth2Config configures an OAuth2TokenManager.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	RefreshToken string
	AccessToken  string
	Scopes       []string
	HTTPClient   *http.Client
}

// OAuth2TokenManager obtains and renews tokens from an OAuth2 token endpoint.
//
// Grants are tried in order: refresh_token, password, client_credentials.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
}

// NewOAuth2TokenManager creates a manager. A configured AccessToken is used
// until it expires.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// GetToken returns a valid access token, fetching a new one when needed.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken fetches a new token from the token endpoint.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	if m.config.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.config.HTTPClient)
	}

	tok, err := m.fetchToken(ctx)
	if err != nil {
		return err
	}

	if tok.AccessToken == "" {
		return ErrEmptyAccessToken
	}

	m.store.Set(tokenFromOAuth2(tok))

	return nil
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

// Token returns the stored token, or nil before the first fetch.
func (m *OAuth2TokenManager) Token() *Token {
	return m.store.Get()
}

func (m *OAuth2TokenManager) fetchToken(ctx context.Context) (*oauth2.Token, error) {
	refreshToken := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	switch {
	case refreshToken != "":
		tok, err := m.oauth2Config().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
		if err != nil {
			return nil, fmt.Errorf("refreshing token: %w", err)
		}

		return tok, nil
	case m.config.Username != "" && m.config.Password != "":
		tok, err := m.oauth2Config().PasswordCredentialsToken(ctx, m.config.Username, m.config.Password)
		if err != nil {
			return nil, fmt.Errorf("requesting password token: %w", err)
		}

		return tok, nil
	case m.config.ClientID != "" && m.config.ClientSecret != "":
		ccConfig := &clientcredentials.Config{
			ClientID:     m.config.ClientID,
			ClientSecret: m.config.ClientSecret,
			TokenURL:     m.config.TokenURL,
			Scopes:       m.config.Scopes,
		}

		tok, err := ccConfig.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("requesting client credentials token: %w", err)
		}

		return tok, nil
	default:
		return nil, ErrNoValidCredentials
	}
}

func (m *OAuth2TokenManager) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Scopes:       m.config.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL: m.config.TokenURL,
		},
	}
}
