package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/adminapi-client/internal/auth"
	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/internal/http"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
)

// Client implements the adminapi.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       adminapi.Logger

	users *UsersClient
}

var _ adminapi.Client = (*Client)(nil)

// New creates a new admin API client.
func New(_ context.Context, config *adminapi.Config) (*Client, error) {
	if config == nil {
		return nil, adminapi.ErrConfigRequired
	}

	tokenManager, err := createTokenManager(config)
	if err != nil {
		return nil, err
	}

	return NewWithTokenManager(config, tokenManager)
}

// NewWithTokenManager creates a new admin API client with a custom token
// manager. A nil tokenManager sends unauthenticated requests.
func NewWithTokenManager(config *adminapi.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, adminapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, adminapi.ErrAPIEndpointRequired
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, createHTTPClientOptions(config)...)

	return &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      httpClient.BaseURL(),
		logger:       config.Logger,
		users: NewUsersClient(httpClient,
			WithResourcePath(config.ResourcePath),
			WithSortEncoding(config.SortEncoding),
		),
	}, nil
}

// Users implements adminapi.Client.Users.
func (c *Client) Users() adminapi.UsersClient {
	return c.users
}

// GetToken implements adminapi.Client.GetToken.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", adminapi.ErrNoTokenManager
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the normalized API endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// createTokenManager picks a token manager by credential precedence:
// token source, access token, client credentials, password, none.
func createTokenManager(config *adminapi.Config) (auth.TokenManager, error) {
	switch {
	case config.TokenSource != nil:
		return auth.NewTokenSourceManager(config.TokenSource), nil
	case config.AccessToken != "":
		if config.RefreshToken != "" && config.TokenURL != "" {
			return auth.NewOAuth2TokenManager(oauth2Config(config)), nil
		}

		return auth.NewStaticTokenManager(config.AccessToken), nil
	case config.ClientID != "" && config.ClientSecret != "",
		config.Username != "" && config.Password != "":
		if config.TokenURL == "" {
			return nil, adminapi.ErrTokenURLRequired
		}

		return auth.NewOAuth2TokenManager(oauth2Config(config)), nil
	default:
		return nil, nil //nolint:nilnil // no authentication
	}
}

func oauth2Config(config *adminapi.Config) *auth.OAuth2Config {
	return &auth.OAuth2Config{
		TokenURL:     config.TokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.AccessToken,
		HTTPClient:   config.HTTPClient,
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *adminapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if len(config.DefaultHeaders) > 0 {
		httpOpts = append(httpOpts, http.WithDefaultHeaders(config.DefaultHeaders))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}
