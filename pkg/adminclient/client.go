package adminclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/adminapi-client/internal/client"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
)

// New creates a new admin API client. The caller's config is not modified.
//
// The endpoint loses any trailing slash and gains "https://" when it has no
// scheme. A TokenURL starting with "/" is resolved against the endpoint.
func New(ctx context.Context, config *adminapi.Config) (adminapi.Client, error) {
	if config == nil {
		return nil, adminapi.ErrConfigRequired
	}

	if strings.TrimSpace(config.APIEndpoint) == "" {
		return nil, adminapi.ErrAPIEndpointRequired
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	if strings.HasPrefix(normalized.TokenURL, "/") {
		normalized.TokenURL = normalized.APIEndpoint + normalized.TokenURL
	}

	apiClient, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return apiClient, nil
}

// NormalizeEndpoint trims a trailing slash and defaults the scheme to https.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (adminapi.Client, error) {
	return New(ctx, &adminapi.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, token string) (adminapi.Client, error) {
	return New(ctx, &adminapi.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithPassword creates a new client using the OAuth2 password grant
// against tokenURL.
func NewWithPassword(ctx context.Context, endpoint, tokenURL, username, password string) (adminapi.Client, error) {
	return New(ctx, &adminapi.Config{
		APIEndpoint: endpoint,
		TokenURL:    tokenURL,
		Username:    username,
		Password:    password,
	})
}
