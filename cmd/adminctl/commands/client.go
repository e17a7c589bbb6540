package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/auth"
	"github.com/fivetwenty-io/adminapi-client/internal/client"
	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/internal/events"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminclient"
	"github.com/spf13/viper"
)

const eventSource = "adminctl"

// CreateClient creates an API client from the effective configuration.
// A refresh token together with a token URL enables automatic renewal; renewed
// tokens are written back to the configuration file.
func CreateClient(ctx context.Context, logger adminapi.Logger) (adminapi.Client, error) {
	config := loadConfig()
	if config.API == "" {
		return nil, constants.ErrNoAPIEndpointConfigured
	}

	apiConfig, err := buildAPIConfig(config, logger)
	if err != nil {
		return nil, err
	}

	tokenManager := createTokenManager(config, logger)
	if tokenManager == nil {
		apiClient, err := adminclient.New(ctx, apiConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}

		return apiClient, nil
	}

	apiClient, err := client.NewWithTokenManager(apiConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client with token manager: %w", err)
	}

	return apiClient, nil
}

func buildAPIConfig(config *Config, logger adminapi.Logger) (*adminapi.Config, error) {
	encoding, err := adminapi.ParseSortEncoding(config.SortEncoding)
	if err != nil {
		return nil, fmt.Errorf("invalid sort_encoding: %w", err)
	}

	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &adminapi.Config{
		APIEndpoint:  adminclient.NormalizeEndpoint(config.API),
		ResourcePath: config.ResourcePath,
		SortEncoding: encoding,
		UserAgent:    eventSource + "/" + viper.GetString("version"),
		HTTPTimeout:  timeout,
		RetryMax:     viper.GetInt("retries"),
		RetryWaitMin: constants.DefaultRetryWaitMin,
		RetryWaitMax: constants.DefaultRetryWaitMax,
		Debug:        viper.GetBool("debug"),
		Logger:       logger,
	}, nil
}

func createTokenManager(config *Config, logger adminapi.Logger) auth.TokenManager {
	if config.RefreshToken != "" && config.TokenURL != "" {
		expiry := time.Time{}
		if config.TokenExpiresAt != nil {
			expiry = *config.TokenExpiresAt
		}

		manager := auth.NewConfigTokenManager(&auth.OAuth2Config{
			TokenURL:     resolveTokenURL(config),
			Username:     config.Username,
			RefreshToken: config.RefreshToken,
			AccessToken:  config.Token,
		}, NewConfigPersister(), config.Token, expiry)

		manager.OnPersistError(func(err error) {
			logger.Warn("Failed to save renewed token", map[string]interface{}{"error": err.Error()})
		})

		return manager
	}

	if config.Token != "" {
		return auth.NewStaticTokenManager(config.Token)
	}

	return nil
}

// resolveTokenURL resolves a token URL starting with "/" against the API endpoint.
func resolveTokenURL(config *Config) string {
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = constants.DefaultTokenPath
	}

	if strings.HasPrefix(tokenURL, "/") {
		return adminclient.NormalizeEndpoint(config.API) + tokenURL
	}

	return tokenURL
}

// createPublisher connects to NATS when events.url is configured. Connection
// failures are logged and events are dropped.
func createPublisher(config *Config, logger adminapi.Logger) events.Publisher {
	if config.Events.URL == "" {
		return events.NopPublisher{}
	}

	publisher, err := events.Connect(config.Events.URL, config.Events.SubjectPrefix, eventSource, constants.ShortHTTPTimeout)
	if err != nil {
		logger.Warn("Events disabled", map[string]interface{}{"error": err.Error()})

		return events.NopPublisher{}
	}

	return publisher
}

func publishEvent(ctx context.Context, publisher events.Publisher, logger adminapi.Logger, event events.UserEvent) {
	err := publisher.Publish(ctx, event)
	if err != nil {
		logger.Warn("Failed to publish user event", map[string]interface{}{
			"operation": event.Operation,
			"user_id":   event.UserID.String(),
			"error":     err.Error(),
		})

		return
	}

	logger.Debug("Published user event", map[string]interface{}{
		"operation": event.Operation,
		"user_id":   event.UserID.String(),
	})
}
