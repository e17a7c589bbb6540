//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/fakeapi"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminclient"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	localAdminEmail    = "admin@example.com"
	localAdminPassword = "secret1"
	localToken         = "integration-token"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIEndpoint  string
	ResourcePath string
	TokenURL     string
	Username     string
	Password     string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables. Without
// ADMIN_API_ENDPOINT the tests run against an in-process mock API.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIEndpoint:  os.Getenv("ADMIN_API_ENDPOINT"),
		ResourcePath: os.Getenv("ADMIN_RESOURCE_PATH"),
		TokenURL:     os.Getenv("ADMIN_TOKEN_URL"),
		Username:     os.Getenv("ADMIN_USERNAME"),
		Password:     os.Getenv("ADMIN_PASSWORD"),
		Verbose:      os.Getenv("ADMIN_VERBOSE") == "true",
	}
}

// NewTestClient returns a client logged in with the password grant.
func NewTestClient(t *testing.T, config *TestConfig) adminapi.Client {
	t.Helper()

	if config.APIEndpoint == "" {
		startLocalAPI(t, config)
	}

	client, err := adminclient.New(context.Background(), &adminapi.Config{
		APIEndpoint:  config.APIEndpoint,
		ResourcePath: config.ResourcePath,
		TokenURL:     config.TokenURL,
		Username:     config.Username,
		Password:     config.Password,
		Debug:        config.Verbose,
		Logger:       &testLogger{t: t},
	})
	require.NoError(t, err)

	return client
}

func startLocalAPI(t *testing.T, config *TestConfig) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	server := fakeapi.New(fakeapi.WithBcryptCost(bcrypt.MinCost), fakeapi.WithToken(localToken))

	_, err := server.Seed(&adminapi.UserCreateRequest{
		Email:    localAdminEmail,
		Password: localAdminPassword,
		Role:     adminapi.AdminRole(),
	})
	require.NoError(t, err)

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	config.APIEndpoint = httpServer.URL
	config.TokenURL = fakeapi.TokenPath
	config.Username = localAdminEmail
	config.Password = localAdminPassword
}

//nolint:gochecknoglobals // unique suffix across tests
var nameCounter atomic.Int64

// GenerateTestName generates a unique email for test users.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@integration.test", prefix, time.Now().UnixNano(), nameCounter.Add(1))
}

// CleanupUser deletes a user, ignoring not found errors.
func CleanupUser(t *testing.T, client adminapi.Client, id adminapi.ID) {
	t.Helper()

	err := client.Users().Delete(context.Background(), id)
	if err != nil && !adminapi.IsNotFound(err) {
		t.Logf("Warning: failed to cleanup user %s: %v", id, err)
	}
}

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.t.Logf("DEBUG %s %v", msg, fields) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO %s %v", msg, fields) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN %s %v", msg, fields) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR %s %v", msg, fields) }
