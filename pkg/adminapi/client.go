package adminapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// UsersClient performs the operations of the users resource.
type UsersClient interface {
	List(ctx context.Context, request *UsersListRequest, opts ...RequestOption) (*UsersListResponse, error)
	Get(ctx context.Context, id ID, opts ...RequestOption) (*User, error)
	Create(ctx context.Context, request *UserCreateRequest, opts ...RequestOption) (*User, error)
	Update(ctx context.Context, id ID, request *UserUpdateRequest, opts ...RequestOption) (*User, error)
	Delete(ctx context.Context, id ID, opts ...RequestOption) error
}

// Client provides access to the resource clients of the admin API.
type Client interface {
	Users() UsersClient
	GetToken(ctx context.Context) (string, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Authentication precedence
//
//  1. TokenSource: used as is.
//  2. AccessToken: sent as a static Bearer token.
//  3. ClientID/ClientSecret with TokenURL: OAuth2 client_credentials grant.
//  4. Username/Password with TokenURL: OAuth2 password grant.
//  5. No credentials: requests are sent without authentication.
//
// # Timeouts, retries and cancellation
//
// Calls are bounded by the context passed to each operation. HTTPTimeout adds
// a per-request limit when set. Retries are performed by the transport only
// when RetryMax > 0; the default is a single attempt.
type Config struct {
	// APIEndpoint is the API root, e.g. "https://api.example.com/api/v1".
	// adminclient.New trims a trailing slash and adds "https://" when no scheme is present.
	APIEndpoint string
	// ResourcePath is the users resource path under APIEndpoint. Defaults to "/auth".
	ResourcePath string

	// AccessToken is sent directly as a Bearer token.
	AccessToken string
	// TokenSource supplies tokens; it takes precedence over every other credential.
	TokenSource oauth2.TokenSource
	// ClientID and ClientSecret select the OAuth2 client_credentials grant.
	ClientID     string
	ClientSecret string
	// Username and Password select the OAuth2 password grant.
	Username string
	Password string
	// RefreshToken lets the OAuth2 manager renew access tokens.
	RefreshToken string
	// TokenURL is the OAuth2 token endpoint.
	TokenURL string

	// HTTPClient replaces the underlying *http.Client.
	HTTPClient *http.Client
	// HTTPTimeout is an optional per-request timeout.
	HTTPTimeout time.Duration
	// RetryMax is the number of retries for 5xx, 429 and connection errors. 0 disables retries.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// DefaultHeaders are sent with every request; per-call options override them.
	DefaultHeaders map[string]string
	// Interceptors run around every request.
	Interceptors *InterceptorChain

	// SortEncoding selects the sort query-key mapping. Defaults to SortEncodingLegacy.
	SortEncoding SortEncoding

	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger
}

// RequestOptions are per-call request overrides.
type RequestOptions struct {
	Headers map[string]string
}

// RequestOption customizes a single call. Options can add or replace headers;
// they never change the method or the body chosen by the operation.
type RequestOption func(*RequestOptions)

// WithHeader sets a header for a single call.
func WithHeader(key, value string) RequestOption {
	return func(opts *RequestOptions) {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}

		opts.Headers[http.CanonicalHeaderKey(key)] = value
	}
}

// WithHeaders sets several headers for a single call.
func WithHeaders(headers map[string]string) RequestOption {
	return func(opts *RequestOptions) {
		for key, value := range headers {
			WithHeader(key, value)(opts)
		}
	}
}

// WithBearerToken overrides the Authorization header for a single call.
func WithBearerToken(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// ApplyRequestOptions folds opts in order; later options win.
func ApplyRequestOptions(opts ...RequestOption) *RequestOptions {
	options := &RequestOptions{}

	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	return options
}
