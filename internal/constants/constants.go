package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout used by the CLI when none is configured.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token requests.
	ShortHTTPTimeout = 10 * time.Second

	// ShutdownTimeout bounds the graceful shutdown of the mock server.
	ShutdownTimeout = 5 * time.Second
)

// Retry limits for the transport layer. Retries are disabled unless RetryMax > 0.
const (
	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusSuccessMin is the lowest status considered successful.
	HTTPStatusSuccessMin = 200

	// HTTPStatusSuccessMax is the highest status considered successful.
	HTTPStatusSuccessMax = 299
)

// API paths of the users resource.
const (
	// DefaultResourcePath is the path of the users resource under the API endpoint.
	DefaultResourcePath = "/auth"

	// DefaultTokenPath is the OAuth2 token endpoint path under the API endpoint.
	DefaultTokenPath = "/oauth/token"
)

// Request headers.
const (
	HeaderAccept        = "Accept"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"

	// DefaultUserAgent is sent when the configuration does not override it.
	DefaultUserAgent = "adminapi-client-go"
)

// StandardPageSize is used when fetching all pages.
const StandardPageSize = 50

// Display and output.
const (
	// NotAvailable is printed for empty table cells.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in output.
	MaskedSecret = "***"

	// FormatJSON selects JSON output.
	FormatJSON = "json"

	// FormatYAML selects YAML output.
	FormatYAML = "yaml"

	// FormatTable selects table output.
	FormatTable = "table"

	// JSONIndentSize is the indentation of JSON and YAML output.
	JSONIndentSize = 2
)

// Operations reported in audit events.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Event subjects.
const (
	// DefaultEventSubjectPrefix prefixes every published user event subject.
	DefaultEventSubjectPrefix = "users"
)
