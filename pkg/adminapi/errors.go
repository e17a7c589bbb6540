package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrCanceled            = errors.New("request canceled")
	ErrEmptyBody           = errors.New("empty response body")
	ErrMissingListData     = errors.New("list response has no data array")
	ErrInvalidID           = errors.New("invalid user id")
	ErrUserIDRequired      = errors.New("user id is required")
	ErrRequestBodyRequired = errors.New("request body is required")
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrTokenURLRequired    = errors.New("token URL is required for password or client credentials authentication")
	ErrInvalidSortEncoding = errors.New("invalid sort encoding")
	ErrNoTokenManager      = errors.New("no token manager configured")
	ErrInterceptorFailed   = errors.New("interceptor failed")
)

// ErrorPayload is the structured body of an error response.
//
// Decoding is lenient: status may come as "status" or "statusCode" and only
// numeric values are kept, message may be a string or a list of strings, and
// errors is kept only when it is an object.
type ErrorPayload struct {
	Status    int                    `json:"status,omitempty"  yaml:"status,omitempty"`
	Message   string                 `json:"message,omitempty" yaml:"message,omitempty"`
	ErrorText string                 `json:"error,omitempty"   yaml:"error,omitempty"`
	Errors    map[string]interface{} `json:"errors,omitempty"  yaml:"errors,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ErrorPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	*p = ErrorPayload{
		Status:    payloadStatus(raw["status"]),
		Message:   payloadText(raw["message"]),
		ErrorText: payloadText(raw["error"]),
	}

	if p.Status == 0 {
		p.Status = payloadStatus(raw["statusCode"])
	}

	var fields map[string]interface{}
	if json.Unmarshal(raw["errors"], &fields) == nil {
		p.Errors = fields
	}

	return nil
}

func payloadStatus(value json.RawMessage) int {
	var status int
	if json.Unmarshal(value, &status) != nil {
		return 0
	}

	return status
}

// payloadText reads a string, a list of strings joined with "; ", or any
// other scalar as its JSON text.
func payloadText(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var text string
	if json.Unmarshal(trimmed, &text) == nil {
		return text
	}

	var items []interface{}
	if json.Unmarshal(trimmed, &items) == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprint(item))
		}

		return strings.Join(parts, "; ")
	}

	if trimmed[0] == '{' {
		return ""
	}

	return string(trimmed)
}

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	StatusCode int
	// Body is the raw response body.
	Body []byte
	// Payload is the parsed body; nil when the body is not a JSON object.
	Payload *ErrorPayload
}

// NewHTTPError builds an HTTPError, parsing body as JSON when possible.
func NewHTTPError(statusCode int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: statusCode,
		Body:       body,
	}

	payload, err := ParseErrorPayload(body)
	if err == nil {
		httpErr.Payload = payload
	}

	return httpErr
}

// ParseErrorPayload parses an error response body.
func ParseErrorPayload(data []byte) (*ErrorPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("failed to unmarshal error payload: %w", ErrEmptyBody)
	}

	var payload ErrorPayload

	err := json.Unmarshal(trimmed, &payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal error payload: %w", err)
	}

	return &payload, nil
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message())

	fields := e.FieldErrors()
	if len(fields) == 0 {
		return msg
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+fields[key])
	}

	return msg + " (" + strings.Join(parts, ", ") + ")"
}

// Message returns the server message, the raw body text, or the status text.
func (e *HTTPError) Message() string {
	if e.Payload != nil {
		if e.Payload.Message != "" {
			return e.Payload.Message
		}

		if e.Payload.ErrorText != "" {
			return e.Payload.ErrorText
		}
	}

	if e.Payload == nil {
		if text := strings.TrimSpace(string(e.Body)); text != "" {
			return text
		}
	}

	return http.StatusText(e.StatusCode)
}

// FieldErrors returns the validation errors keyed by field.
func (e *HTTPError) FieldErrors() map[string]string {
	if e.Payload == nil || len(e.Payload.Errors) == 0 {
		return nil
	}

	fields := make(map[string]string, len(e.Payload.Errors))
	for key, value := range e.Payload.Errors {
		fields[key] = fmt.Sprint(value)
	}

	return fields
}

// DecodeError is returned when a successful response body cannot be decoded
// into the expected type.
type DecodeError struct {
	Target string
	Body   []byte
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Target, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AsHTTPError extracts the HTTPError from err.
func AsHTTPError(err error) (*HTTPError, bool) {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr, true
	}

	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.StatusCode
	}

	return 0
}

// FieldErrors returns the validation errors carried by err.
func FieldErrors(err error) map[string]string {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.FieldErrors()
	}

	return nil
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsUnprocessable checks if the error is a 422 validation response.
func IsUnprocessable(err error) bool {
	return StatusCode(err) == http.StatusUnprocessableEntity
}

// IsDecodeError checks if the error came from decoding a response body.
func IsDecodeError(err error) bool {
	decodeErr := &DecodeError{}

	return errors.As(err, &decodeErr)
}

// IsCanceled checks if the call was aborted through its context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// CanceledError wraps the context error of an aborted call.
func CanceledError(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
}
