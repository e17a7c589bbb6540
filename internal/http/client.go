package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/auth"
	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the HTTP transport shared by the resource clients.
type Client struct {
	baseURL        string
	httpClient     *retryablehttp.Client
	tokenManager   auth.TokenManager
	logger         adminapi.Logger
	debug          bool
	userAgent      string
	timeout        time.Duration
	defaultHeaders map[string]string
	interceptors   *adminapi.InterceptorChain
}

// Request describes a single API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// RawQuery is sent verbatim and takes precedence over Query.
	RawQuery string
	Body     interface{}
	Headers  map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger adminapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig enables transport retries for 5xx, 429 and connection errors.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = maxRetries

		if waitMin > 0 {
			c.httpClient.RetryWaitMin = waitMin
		}

		if waitMax > 0 {
			c.httpClient.RetryWaitMax = waitMax
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *nethttp.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithTimeout bounds each call, on top of the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithDefaultHeaders sets headers sent with every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.defaultHeaders = headers
	}
}

// WithInterceptors sets the interceptor chain.
func WithInterceptors(chain *adminapi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a new HTTP client. tokenManager may be nil for
// unauthenticated requests. Retries are disabled unless WithRetryConfig is given.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient.RequestLogHook = client.logRetry

	return client
}

// BaseURL returns the URL every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a request. A non-2xx response is returned together with an
// *adminapi.HTTPError.
//
//nolint:funlen,cyclop // request assembly is kept in one place
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if ctx.Err() != nil {
		return nil, adminapi.CanceledError(ctx)
	}

	var bodyBytes []byte

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		bodyBytes = data
	}

	headers, interceptorReq, err := c.buildHeaders(ctx, req, bodyBytes)
	if err != nil {
		return nil, err
	}

	// callerCtx decides cancellation; an expired HTTPTimeout is a transport error.
	callerCtx := ctx

	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rawBody interface{}
	if bodyBytes != nil {
		rawBody = bodyBytes
	}

	requestURL := c.buildURL(req)

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, requestURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header = headers

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    requestURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if callerCtx.Err() != nil {
			err = adminapi.CanceledError(callerCtx)
		} else {
			err = fmt.Errorf("executing request: %w", err)
		}

		_ = c.runResponseInterceptors(ctx, interceptorReq, &adminapi.Response{Error: err})

		return nil, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if callerCtx.Err() != nil {
			return nil, adminapi.CanceledError(callerCtx)
		}

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	var httpErr *adminapi.HTTPError
	if resp.StatusCode < constants.HTTPStatusSuccessMin || resp.StatusCode > constants.HTTPStatusSuccessMax {
		httpErr = adminapi.NewHTTPError(resp.StatusCode, respBody)
	}

	err = c.runResponseInterceptors(ctx, interceptorReq, &adminapi.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})

	switch {
	case err != nil && httpErr != nil:
		return resp, fmt.Errorf("%w: %w", httpErr, err)
	case err != nil:
		return resp, err
	case httpErr != nil:
		return resp, httpErr
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: nethttp.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: nethttp.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: nethttp.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: nethttp.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: nethttp.MethodDelete,
		Path:   path,
	})
}

func (c *Client) buildURL(req *Request) string {
	requestURL := c.baseURL + req.Path

	switch {
	case req.RawQuery != "":
		requestURL += "?" + req.RawQuery
	case len(req.Query) > 0:
		requestURL += "?" + req.Query.Encode()
	}

	return requestURL
}

// buildHeaders merges headers in order: fixed, defaults, auth, request
// interceptors, per-call. Later sources win.
//
// The returned interceptor request is nil without interceptors; its Metadata
// is handed on to the response interceptors.
func (c *Client) buildHeaders(ctx context.Context, req *Request, body []byte) (nethttp.Header, *adminapi.Request, error) {
	headers := make(nethttp.Header)
	headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	headers.Set(constants.HeaderUserAgent, c.userAgent)

	if body != nil {
		headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	for key, value := range c.defaultHeaders {
		headers.Set(key, value)
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, adminapi.CanceledError(ctx)
			}

			return nil, nil, fmt.Errorf("getting auth token: %w", err)
		}

		headers.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	var interceptorReq *adminapi.Request

	if c.interceptors != nil {
		interceptorReq = &adminapi.Request{
			Method:   req.Method,
			Path:     req.Path,
			Headers:  headers,
			Body:     body,
			Metadata: make(map[string]interface{}),
		}

		err := c.interceptors.ExecuteRequestInterceptors(ctx, interceptorReq)
		if err != nil {
			return nil, nil, fmt.Errorf("running request interceptors: %w", err)
		}

		if interceptorReq.Headers != nil {
			headers = interceptorReq.Headers
		}
	}

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return headers, interceptorReq, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, interceptorReq *adminapi.Request, resp *adminapi.Response) error {
	if c.interceptors == nil || interceptorReq == nil {
		return nil
	}

	err := c.interceptors.ExecuteResponseInterceptors(ctx, interceptorReq, resp)
	if err != nil {
		return fmt.Errorf("running response interceptors: %w", err)
	}

	return nil
}

// logRetry reports retry attempts; the first attempt is not logged.
func (c *Client) logRetry(_ retryablehttp.Logger, req *nethttp.Request, attempt int) {
	if attempt == 0 || c.logger == nil {
		return
	}

	c.logger.Warn("Retrying HTTP request", map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.String(),
		"attempt": attempt,
	})
}

// DecodeJSON decodes a successful response body into a new T. An empty or
// null body and malformed JSON are reported as *adminapi.DecodeError.
func DecodeJSON[T any](resp *Response, target string) (*T, error) {
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &adminapi.DecodeError{Target: target, Body: resp.Body, Err: adminapi.ErrEmptyBody}
	}

	var result T

	err := json.Unmarshal(trimmed, &result)
	if err != nil {
		return nil, &adminapi.DecodeError{Target: target, Body: resp.Body, Err: err}
	}

	return &result, nil
}
