package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/adminapi-client/internal/http"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
)

// UsersClient implements adminapi.UsersClient.
type UsersClient struct {
	httpClient   *internalhttp.Client
	basePath     string
	sortEncoding adminapi.SortEncoding
}

var _ adminapi.UsersClient = (*UsersClient)(nil)

// UsersOption configures a UsersClient.
type UsersOption func(*UsersClient)

// WithResourcePath sets the path of the users resource. An empty path keeps the default.
func WithResourcePath(path string) UsersOption {
	return func(c *UsersClient) {
		path = strings.TrimRight(strings.TrimSpace(path), "/")
		if path == "" {
			return
		}

		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		c.basePath = path
	}
}

// WithSortEncoding sets how sort criteria are encoded in list queries.
func WithSortEncoding(encoding adminapi.SortEncoding) UsersOption {
	return func(c *UsersClient) {
		c.sortEncoding = encoding
	}
}

// NewUsersClient creates a new users client.
func NewUsersClient(httpClient *internalhttp.Client, opts ...UsersOption) *UsersClient {
	client := &UsersClient{
		httpClient:   httpClient,
		basePath:     constants.DefaultResourcePath,
		sortEncoding: adminapi.SortEncodingLegacy,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BasePath returns the path of the users resource.
func (c *UsersClient) BasePath() string {
	return c.basePath
}

// List implements adminapi.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, request *adminapi.UsersListRequest, opts ...adminapi.RequestOption) (*adminapi.UsersListResponse, error) {
	if request == nil {
		request = adminapi.NewUsersListRequest(adminapi.DefaultPage, adminapi.DefaultPageSize)
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:   http.MethodGet,
		Path:     c.basePath,
		RawQuery: request.Params(c.sortEncoding).Encode(),
		Headers:  adminapi.ApplyRequestOptions(opts...).Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	list, err := internalhttp.DecodeJSON[adminapi.UsersListResponse](resp, "users list")
	if err != nil {
		return nil, fmt.Errorf("parsing users list response: %w", err)
	}

	return list, nil
}

// Get implements adminapi.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, id adminapi.ID, opts ...adminapi.RequestOption) (*adminapi.User, error) {
	path, err := c.userPath(id)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodGet,
		Path:    path,
		Headers: adminapi.ApplyRequestOptions(opts...).Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	user, err := internalhttp.DecodeJSON[adminapi.User](resp, "user")
	if err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return user, nil
}

// Create implements adminapi.UsersClient.Create.
func (c *UsersClient) Create(ctx context.Context, request *adminapi.UserCreateRequest, opts ...adminapi.RequestOption) (*adminapi.User, error) {
	if request == nil {
		return nil, fmt.Errorf("creating user: %w", adminapi.ErrRequestBodyRequired)
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodPost,
		Path:    c.basePath,
		Body:    request,
		Headers: adminapi.ApplyRequestOptions(opts...).Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	user, err := internalhttp.DecodeJSON[adminapi.User](resp, "user")
	if err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return user, nil
}

// Update implements adminapi.UsersClient.Update.
func (c *UsersClient) Update(ctx context.Context, id adminapi.ID, request *adminapi.UserUpdateRequest, opts ...adminapi.RequestOption) (*adminapi.User, error) {
	path, err := c.userPath(id)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	if request == nil {
		return nil, fmt.Errorf("updating user: %w", adminapi.ErrRequestBodyRequired)
	}

	resp, err := c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodPatch,
		Path:    path,
		Body:    request,
		Headers: adminapi.ApplyRequestOptions(opts...).Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	user, err := internalhttp.DecodeJSON[adminapi.User](resp, "user")
	if err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return user, nil
}

// Delete implements adminapi.UsersClient.Delete. The response body is ignored.
func (c *UsersClient) Delete(ctx context.Context, id adminapi.ID, opts ...adminapi.RequestOption) error {
	path, err := c.userPath(id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	_, err = c.httpClient.Do(ctx, &internalhttp.Request{
		Method:  http.MethodDelete,
		Path:    path,
		Headers: adminapi.ApplyRequestOptions(opts...).Headers,
	})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

func (c *UsersClient) userPath(id adminapi.ID) (string, error) {
	if strings.TrimSpace(id.String()) == "" {
		return "", adminapi.ErrUserIDRequired
	}

	return c.basePath + "/" + url.PathEscape(id.String()), nil
}
