package fakeapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/fakeapi"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newServer(t *testing.T, opts ...fakeapi.Option) *fakeapi.Server {
	t.Helper()

	opts = append([]fakeapi.Option{fakeapi.WithBcryptCost(bcrypt.MinCost)}, opts...)

	return fakeapi.New(opts...)
}

func seed(t *testing.T, server *fakeapi.Server, email, firstName string) adminapi.User {
	t.Helper()

	user, err := server.Seed(&adminapi.UserCreateRequest{
		Email:     email,
		Password:  "secret1",
		FirstName: firstName,
	})
	require.NoError(t, err)

	return user
}

func do(t *testing.T, server *fakeapi.Server, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, target, reader)
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)

	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var decoded map[string]interface{}

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))

	return decoded
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestServer_List(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	seed(t, server, "carol@example.com", "Carol")
	seed(t, server, "alice@example.com", "Alice")
	seed(t, server, "bob@example.com", "Bob")

	t.Run("default page", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var page adminapi.UsersListResponse

		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		require.Len(t, page.Data, 3)
		assert.False(t, page.HasNextPage)
		assert.Equal(t, adminapi.ID("1"), page.Data[0].ID)
	})

	t.Run("numeric ids", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth?limit=1", nil)
		assert.Contains(t, recorder.Body.String(), `"id":1,`)
	})

	t.Run("paging", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth?page=1&limit=2", nil)

		var page adminapi.UsersListResponse

		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		assert.Len(t, page.Data, 2)
		assert.True(t, page.HasNextPage)

		recorder = do(t, server, http.MethodGet, "/auth?page=2&limit=2", nil)
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		assert.Len(t, page.Data, 1)
		assert.False(t, page.HasNextPage)

		recorder = do(t, server, http.MethodGet, "/auth?page=5&limit=2", nil)
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		assert.Empty(t, page.Data)
	})

	t.Run("legacy sort", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth?sort=desc&order=firstName", nil)

		var page adminapi.UsersListResponse

		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		require.Len(t, page.Data, 3)
		assert.Equal(t, "Carol", page.Data[0].FirstName)
		assert.Equal(t, "Alice", page.Data[2].FirstName)
	})

	t.Run("named sort", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth?sort=email&order=asc", nil)

		var page adminapi.UsersListResponse

		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		require.Len(t, page.Data, 3)
		assert.Equal(t, "alice@example.com", page.Data[0].Email)
	})

	t.Run("email filter", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth?email=BOB@example.com", nil)

		var page adminapi.UsersListResponse

		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Bob", page.Data[0].FirstName)
	})

	t.Run("invalid query", func(t *testing.T) {
		t.Parallel()

		recorder := do(t, server, http.MethodGet, "/auth?page=0&sort=sideways&order=email", nil)
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		errorsField, ok := decodeBody(t, recorder)["errors"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errorsField, "page")
		assert.Contains(t, errorsField, "sort")
	})
}

func TestServer_CRUD(t *testing.T) {
	t.Parallel()

	server := newServer(t, fakeapi.WithResourcePath("/api/v1/users/"))

	recorder := do(t, server, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":     "Jane@Example.com",
		"password":  "secret1",
		"firstName": "Jane",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created adminapi.User

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, "jane@example.com", created.Email)
	require.NotNil(t, created.Role)
	assert.Equal(t, adminapi.UserRole().ID, created.Role.ID)
	assert.NotContains(t, recorder.Body.String(), "password")

	recorder = do(t, server, http.MethodGet, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = do(t, server, http.MethodPatch, "/api/v1/users/"+created.ID.String(), map[string]interface{}{
		"lastName": "Doe",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var updated adminapi.User

	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &updated))
	assert.Equal(t, "Jane", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)

	recorder = do(t, server, http.MethodDelete, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.String())

	recorder = do(t, server, http.MethodGet, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "not found", decodeBody(t, recorder)["message"])

	recorder = do(t, server, http.MethodDelete, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestServer_Validation(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	existing := seed(t, server, "taken@example.com", "Taken")
	other := seed(t, server, "other@example.com", "Other")

	recorder := do(t, server, http.MethodPost, "/auth", map[string]interface{}{
		"email":    "TAKEN@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	body := decodeBody(t, recorder)
	assert.InDelta(t, 422, body["status"], 0)
	assert.Equal(t, map[string]interface{}{"email": "emailAlreadyExists"}, body["errors"])

	recorder = do(t, server, http.MethodPost, "/auth", map[string]interface{}{
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Equal(t, map[string]interface{}{"email": "invalid", "password": "tooShort"}, decodeBody(t, recorder)["errors"])

	recorder = do(t, server, http.MethodPatch, "/auth/"+other.ID.String(), map[string]interface{}{
		"email": existing.Email,
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	recorder = do(t, server, http.MethodPatch, "/auth/"+other.ID.String(), map[string]interface{}{
		"password": "123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	request := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader("{"))
	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestServer_UUIDs(t *testing.T) {
	t.Parallel()

	server := newServer(t, fakeapi.WithUUIDs())
	user := seed(t, server, "uuid@example.com", "U")

	assert.Len(t, user.ID.String(), 36)

	recorder := do(t, server, http.MethodGet, "/auth/"+user.ID.String(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"`+user.ID.String()+`"`)
}

func TestServer_TokenAuth(t *testing.T) {
	t.Parallel()

	server := newServer(t, fakeapi.WithToken("mock-token"))
	seed(t, server, "admin@example.com", "Admin")

	recorder := do(t, server, http.MethodGet, "/auth", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "unauthorized", decodeBody(t, recorder)["message"])

	request := httptest.NewRequest(http.MethodGet, "/auth", nil)
	request.Header.Set("Authorization", "Bearer mock-token")

	response := httptest.NewRecorder()
	server.Handler().ServeHTTP(response, request)
	assert.Equal(t, http.StatusOK, response.Code)

	issue := func(form url.Values) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodPost, fakeapi.TokenPath, strings.NewReader(form.Encode()))
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		response := httptest.NewRecorder()
		server.Handler().ServeHTTP(response, request)

		return response
	}

	response = issue(url.Values{"grant_type": {"password"}, "username": {"admin@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "mock-token", decodeBody(t, response)["access_token"])

	response = issue(url.Values{"grant_type": {"password"}, "username": {"admin@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, response.Code)
	assert.Equal(t, "invalid_grant", decodeBody(t, response)["error"])

	response = issue(url.Values{"grant_type": {"client_credentials"}})
	assert.Equal(t, "unsupported_grant_type", decodeBody(t, response)["error"])
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	server := newServer(t)
	seed(t, server, "serve@example.com", "Serve")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Serve(ctx, listener)
	}()

	response, err := http.Get("http://" + listener.Addr().String() + "/auth")
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
