package adminapi_test

import (
	"testing"

	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersListRequest_Params(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		request  *adminapi.UsersListRequest
		encoding adminapi.SortEncoding
		expected string
	}{
		{
			name:     "nil request",
			request:  nil,
			expected: "",
		},
		{
			name:     "page and limit only",
			request:  adminapi.NewUsersListRequest(1, 10),
			expected: "page=1&limit=10",
		},
		{
			name:     "email filter",
			request:  adminapi.NewUsersListRequest(2, 5).WithEmail("a@b.co"),
			expected: "page=2&limit=5&email=a%40b.co",
		},
		{
			name:     "empty email is omitted",
			request:  adminapi.NewUsersListRequest(1, 10).WithEmail(""),
			expected: "page=1&limit=10",
		},
		{
			name:     "legacy sort",
			request:  adminapi.NewUsersListRequest(1, 10).WithSort("email", adminapi.SortAsc),
			expected: "page=1&limit=10&sort=asc&order=email",
		},
		{
			name:     "named sort",
			request:  adminapi.NewUsersListRequest(1, 10).WithSort("email", adminapi.SortAsc),
			encoding: adminapi.SortEncodingNamed,
			expected: "page=1&limit=10&sort=email&order=asc",
		},
		{
			name: "only first sort entry is sent",
			request: adminapi.NewUsersListRequest(1, 10).
				WithSort("firstName", adminapi.SortDesc).
				WithSort("email", adminapi.SortAsc),
			expected: "page=1&limit=10&sort=desc&order=firstName",
		},
		{
			name: "filter and sort",
			request: adminapi.NewUsersListRequest(3, 20).
				WithEmail("x@y.z").
				WithSort("id", adminapi.SortDesc),
			expected: "page=3&limit=20&email=x%40y.z&sort=desc&order=id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.request.Params(tt.encoding).Encode())
		})
	}
}

func TestQueryParams_ToValuesAndGet(t *testing.T) {
	t.Parallel()

	params := adminapi.NewUsersListRequest(1, 10).
		WithEmail("a@b.co").
		WithSort("email", adminapi.SortAsc).
		Params(adminapi.SortEncodingLegacy)

	values := params.ToValues()
	assert.Equal(t, "1", values.Get("page"))
	assert.Equal(t, "10", values.Get("limit"))
	assert.Equal(t, "a@b.co", values.Get("email"))
	assert.Equal(t, "asc", values.Get("sort"))
	assert.Equal(t, "email", values.Get("order"))

	value, ok := params.Get("order")
	assert.True(t, ok)
	assert.Equal(t, "email", value)

	_, ok = params.Get("missing")
	assert.False(t, ok)
}

func TestParseSortEncoding(t *testing.T) {
	t.Parallel()

	encoding, err := adminapi.ParseSortEncoding("")
	require.NoError(t, err)
	assert.Equal(t, adminapi.SortEncodingLegacy, encoding)

	encoding, err = adminapi.ParseSortEncoding(" Named ")
	require.NoError(t, err)
	assert.Equal(t, adminapi.SortEncodingNamed, encoding)
	assert.Equal(t, "named", encoding.String())

	_, err = adminapi.ParseSortEncoding("sideways")
	require.ErrorIs(t, err, adminapi.ErrInvalidSortEncoding)
}

func TestExportedDefaults(t *testing.T) {
	t.Parallel()

	params := adminapi.NewUsersListRequest(adminapi.DefaultPage, adminapi.DefaultPageSize).
		WithEmail("a@b.co").
		WithSort("email", adminapi.SortDesc).
		Params(adminapi.SortEncodingNamed)

	page, ok := params.Get(adminapi.QueryKeyPage)
	require.True(t, ok)
	assert.Equal(t, "1", page)

	limit, _ := params.Get(adminapi.QueryKeyLimit)
	assert.Equal(t, "10", limit)

	email, _ := params.Get(adminapi.QueryKeyEmail)
	assert.Equal(t, "a@b.co", email)

	sortField, _ := params.Get(adminapi.QueryKeySort)
	assert.Equal(t, "email", sortField)

	order, _ := params.Get(adminapi.QueryKeyOrder)
	assert.Equal(t, "desc", order)

	assert.Equal(t, adminapi.SortDirection("asc"), adminapi.SortAsc)
	assert.Equal(t, 1, adminapi.RoleIDAdmin)
	assert.Equal(t, 2, adminapi.RoleIDUser)
	assert.Equal(t, 100, adminapi.DefaultMaxPages)
}
