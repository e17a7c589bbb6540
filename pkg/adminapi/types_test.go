package adminapi_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected adminapi.ID
		wantErr  bool
	}{
		{name: "number", input: `42`, expected: "42"},
		{name: "string", input: `"8b4c7a8e-2d1b-4a57-9b6f-1f0e2c3d4e5f"`, expected: "8b4c7a8e-2d1b-4a57-9b6f-1f0e2c3d4e5f"},
		{name: "null", input: `null`, expected: ""},
		{name: "object", input: `{"id":1}`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var id adminapi.ID

			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				require.ErrorIs(t, err, adminapi.ErrInvalidID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestUser_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	body := `{
		"id": 7,
		"email": "jane@example.com",
		"firstName": "Jane",
		"lastName": "Doe",
		"provider": "email",
		"role": {"id": 1, "name": "Admin"},
		"photo": {"id": "f1", "path": "/files/f1.png"},
		"createdAt": "2024-05-01T10:00:00.000Z",
		"unknownField": "ignored"
	}`

	var user adminapi.User

	err := json.Unmarshal([]byte(body), &user)
	require.NoError(t, err)

	assert.Equal(t, adminapi.ID("7"), user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	require.NotNil(t, user.Role)
	assert.Equal(t, adminapi.RoleIDAdmin, user.Role.ID)
	require.NotNil(t, user.Photo)
	assert.Equal(t, "/files/f1.png", user.Photo.Path)
	require.NotNil(t, user.CreatedAt)
	assert.Equal(t, 2024, user.CreatedAt.Year())
	assert.Nil(t, user.DeletedAt)
}

func TestUsersListResponse_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("page with next", func(t *testing.T) {
		t.Parallel()

		var page adminapi.UsersListResponse

		err := json.Unmarshal([]byte(`{"data":[{"id":1,"email":"a@b.co"}],"hasNextPage":true}`), &page)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, adminapi.ID("1"), page.Data[0].ID)
		assert.True(t, page.HasNextPage)
	})

	t.Run("missing hasNextPage means last page", func(t *testing.T) {
		t.Parallel()

		var page adminapi.UsersListResponse

		err := json.Unmarshal([]byte(`{"data":[]}`), &page)
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.False(t, page.HasNextPage)
	})

	t.Run("missing data", func(t *testing.T) {
		t.Parallel()

		var page adminapi.UsersListResponse

		err := json.Unmarshal([]byte(`{"items":[],"hasNextPage":false}`), &page)
		require.ErrorIs(t, err, adminapi.ErrMissingListData)
	})
}

func TestUserUpdateRequest(t *testing.T) {
	t.Parallel()

	var nilRequest *adminapi.UserUpdateRequest
	assert.True(t, nilRequest.IsEmpty())
	assert.True(t, (&adminapi.UserUpdateRequest{}).IsEmpty())

	update := &adminapi.UserUpdateRequest{FirstName: adminapi.String("Janet")}
	assert.False(t, update.IsEmpty())

	data, err := json.Marshal(update)
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Janet"}`, string(data))
}

func TestRoles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, adminapi.AdminRole().ID)
	assert.Equal(t, 2, adminapi.UserRole().ID)
}
