package adminapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role ids understood by the users API.
const (
	RoleIDAdmin = 1
	RoleIDUser  = 2
)

// ID is a user identifier. The API sends it either as a JSON number or a
// JSON string; it is always held as a string.
type ID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""

		return nil
	}

	var str string

	err := json.Unmarshal(data, &str)
	if err == nil {
		*id = ID(str)

		return nil
	}

	var num json.Number

	err = json.Unmarshal(data, &num)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, trimmed)
	}

	*id = ID(num.String())

	return nil
}

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// FileEntity references an uploaded file, such as a user photo.
type FileEntity struct {
	ID   string `json:"id"             yaml:"id"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Role is the role assigned to a user.
type Role struct {
	ID   int    `json:"id"             yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// AdminRole returns the administrator role reference.
func AdminRole() *Role {
	return &Role{ID: RoleIDAdmin, Name: "Admin"}
}

// UserRole returns the regular user role reference.
func UserRole() *Role {
	return &Role{ID: RoleIDUser, Name: "User"}
}

// User is the read model of the users resource.
type User struct {
	ID        ID          `json:"id"                  yaml:"id"`
	Email     string      `json:"email"               yaml:"email"`
	FirstName string      `json:"firstName"           yaml:"first_name"`
	LastName  string      `json:"lastName"            yaml:"last_name"`
	Photo     *FileEntity `json:"photo,omitempty"     yaml:"photo,omitempty"`
	Role      *Role       `json:"role,omitempty"      yaml:"role,omitempty"`
	Provider  string      `json:"provider,omitempty"  yaml:"provider,omitempty"`
	SocialID  string      `json:"socialId,omitempty"  yaml:"social_id,omitempty"`
	CreatedAt *time.Time  `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time  `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
	DeletedAt *time.Time  `json:"deletedAt,omitempty" yaml:"deleted_at,omitempty"`
}

// UserCreateRequest is the payload for creating a user.
type UserCreateRequest struct {
	Email     string      `json:"email"           yaml:"email"`
	Password  string      `json:"password"        yaml:"-"`
	FirstName string      `json:"firstName"       yaml:"first_name"`
	LastName  string      `json:"lastName"        yaml:"last_name"`
	Photo     *FileEntity `json:"photo,omitempty" yaml:"photo,omitempty"`
	Role      *Role       `json:"role,omitempty"  yaml:"role,omitempty"`
}

// UserUpdateRequest is a partial update. Nil fields are left untouched by the server.
type UserUpdateRequest struct {
	Email     *string     `json:"email,omitempty"     yaml:"email,omitempty"`
	Password  *string     `json:"password,omitempty"  yaml:"-"`
	FirstName *string     `json:"firstName,omitempty" yaml:"first_name,omitempty"`
	LastName  *string     `json:"lastName,omitempty"  yaml:"last_name,omitempty"`
	Photo     *FileEntity `json:"photo,omitempty"     yaml:"photo,omitempty"`
	Role      *Role       `json:"role,omitempty"      yaml:"role,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (r *UserUpdateRequest) IsEmpty() bool {
	return r == nil ||
		(r.Email == nil && r.Password == nil && r.FirstName == nil &&
			r.LastName == nil && r.Photo == nil && r.Role == nil)
}

// InfinityPagination is a page of resources with a flag telling whether
// another page follows.
type InfinityPagination[T any] struct {
	Data        []T  `json:"data"        yaml:"data"`
	HasNextPage bool `json:"hasNextPage" yaml:"has_next_page"`
}

// UnmarshalJSON rejects payloads without a data array.
func (p *InfinityPagination[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Data        *[]T  `json:"data"`
		HasNextPage *bool `json:"hasNextPage"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err //nolint:wrapcheck // surfaced through DecodeError
	}

	if raw.Data == nil {
		return ErrMissingListData
	}

	p.Data = *raw.Data
	p.HasNextPage = raw.HasNextPage != nil && *raw.HasNextPage

	return nil
}

// UsersListResponse is a page of users.
type UsersListResponse = InfinityPagination[User]

// String returns a pointer to v, for building partial updates.
func String(v string) *string {
	return &v
}
