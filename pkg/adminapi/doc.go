// Package adminapi provides types, interfaces, and helpers for working with
// the users resource of the admin REST API.
//
// # Overview
//
// The adminapi package defines the domain types (User, Role, FileEntity),
// the request payloads (UserCreateRequest, UserUpdateRequest,
// UsersListRequest) and the UsersClient interface. A concrete implementation
// is provided by the adminclient package, which wires configuration,
// transport and authentication.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
//	  "github.com/fivetwenty-io/adminapi-client/pkg/adminclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := adminclient.NewWithToken(ctx, "https://api.example.com/api/v1", "token")
//	  if err != nil { log.Fatal(err) }
//
//	  page, err := cli.Users().List(ctx, adminapi.NewUsersListRequest(1, 10).WithSort("email", adminapi.SortAsc))
//	  if err != nil { log.Fatal(err) }
//	  _ = page
//	}
//
// # Listing and pagination
//
// The users listing uses infinity pagination: each page carries a
// HasNextPage flag instead of totals. UsersPager walks pages in order and
// ListAll collects them:
//
//	all, err := adminapi.ListAll(ctx, cli.Users(), adminapi.NewUsersListRequest(1, 50), 0)
//
// Only the first sort criterion is sent. SortEncoding selects whether the
// direction travels under "sort" and the field under "order" (the default,
// SortEncodingLegacy) or the other way round (SortEncodingNamed).
//
// # Errors
//
// Every non-2xx response is returned as *HTTPError, with the parsed server
// payload when the body is a JSON object. Helpers such as IsNotFound,
// IsUnprocessable and FieldErrors make it easy to branch on common cases.
// A 2xx body that does not match the expected shape yields *DecodeError, and
// a call aborted through its context yields an error matching ErrCanceled.
//
// # Interceptors
//
// InterceptorChain runs request and response hooks around each call.
// Request hooks may add or replace headers; they cannot change the method,
// the path or the body.
package adminapi
