package adminapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query keys of a users listing.
const (
	QueryKeyPage  = "page"
	QueryKeyLimit = "limit"
	QueryKeyEmail = "email"
	QueryKeySort  = "sort"
	QueryKeyOrder = "order"
)

// SortDirection is the direction of a sort criterion.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortItem is a single sort criterion.
type SortItem struct {
	OrderBy string        `json:"orderBy" yaml:"order_by"`
	Order   SortDirection `json:"order"   yaml:"order"`
}

// UsersFilters narrows a users listing.
type UsersFilters struct {
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// UsersListRequest describes one page of a users listing.
//
// Page and Limit are expected to be >= 1; they are sent as given.
// Only the first Sort entry is sent to the server.
type UsersListRequest struct {
	Page    int           `json:"page"              yaml:"page"`
	Limit   int           `json:"limit"             yaml:"limit"`
	Filters *UsersFilters `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sort    []SortItem    `json:"sort,omitempty"    yaml:"sort,omitempty"`
}

// NewUsersListRequest creates a list request for the given page.
func NewUsersListRequest(page, limit int) *UsersListRequest {
	return &UsersListRequest{
		Page:  page,
		Limit: limit,
	}
}

// WithEmail sets the email filter.
func (r *UsersListRequest) WithEmail(email string) *UsersListRequest {
	if r.Filters == nil {
		r.Filters = &UsersFilters{}
	}

	r.Filters.Email = email

	return r
}

// WithSort appends a sort criterion.
func (r *UsersListRequest) WithSort(orderBy string, order SortDirection) *UsersListRequest {
	r.Sort = append(r.Sort, SortItem{OrderBy: orderBy, Order: order})

	return r
}

// clone returns a copy that does not share filters or sort with r.
func (r *UsersListRequest) clone() *UsersListRequest {
	out := *r
	if r.Filters != nil {
		filters := *r.Filters
		out.Filters = &filters
	}

	out.Sort = append([]SortItem(nil), r.Sort...)

	return &out
}

// SortEncoding selects how the first sort criterion maps onto the
// "sort" and "order" query keys.
type SortEncoding int

const (
	// SortEncodingLegacy sends the direction under "sort" and the field under
	// "order". This is what the deployed users API expects.
	SortEncodingLegacy SortEncoding = iota
	// SortEncodingNamed sends the field under "sort" and the direction under "order".
	SortEncodingNamed
)

// String returns the configuration name of the encoding.
func (e SortEncoding) String() string {
	switch e {
	case SortEncodingNamed:
		return "named"
	case SortEncodingLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseSortEncoding parses "legacy" or "named". An empty string means legacy.
func ParseSortEncoding(value string) (SortEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "legacy":
		return SortEncodingLegacy, nil
	case "named":
		return SortEncodingNamed, nil
	default:
		return SortEncodingLegacy, fmt.Errorf("%w: %q", ErrInvalidSortEncoding, value)
	}
}

// QueryParam is a single query parameter.
type QueryParam struct {
	Key   string
	Value string
}

// QueryParams is an ordered list of query parameters.
type QueryParams []QueryParam

// Encode renders the parameters as a query string, keeping their order.
func (p QueryParams) Encode() string {
	var builder strings.Builder

	for i, param := range p {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(param.Key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(param.Value))
	}

	return builder.String()
}

// ToValues converts the parameters to url.Values.
func (p QueryParams) ToValues() url.Values {
	values := url.Values{}
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}

	return values
}

// Get returns the first value for key.
func (p QueryParams) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}

	return "", false
}

// Params encodes the request as query parameters: page, limit, then the
// optional email filter, then the first sort criterion.
func (r *UsersListRequest) Params(encoding SortEncoding) QueryParams {
	if r == nil {
		return nil
	}

	params := QueryParams{
		{Key: QueryKeyPage, Value: strconv.Itoa(r.Page)},
		{Key: QueryKeyLimit, Value: strconv.Itoa(r.Limit)},
	}

	if r.Filters != nil && r.Filters.Email != "" {
		params = append(params, QueryParam{Key: QueryKeyEmail, Value: r.Filters.Email})
	}

	if len(r.Sort) > 0 {
		first := r.Sort[0]

		switch encoding {
		case SortEncodingNamed:
			params = append(params,
				QueryParam{Key: QueryKeySort, Value: first.OrderBy},
				QueryParam{Key: QueryKeyOrder, Value: string(first.Order)},
			)
		default:
			params = append(params,
				QueryParam{Key: QueryKeySort, Value: string(first.Order)},
				QueryParam{Key: QueryKeyOrder, Value: first.OrderBy},
			)
		}
	}

	return params
}
