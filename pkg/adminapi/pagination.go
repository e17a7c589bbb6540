package adminapi

import (
	"context"
	"errors"
	"fmt"
)

// Pagination defaults.
const (
	// DefaultPage is the first page of a listing.
	DefaultPage = 1

	// DefaultPageSize is the page size used when none is given.
	DefaultPageSize = 10

	// DefaultMaxPages caps ListAll when the caller does not.
	DefaultMaxPages = 100
)

// ErrNoMoreItems is returned by UsersPager.Next after the last page.
var ErrNoMoreItems = errors.New("no more items")

// UsersLister is the subset of UsersClient used for paging.
type UsersLister interface {
	List(ctx context.Context, request *UsersListRequest, opts ...RequestOption) (*UsersListResponse, error)
}

// UsersPager walks a users listing page by page, following hasNextPage.
type UsersPager struct {
	lister  UsersLister
	request *UsersListRequest
	opts    []RequestOption
	done    bool
}

// NewUsersPager creates a pager starting at request.Page. A nil request starts at
// page 1 with the default page size.
func NewUsersPager(lister UsersLister, request *UsersListRequest, opts ...RequestOption) *UsersPager {
	if request == nil {
		request = NewUsersListRequest(DefaultPage, DefaultPageSize)
	}

	start := request.clone()
	if start.Page < 1 {
		start.Page = 1
	}

	return &UsersPager{
		lister:  lister,
		request: start,
		opts:    opts,
	}
}

// HasNext reports whether another page may be fetched.
func (p *UsersPager) HasNext() bool {
	return !p.done
}

// Page returns the number of the page the next call to Next fetches.
func (p *UsersPager) Page() int {
	return p.request.Page
}

// Next fetches the next page.
func (p *UsersPager) Next(ctx context.Context) ([]User, error) {
	if p.done {
		return nil, ErrNoMoreItems
	}

	resp, err := p.lister.List(ctx, p.request.clone(), p.opts...)
	if err != nil {
		return nil, fmt.Errorf("fetching users page %d: %w", p.request.Page, err)
	}

	if !resp.HasNextPage || len(resp.Data) == 0 {
		p.done = true
	} else {
		p.request.Page++
	}

	return resp.Data, nil
}

// ListAll fetches pages until hasNextPage is false or maxPages pages were read.
// maxPages <= 0 applies the default cap.
func ListAll(ctx context.Context, lister UsersLister, request *UsersListRequest, maxPages int, opts ...RequestOption) ([]User, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	pager := NewUsersPager(lister, request, opts...)

	var users []User

	for pages := 0; pager.HasNext() && pages < maxPages; pages++ {
		page, err := pager.Next(ctx)
		if err != nil {
			return users, err
		}

		users = append(users, page...)
	}

	return users, nil
}
