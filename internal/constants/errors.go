package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIEndpointConfigured = errors.New("no API endpoint configured, use 'adminctl config set api <url>' or --api")
	ErrUnknownConfigKey        = errors.New("unknown configuration key")
	ErrInvalidOutputFormat     = errors.New("invalid output format, expected table, json or yaml")
)

// Validation errors.
var (
	ErrEmailRequired      = errors.New("--email flag is required")
	ErrNothingToUpdate    = errors.New("no fields to update, pass at least one flag")
	ErrInvalidSortFlag    = errors.New("invalid --sort value, expected field[:asc|desc]")
	ErrInvalidRoleFlag    = errors.New("invalid --role value, expected admin, user or a numeric id")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordNotEntered = errors.New("password is required")
)

// Event errors.
var (
	ErrEventsNotConnected = errors.New("events publisher is not connected")
)
