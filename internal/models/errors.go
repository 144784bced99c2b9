package models

import "errors"

var (
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrMissingCustomerID = errors.New("missing customer id")
	ErrNotFound          = errors.New("customer not found")
	ErrNotConfigured     = errors.New("source not configured")
	ErrInvalidConfig     = errors.New("invalid customer config")
)
