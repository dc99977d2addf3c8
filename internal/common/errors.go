// Package common defines shared constants and sentinel errors used across
// formdesk components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")

	// Guard errors. Security rejections are deliberately generic so the
	// response never reveals which check tripped.
	ErrSecurityRejected = errors.New("submission blocked")
	ErrRateLimited      = errors.New("rate limited")

	// Input parsing errors.
	ErrNotANumber = errors.New("not a number")
)
