package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates an unknown or malformed auth token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates an auth token past its lifetime.
	ErrTokenExpired = errors.New("token expired")
	// ErrForbidden indicates an ownership mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrReconcileFailed indicates a payment write succeeded but the
	// follow-up invoice reconciliation did not. Callers should retry
	// reconciliation; the payment itself stands.
	ErrReconcileFailed = errors.New("invoice reconciliation failed")
)
