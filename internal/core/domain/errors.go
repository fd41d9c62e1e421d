package domain

import "errors"

// Lookup failures.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNeedNotFound         = errors.New("need not found")
	ErrServiceOfferNotFound = errors.New("service offer not found")
)

// ErrConflict reports that a record exists but its current state does not
// permit the requested mutation (the guard predicate failed).
var ErrConflict = errors.New("record state does not permit this operation")

// Authentication and authorization failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("login required")
	ErrForbidden          = errors.New("access forbidden")
)

// Validation failures.
var (
	ErrValidation            = errors.New("validation failed")
	ErrUserExists            = errors.New("user already exists")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrUniquenessUnavailable = errors.New("username uniqueness could not be verified")
)

// ErrStorage wraps any failure reported by the key-value adapter.
var ErrStorage = errors.New("storage failure")
