package domain

import "errors"

var (
	// ErrNotFound covers unknown hotels, rooms and reservations. Cancel
	// deliberately returns it for reservations owned by someone else so
	// non-owners cannot probe for existence.
	ErrNotFound = errors.New("not found")

	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnavailable means the room is already taken for the requested
	// interval. Distinct from store failures: a store error is never
	// reported as "unavailable".
	ErrUnavailable = errors.New("room unavailable")

	ErrInvalidInput = errors.New("invalid input")
)
