package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user whose email is
// already registered. The unique index on LOWER(email) is the authority;
// application-level existence checks are only a fast path.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidTransition is returned when a transaction status update targets
// a transaction that is no longer PENDING.
var ErrInvalidTransition = errors.New("invalid status transition")
