// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let higher layers such as handlers
// distinguish between failure scenarios: ErrNotFound maps to HTTP 404,
// ErrForbidden to 403, and the uniqueness errors to field-level
// validation failures on the registration and account forms.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response. It is distinct from ErrNotFound so that the
// missing-vs-not-owned distinction stays observable.
var ErrForbidden = errors.New("forbidden")

// ErrUsernameTaken signals that the requested username is already in
// use. It is produced both by the optimistic pre-check and by the
// unique key backstop when a concurrent registration wins the race.
var ErrUsernameTaken = errors.New("username already taken")

// ErrEmailTaken signals that the requested email is already registered.
var ErrEmailTaken = errors.New("email already registered")
