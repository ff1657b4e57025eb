// Package session implements the server-side session store behind the
// auth gateway. A session is an opaque random identifier delivered in
// a cookie and resolved to a user id on every request.
package session

import (
	"context"
	"errors"
)

// CookieName is the name of the session cookie.
const CookieName = "session_id"

// ErrNoSession is returned when an identifier does not resolve to an
// active session.
var ErrNoSession = errors.New("session not found")

// Store persists sessions. The Redis implementation backs production;
// the memory implementation backs tests.
type Store interface {
	// Create opens a session for userID and returns its identifier.
	// When remember is set the session uses the long-lived TTL.
	Create(ctx context.Context, userID uint64, remember bool) (string, error)
	// Resolve returns the user id bound to a session identifier.
	Resolve(ctx context.Context, id string) (uint64, error)
	// Delete ends one session.
	Delete(ctx context.Context, id string) error
	// DeleteAllForUser ends every session of one user. Used after a
	// password reset and on account deletion.
	DeleteAllForUser(ctx context.Context, userID uint64) error
}
