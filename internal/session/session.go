// Package session carries the identity of the acting wallet user.
//
// Core services take a Session value on every call instead of reading the
// current user from ambient storage, so tests can act as any user and no
// package-level state exists.
package session

import "errors"

// ErrNoUser is returned when an operation requires an authenticated user.
var ErrNoUser = errors.New("no user in session")

// Session identifies the acting user for a sequence of wallet operations.
type Session struct {
	UserID string
	Email  string
}

// New creates a session for the given user.
func New(userID, email string) Session {
	return Session{UserID: userID, Email: email}
}

// Validate checks that the session names a user.
func (s Session) Validate() error {
	if s.UserID == "" {
		return ErrNoUser
	}
	return nil
}
