// Package authz carries the authenticated caller into mutating operations.
package authz

import (
	"errors"
	"strings"
)

// ErrUnauthorized is returned by any mutating operation invoked without
// an authenticated actor. It deliberately carries no detail.
var ErrUnauthorized = errors.New("unauthorized")

// Actor is the admin on whose behalf an operation runs.
type Actor struct {
	UserID    string
	SessionID string
}

// Anonymous is the zero actor.
var Anonymous = Actor{}

// Authenticated reports whether the actor is backed by a session.
func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.UserID) != ""
}

// Require returns ErrUnauthorized unless the actor is authenticated.
func (a Actor) Require() error {
	if !a.Authenticated() {
		return ErrUnauthorized
	}
	return nil
}
