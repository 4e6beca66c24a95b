package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a session cookie.
// It holds only a reference to the user; the full user is resolved on demand.
type Session struct {
	ID        uuid.UUID `json:"id"`         // Session identifier carried in the signed cookie
	UserID    uuid.UUID `json:"user_id"`    // Authenticated user
	CreatedAt time.Time `json:"created_at"` // Login time
	ExpiresAt time.Time `json:"expires_at"` // Absolute expiry
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity is the explicit per-request authentication state.
// The zero value is an anonymous visitor.
type Identity struct {
	User *UserDB
}

// Anonymous returns an identity with no user attached.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns an identity bound to user.
func Authenticated(user *UserDB) Identity {
	return Identity{User: user}
}

// IsAuthenticated reports whether a user is attached.
func (i Identity) IsAuthenticated() bool {
	return i.User != nil
}
