// Package session implements server-side sessions for the HTML-facing apps.
// A session is a database-backed record keyed by an opaque token delivered
// to the browser in an HttpOnly cookie. The record tracks the authenticated
// user (if any) and carries the one-shot flash messages rendered on the next
// page view.
package session

import (
	"context"
	"time"
)

// Flash kinds. Each kind holds at most one pending message per session.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Session is the server-side state for one browser.
type Session struct {
	ID        string
	UserID    *int64
	ExpiresAt time.Time
}

// Authenticated reports whether a user has logged in on this session.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != nil
}

// Store is the session-store abstraction injected into each handler.
type Store interface {
	// Create starts a new anonymous session.
	Create(ctx context.Context) (*Session, error)
	// Get returns the session for id, or a NotFound error when the id is
	// unknown or the session has expired.
	Get(ctx context.Context, id string) (*Session, error)
	// SetUser marks the session as authenticated as userID.
	SetUser(ctx context.Context, id string, userID int64) error
	// Destroy deletes the session record. Destroying an unknown id is not
	// an error.
	Destroy(ctx context.Context, id string) error
	// AddFlash stores a one-shot message of the given kind on the session,
	// replacing any pending message of that kind.
	AddFlash(ctx context.Context, id, kind, message string) error
	// PopFlashes returns and clears the pending messages of both kinds.
	PopFlashes(ctx context.Context, id string) (success, errMsg string, err error)
}
