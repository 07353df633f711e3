package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/miniweb-go/apperror"
)

// MemoryStore is an in-process Store with the same semantics as PGStore.
// The handler test suites run against it.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memSession
}

type memSession struct {
	userID       *int64
	expiresAt    time.Time
	flashSuccess string
	flashError   string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]*memSession)}
}

// Create starts a new anonymous session.
func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	expires := time.Now().Add(s.ttl)
	s.sessions[id] = &memSession{expiresAt: expires}
	return &Session{ID: id, ExpiresAt: expires}, nil
}

// Get loads a session, treating expired entries as not found.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return nil, apperror.NewNotFoundError("session not found", nil)
	}
	if time.Now().After(ms.expiresAt) {
		delete(s.sessions, id)
		return nil, apperror.NewNotFoundError("session expired", nil)
	}
	sess := &Session{ID: id, ExpiresAt: ms.expiresAt}
	if ms.userID != nil {
		uid := *ms.userID
		sess.UserID = &uid
	}
	return sess, nil
}

// SetUser binds the authenticated user to the session.
func (s *MemoryStore) SetUser(ctx context.Context, id string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return apperror.NewNotFoundError("session not found", nil)
	}
	ms.userID = &userID
	return nil
}

// Destroy deletes the session.
func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// AddFlash replaces the pending flash message of the given kind.
func (s *MemoryStore) AddFlash(ctx context.Context, id, kind, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return apperror.NewNotFoundError("session not found", nil)
	}
	switch kind {
	case FlashSuccess:
		ms.flashSuccess = message
	case FlashError:
		ms.flashError = message
	default:
		return apperror.NewInternalError("unknown flash kind "+kind, nil)
	}
	return nil
}

// PopFlashes returns and clears both flash messages.
func (s *MemoryStore) PopFlashes(ctx context.Context, id string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return "", "", apperror.NewNotFoundError("session not found", nil)
	}
	success, errMsg := ms.flashSuccess, ms.flashError
	ms.flashSuccess, ms.flashError = "", ""
	return success, errMsg, nil
}
