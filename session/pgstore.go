package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/miniweb-go/apperror"
)

// PGStore is the Postgres-backed Store used in production.
type PGStore struct {
	db  *pgxpool.Pool
	ttl time.Duration
}

// NewPGStore creates a PGStore. ttl is the lifetime granted to new sessions.
func NewPGStore(db *pgxpool.Pool, ttl time.Duration) *PGStore {
	return &PGStore{db: db, ttl: ttl}
}

// Create starts a new anonymous session with an opaque uuid token.
func (s *PGStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (id, expires_at) VALUES ($1, $2)`,
		sess.ID, sess.ExpiresAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create session", err)
	}
	return sess, nil
}

// Get loads a session by id. Expired sessions are deleted and reported as
// not found.
func (s *PGStore) Get(ctx context.Context, id string) (*Session, error) {
	var userID sql.NullInt64
	var expiresAt time.Time
	err := s.db.QueryRow(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE id = $1`, id).
		Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("session not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load session", err)
	}
	if time.Now().After(expiresAt) {
		_, _ = s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
		return nil, apperror.NewNotFoundError("session expired", nil)
	}

	sess := &Session{ID: id, ExpiresAt: expiresAt}
	if userID.Valid {
		uid := userID.Int64
		sess.UserID = &uid
	}
	return sess, nil
}

// SetUser binds the authenticated user to the session.
func (s *PGStore) SetUser(ctx context.Context, id string, userID int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET user_id = $2 WHERE id = $1`, id, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to authenticate session", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("session not found", nil)
	}
	return nil
}

// Destroy deletes the session record.
func (s *PGStore) Destroy(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return apperror.NewDatabaseError("failed to destroy session", err)
	}
	return nil
}

// AddFlash replaces the pending flash message of the given kind.
func (s *PGStore) AddFlash(ctx context.Context, id, kind, message string) error {
	var column string
	switch kind {
	case FlashSuccess:
		column = "flash_success"
	case FlashError:
		column = "flash_error"
	default:
		return apperror.NewInternalError(fmt.Sprintf("unknown flash kind %q", kind), nil)
	}
	tag, err := s.db.Exec(ctx,
		fmt.Sprintf(`UPDATE sessions SET %s = $2 WHERE id = $1`, column), id, message)
	if err != nil {
		return apperror.NewDatabaseError("failed to store flash message", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("session not found", nil)
	}
	return nil
}

// PopFlashes returns and clears both flash messages in one statement. The
// CTE reads the pre-update values, so the returned messages are the ones
// that were pending.
func (s *PGStore) PopFlashes(ctx context.Context, id string) (string, string, error) {
	var success, errMsg sql.NullString
	err := s.db.QueryRow(ctx, `
		WITH old AS (
			SELECT flash_success, flash_error FROM sessions WHERE id = $1
		)
		UPDATE sessions SET flash_success = NULL, flash_error = NULL
		WHERE id = $1
		RETURNING (SELECT flash_success FROM old), (SELECT flash_error FROM old)`,
		id).Scan(&success, &errMsg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", apperror.NewNotFoundError("session not found", nil)
		}
		return "", "", apperror.NewDatabaseError("failed to pop flash messages", err)
	}
	return success.String, errMsg.String, nil
}
