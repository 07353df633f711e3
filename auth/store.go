package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/miniweb-go/apperror"
)

// pgUniqueViolation is the PostgreSQL unique constraint violation code.
const pgUniqueViolation = "23505"

// Store is the user persistence interface the auth service depends on.
type Store interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
}

// PGStore implements Store against the app's users table.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// CreateUser inserts a new user and returns it with its id and creation
// time filled in. Duplicate usernames or emails map to a ConflictError.
func (s *PGStore) CreateUser(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (username, email, password)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, user.Username, strings.ToLower(user.Email), user.HashedPassword).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return nil, apperror.NewConflictError("username already exists", nil)
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return nil, apperror.NewConflictError("email already exists", nil)
			}
			return nil, apperror.NewConflictError("user already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return user, nil
}

// GetUserByUsername returns the user with the given username.
func (s *PGStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, created_at FROM users WHERE username = $1`
	err := s.db.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by username", err)
	}
	return &user, nil
}

// GetUserByID returns the user with the given id.
func (s *PGStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	query := `SELECT id, username, email, password, created_at FROM users WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}
