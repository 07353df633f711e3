// Package regform is the minimal registration app: one POST route inserting
// a user and answering plain text. There is no session layer and, unlike
// the other two apps, no password hashing — the stored password is exactly
// what was submitted. That asymmetry is deliberate; see DESIGN.md.
package regform

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/miniweb-go/apperror"
)

const pgUniqueViolation = "23505"

// Store persists registration submissions.
type Store interface {
	CreateUser(ctx context.Context, username, email, password string) error
}

// PGStore implements Store against the regform database.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// CreateUser inserts the user with the password as submitted.
func (s *PGStore) CreateUser(ctx context.Context, username, email, password string) error {
	query := `INSERT INTO users (username, email, password) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, username, strings.ToLower(email), password); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewConflictError("user already exists", nil)
		}
		return apperror.NewDatabaseError("failed to create user", err)
	}
	return nil
}

// Handlers exposes the registration route.
type Handlers struct {
	store Store
}

// NewHandlers creates the regform handlers.
func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store}
}

// HandleRegister inserts the submitted user and answers plain text, with no
// redirect.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error registering user.", http.StatusBadRequest)
			return
		}
		err := h.store.CreateUser(r.Context(),
			r.PostFormValue("username"),
			r.PostFormValue("email"),
			r.PostFormValue("password"))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Error registering user."))
			return
		}
		w.Write([]byte("User registered successfully!"))
	}
}
