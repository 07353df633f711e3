package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/miniweb-go/apperror"
)

// fakeUserStore is an in-memory Store for the service and handler tests.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*User)}
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
		if u.Email == user.Email {
			return nil, apperror.NewConflictError("email already exists", nil)
		}
	}
	s.nextID++
	stored := *user
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	s.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NewNotFoundError(fmt.Sprintf("user %q not found", username), nil)
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user %d not found", id), nil)
	}
	out := *u
	return &out, nil
}

func (s *fakeUserStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func TestService_RegisterHashesPassword(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)

	user, err := svc.Register(context.Background(), RegisterForm{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email, "email should be stored lowercase")

	stored, err := store.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.HashedPassword, "password must never be stored as submitted")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("s3cret")))
}

func TestService_RegisterRequiresAllFields(t *testing.T) {
	svc := NewService(newFakeUserStore())

	_, err := svc.Register(context.Background(), RegisterForm{Username: "alice", Password: "s3cret"})
	assert.True(t, apperror.IsValidationError(err))
}

func TestService_RegisterDuplicateUsername(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)

	_, err := svc.Register(context.Background(), RegisterForm{Username: "alice", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterForm{Username: "alice", Email: "other@example.com", Password: "pw"})
	assert.True(t, apperror.IsConflictError(err))
	assert.Equal(t, 1, store.count())
}

func TestService_Login(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store)
	_, err := svc.Register(context.Background(), RegisterForm{Username: "alice", Email: "a@example.com", Password: "s3cret"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(context.Background(), LoginForm{Username: "alice", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginForm{Username: "mallory", Password: "s3cret"})
		require.True(t, apperror.IsAuthError(err))
		appErr, _ := apperror.FromError(err)
		assert.Equal(t, MsgNoUser, appErr.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginForm{Username: "alice", Password: "wrong"})
		require.True(t, apperror.IsAuthError(err))
		appErr, _ := apperror.FromError(err)
		assert.Equal(t, MsgPasswordMismatch, appErr.Message)
	})
}
