// Package auth implements registration, login, and logout for the blog and
// money tracker apps: bcrypt-hashed credentials checked against the users
// table, with the outcome reported through session flash messages.
package auth

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/miniweb-go/apperror"
)

// Flash messages mirrored from the original apps. Login deliberately keeps
// two distinct failure messages; see DESIGN.md on the enumeration trade-off.
const (
	MsgRegistered       = "You are now registered and can log in."
	MsgRegisterError    = "Error registering user."
	MsgNoUser           = "No user found."
	MsgPasswordMismatch = "Password incorrect."
)

// RegisterForm is the url-encoded registration payload.
type RegisterForm struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// LoginForm is the url-encoded login payload.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Service holds the registration and login logic.
type Service struct {
	users    Store
	validate *validator.Validate
}

// NewService creates a Service backed by the given user store.
func NewService(users Store) *Service {
	return &Service{
		users:    users,
		validate: validator.New(),
	}
}

// Register hashes the password and persists a new user.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*User, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, apperror.NewValidationError("username, email, and password are required", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:       form.Username,
		Email:          strings.ToLower(form.Email),
		HashedPassword: string(hashed),
	}
	return s.users.CreateUser(ctx, user)
}

// Login checks the submitted credentials. A missing user and a password
// mismatch are distinct branches with distinct messages, matching the
// behavior these apps have always had.
func (s *Service) Login(ctx context.Context, form LoginForm) (*User, error) {
	if err := s.validate.Struct(form); err != nil {
		return nil, apperror.NewAuthError(MsgNoUser, err)
	}

	user, err := s.users.GetUserByUsername(ctx, form.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError(MsgNoUser, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(form.Password)); err != nil {
		return nil, apperror.NewAuthError(MsgPasswordMismatch, nil)
	}
	return user, nil
}

// UserByID returns a user by id, for profile reads.
func (s *Service) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.users.GetUserByID(ctx, id)
}
