package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		errType ErrorType
		want    int
	}{
		{DatabaseError, http.StatusInternalServerError},
		{ConfigError, http.StatusInternalServerError},
		{InternalError, http.StatusInternalServerError},
		{MigrationError, http.StatusInternalServerError},
		{AuthError, http.StatusUnauthorized},
		{NotFoundError, http.StatusNotFound},
		{ValidationError, http.StatusBadRequest},
		{BadRequestError, http.StatusBadRequest},
		{ConflictError, http.StatusConflict},
		{UnknownError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NewAppError(tc.errType, "msg", nil).StatusCode())
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to query", cause)

	assert.Equal(t, "failed to query: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))

	bare := NewAuthError("Password incorrect.", nil)
	assert.Equal(t, "Password incorrect.", bare.Error())
}

func TestToResponse_HidesCause(t *testing.T) {
	err := NewDatabaseError("failed to query", errors.New("dsn contains password"))
	assert.Equal(t, ErrorResponse{Error: "failed to query"}, err.ToResponse())
}

func TestFromError(t *testing.T) {
	appErr, ok := FromError(NewNotFoundError("post 1 not found", nil))
	require.True(t, ok)
	assert.Equal(t, NotFoundError, appErr.Type)

	wrapped := fmt.Errorf("while handling request: %w", NewConflictError("username already exists", nil))
	appErr, ok = FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ConflictError, appErr.Type)

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("gone", nil)))
	assert.True(t, IsAuthError(NewAuthError("no", nil)))
	assert.True(t, IsValidationError(NewValidationError("bad", nil)))
	assert.True(t, IsConflictError(NewConflictError("dup", nil)))

	err := NewNotFoundError("gone", nil)
	assert.False(t, IsAuthError(err))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
