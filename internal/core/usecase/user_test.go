package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/Nzyazin/finledger/internal/core/auth"
	"github.com/Nzyazin/finledger/internal/core/logger"
	"github.com/Nzyazin/finledger/internal/core/repository/memory"
	"github.com/Nzyazin/finledger/internal/core/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserUsecase() (usecase.UserUsecase, *auth.JWTManager) {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	users := memory.NewUserRepository()
	return usecase.NewUserUsecase(users, tokens, logger.NewNop()), tokens
}

func TestCreateUser(t *testing.T) {
	uc, _ := newUserUsecase()

	user, err := uc.CreateUser(context.Background(), "Sam", "sam@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	uc, _ := newUserUsecase()
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, "Sam", "sam@example.com", "secret123")
	require.NoError(t, err)

	_, err = uc.CreateUser(ctx, "Other Sam", "Sam@Example.com", "different")
	assert.ErrorIs(t, err, usecase.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	uc, tokens := newUserUsecase()
	ctx := context.Background()

	created, err := uc.CreateUser(ctx, "Tina", "tina@example.com", "secret123")
	require.NoError(t, err)

	token, user, err := uc.Authenticate(ctx, "tina@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	subject, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, subject)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	uc, _ := newUserUsecase()
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, "Uma", "uma@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = uc.Authenticate(ctx, "uma@example.com", "wrong")
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	uc, _ := newUserUsecase()

	_, _, err := uc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestProfileUnknownUser(t *testing.T) {
	uc, _ := newUserUsecase()

	_, err := uc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
