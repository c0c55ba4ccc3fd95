package auth_test

import (
	"testing"
	"time"

	"github.com/Nzyazin/finledger/internal/core/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	token, err := manager.Issue(userID)
	require.NoError(t, err)

	parsed, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseGarbage(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)

	_, err := manager.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseWrongSecret(t *testing.T) {
	issuer := auth.NewJWTManager("secret-one", time.Hour)
	verifier := auth.NewJWTManager("secret-two", time.Hour)

	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseExpiredToken(t *testing.T) {
	manager := auth.NewJWTManager("secret", -time.Minute)

	token, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
