package auth_test

import (
	"testing"
	"time"

	"workspaceflow/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 24*time.Hour)

	token, err := issuer.GenerateToken(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	memberID, err := issuer.ParseToken(token)

	assert.NoError(t, err)
	assert.Equal(t, uint(42), memberID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)

	_, err := issuer.ParseToken("invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.NewTokenIssuer("other-secret", time.Hour).GenerateToken(1)
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, time.Hour).ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"member_id": 7,
		"exp":       time.Now().Add(-1 * time.Hour).Unix(),
	}
	expiredToken, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	_, err := auth.NewTokenIssuer(testSecret, time.Hour).ParseToken(expiredToken)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingExpiry(t *testing.T) {
	claims := jwt.MapClaims{"member_id": 7}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	_, err := auth.NewTokenIssuer(testSecret, time.Hour).ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	_, err := auth.NewTokenIssuer(testSecret, time.Hour).ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, auth.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
	assert.False(t, auth.CheckPassword("not-a-hash", "s3cret-pass"))
}
