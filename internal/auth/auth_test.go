package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateJWTString(t *testing.T) {
	secret := []byte("test-secret")
	a := NewJWTAuth(secret, WithIssuer("testshop"), WithTokenTTL(time.Hour))

	tokenString, err := a.CreateJWTString("admin")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "testshop", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(string(hash), "hunter2"))
	assert.False(t, VerifyPassword(string(hash), "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter2"))
}
