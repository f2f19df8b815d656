package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/motomart/config"
	"github.com/shashiranjanraj/motomart/pkg/auth"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := auth.GenerateToken("64f1c0ffee0000000000abcd")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee0000000000abcd", claims.UserID)

	// 7-day window from issuance.
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, auth.TokenTTL, ttl)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := auth.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	claims := auth.Claims{
		UserID: "64f1c0ffee0000000000abcd",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-8 * 24 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.JWTSecret()))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	claims := auth.Claims{
		UserID: "64f1c0ffee0000000000abcd",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("p1")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", hash)
	assert.True(t, auth.CheckPassword(hash, "p1"))
	assert.False(t, auth.CheckPassword(hash, "p2"))
}
