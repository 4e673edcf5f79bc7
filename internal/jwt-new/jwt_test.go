package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	profile := &models.Profile{ID: 42, Email: "user@example.com"}

	tokenStr, err := NewToken(profile, time.Hour, "testsecret")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("testsecret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "user@example.com", claims["email"])
}

func TestNewToken_EmptySecret(t *testing.T) {
	_, err := NewToken(&models.Profile{ID: 1}, time.Hour, "")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
