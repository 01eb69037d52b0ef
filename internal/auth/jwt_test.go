package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-only"

func testUser() *domain.User {
	u := &domain.User{Name: "Ada", Email: "ada@x.test", Role: domain.UserRoleAdmin}
	u.ID = "u1"
	return u
}

func TestTokenManager_IssueValidate(t *testing.T) {
	m := NewTokenManager(&config.AuthConfig{JWTSecret: testSecret, TokenTTLHours: 2, Issuer: "billing-api"})
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	token, expiresAt, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), expiresAt)

	userCtx, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userCtx.UserID)
	assert.Equal(t, "Ada", userCtx.Name)
	assert.Equal(t, domain.UserRoleAdmin, userCtx.Role)
	assert.True(t, userCtx.IsAdmin())
	assert.False(t, userCtx.IsSystem())
}

func TestTokenManager_Validate(t *testing.T) {
	m := NewTokenManager(&config.AuthConfig{JWTSecret: testSecret, TokenTTLHours: 1, Issuer: "billing-api"})
	now := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager(&config.AuthConfig{JWTSecret: testSecret, Issuer: "billing-api"})
		later.now = func() time.Time { return now.Add(2 * time.Hour) }

		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager(&config.AuthConfig{JWTSecret: "another-secret", Issuer: "billing-api"})
		other.now = m.now

		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenManager(&config.AuthConfig{JWTSecret: testSecret, Issuer: "someone-else"})
		other.now = m.now

		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Validate(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no secret configured", func(t *testing.T) {
		empty := NewTokenManager(&config.AuthConfig{})
		_, _, err := empty.Issue(testUser())
		assert.ErrorIs(t, err, ErrNoSecret)
		_, err = empty.Validate(token)
		assert.ErrorIs(t, err, ErrNoSecret)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, CheckPassword(hash, "battery staple"), ErrPasswordMismatch)
}
