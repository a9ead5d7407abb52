package utils_test

import (
	"testing"
	"time"

	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       config.TestJWTSecret,
		AccessTokenTTL:  time.Second,
		RefreshTokenTTL: time.Hour,
		AccessIssuer:    "plant-disease-detection-api",
		RefreshIssuer:   "sahabat-tani-api",
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenManager(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	tm := utils.NewTokenManager(testConfig(), utils.WithClock(clock.Now))
	subject := utils.Subject{ID: 7, Email: "petani@example.com", Role: "user"}

	t.Run("Success - claims round trip", func(t *testing.T) {
		token, err := tm.IssueAccessToken(subject)
		require.NoError(t, err)

		claims, err := tm.VerifyAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "petani@example.com", claims.Email)
		assert.Equal(t, "user", claims.Role)
		assert.Equal(t, "plant-disease-detection-api", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Success - refresh tokens are distinct", func(t *testing.T) {
		a, err := tm.IssueRefreshToken(subject)
		require.NoError(t, err)
		b, err := tm.IssueRefreshToken(subject)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)

		claims, err := tm.VerifyRefreshToken(a)
		require.NoError(t, err)
		assert.Equal(t, "sahabat-tani-api", claims.Issuer)
	})

	t.Run("Error - expired is not invalid", func(t *testing.T) {
		token, err := tm.IssueAccessToken(subject)
		require.NoError(t, err)

		clock.t = clock.t.Add(2 * time.Second)
		defer func() { clock.t = clock.t.Add(-2 * time.Second) }()

		_, err = tm.VerifyToken(token)
		assert.ErrorIs(t, err, utils.ErrExpiredToken)
		assert.NotErrorIs(t, err, utils.ErrInvalidToken)
	})

	t.Run("Error - bad signature", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTSecret = "another_secret_key_that_is_at_least_32_chars"
		other := utils.NewTokenManager(cfg, utils.WithClock(clock.Now))

		token, err := other.IssueAccessToken(subject)
		require.NoError(t, err)

		_, err = tm.VerifyToken(token)
		assert.ErrorIs(t, err, utils.ErrInvalidToken)
	})

	t.Run("Error - garbage", func(t *testing.T) {
		_, err := tm.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, utils.ErrInvalidToken)
	})

	t.Run("Error - issuer mismatch", func(t *testing.T) {
		refresh, err := tm.IssueRefreshToken(subject)
		require.NoError(t, err)

		_, err = tm.VerifyAccessToken(refresh)
		assert.ErrorIs(t, err, utils.ErrInvalidToken)
	})
}
