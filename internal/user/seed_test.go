package user_test

import (
	"context"
	"testing"

	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/testutils"
	"github.com/sahabattani/backend/internal/user"
	"github.com/sahabattani/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(testutils.TestDB(t))
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)

	t.Run("Success - skipped without credentials", func(t *testing.T) {
		created, err := user.SeedAdmin(ctx, repo, hasher, &config.Config{})
		require.NoError(t, err)
		assert.False(t, created)
	})

	cfg := &config.Config{AdminName: "Administrator", AdminEmail: "Admin@SahabatTani.id", AdminPassword: "admin12345"}

	t.Run("Success - creates admin once", func(t *testing.T) {
		created, err := user.SeedAdmin(ctx, repo, hasher, cfg)
		require.NoError(t, err)
		assert.True(t, created)

		again, err := user.SeedAdmin(ctx, repo, hasher, cfg)
		require.NoError(t, err)
		assert.False(t, again)

		u, err := repo.FindByEmail(ctx, "admin@sahabattani.id")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, u.Role)
		ok, err := hasher.Verify("admin12345", u.Password)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Error - weak password", func(t *testing.T) {
		_, err := user.SeedAdmin(ctx, repo, hasher, &config.Config{AdminEmail: "other@sahabattani.id", AdminPassword: "123"})
		assert.Error(t, err)
	})
}
