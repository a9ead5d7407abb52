package user

import (
	"context"

	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/models"
	"github.com/sahabattani/backend/internal/utils"
)

// SeedAdmin creates the configured administrator account when it does not
// exist yet. It reports whether an account was created.
func SeedAdmin(ctx context.Context, repo *Repository, hasher *utils.PasswordHasher, cfg *config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	taken, err := repo.EmailTaken(ctx, cfg.AdminEmail, 0)
	if err != nil || taken {
		return false, err
	}

	if msgs := utils.Collect(
		utils.ValidateEmail(cfg.AdminEmail),
		utils.ValidatePassword("ADMIN_PASSWORD", cfg.AdminPassword),
	); len(msgs) > 0 {
		return false, apperror.Validation("Konfigurasi admin tidak valid", msgs...)
	}

	digest, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: digest,
		Provider: models.ProviderLocal,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
