package user

import (
	"context"
	"errors"
	"time"

	"github.com/sahabattani/backend/internal/apperror"
	"github.com/sahabattani/backend/internal/models"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("Pengguna tidak ditemukan", "user not found")
	}
	return apperror.Internal("Gagal mengambil data pengguna", err)
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts u. A duplicate email, in any letter case, is a conflict.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	taken, err := r.EmailTaken(ctx, u.Email, 0)
	if err != nil {
		return apperror.Internal("Gagal membuat pengguna", err)
	}
	if taken {
		return apperror.Conflict("Email sudah terdaftar", "email already registered")
	}

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("Email sudah terdaftar", "email already registered")
		}
		return apperror.Internal("Gagal membuat pengguna", err)
	}
	return nil
}

func (r *Repository) update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperror.Internal("Gagal memperbarui pengguna", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Pengguna tidak ditemukan", "user not found")
	}
	return nil
}

// SetRefreshToken replaces the stored digest. The last writer wins, so a
// login on one device invalidates the refresh token held by another.
func (r *Repository) SetRefreshToken(ctx context.Context, id uint, digest *string) error {
	return r.update(ctx, id, map[string]interface{}{"refresh_token": digest})
}

func (r *Repository) RecordLogin(ctx context.Context, id uint, digest string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"refresh_token": digest,
		"last_login":    at,
	})
}

func (r *Repository) UpdateName(ctx context.Context, id uint, name string) error {
	return r.update(ctx, id, map[string]interface{}{"name": name})
}

func (r *Repository) UpdatePassword(ctx context.Context, id uint, digest string) error {
	return r.update(ctx, id, map[string]interface{}{"password": digest})
}

type AdminUpdate struct {
	Name     *string
	Role     *string
	IsActive *bool
}

func (r *Repository) AdminUpdate(ctx context.Context, id uint, in AdminUpdate) error {
	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Role != nil {
		fields["role"] = *in.Role
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
		if !*in.IsActive {
			fields["refresh_token"] = nil
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return r.update(ctx, id, fields)
}

func (r *Repository) List(ctx context.Context, search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR email LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data pengguna", err)
	}

	var users []models.User
	err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, apperror.Internal("Gagal mengambil data pengguna", err)
	}
	return users, total, nil
}
