package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:50;not null" json:"name"`
	Email          string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password       string     `gorm:"size:255" json:"-"`
	Provider       string     `gorm:"size:20;default:local" json:"provider"`
	Role           string     `gorm:"size:10;default:user;not null" json:"role"`
	IsActive       bool       `gorm:"default:true;not null" json:"isActive"`
	LastLogin      *time.Time `json:"lastLogin"`
	DetectionCount int        `gorm:"default:0;not null" json:"detectionCount"`
	// SHA-256 digest of the single refresh token currently accepted for this user.
	RefreshToken *string   `gorm:"size:64" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
