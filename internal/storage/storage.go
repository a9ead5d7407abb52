package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahabattani/backend/internal/config"
)

const (
	ModeLocal = "local"
	ModeS3    = "s3"
)

// Storage persists uploaded leaf images and returns the path or URL clients
// use to fetch them. Every object lives under its uploader's directory.
type Storage interface {
	Save(ctx context.Context, ownerID uint, originalName, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, location string) error
	// Owns reports whether location was issued by Save for ownerID.
	Owns(location string, ownerID uint) bool
	Mode() string
}

func New(cfg *config.Config) (Storage, error) {
	if cfg.UseS3 {
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region, cfg.CloudFrontURL)
	}
	return NewLocalStorage(cfg.UploadDir)
}

func objectName(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102-150405"), uuid.NewString()[:8], ext)
}

func ownerDir(ownerID uint) string {
	return fmt.Sprintf("%s/%d/", imagesDir, ownerID)
}

// ownedKey accepts only clean keys below the owner's directory.
func ownedKey(key string, ownerID uint) bool {
	if ownerID == 0 {
		return false
	}
	rest, ok := strings.CutPrefix(key, ownerDir(ownerID))
	if !ok || rest == "" {
		return false
	}
	return path.Clean(key) == key
}
