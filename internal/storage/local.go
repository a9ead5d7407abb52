package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	PublicPrefix = "/uploads"
	imagesDir    = "detections"
)

type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, imagesDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Mode() string { return ModeLocal }

func (s *LocalStorage) BaseDir() string { return s.baseDir }

func (s *LocalStorage) Save(_ context.Context, ownerID uint, originalName, _ string, data []byte) (string, error) {
	if ownerID == 0 {
		return "", fmt.Errorf("owner is required")
	}

	key := ownerDir(ownerID) + objectName(originalName, time.Now())
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return PublicPrefix + "/" + key, nil
}

func (s *LocalStorage) Owns(location string, ownerID uint) bool {
	key, ok := strings.CutPrefix(location, PublicPrefix+"/")
	if !ok || !ownedKey(key, ownerID) {
		return false
	}
	info, err := os.Stat(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	return err == nil && info.Mode().IsRegular()
}

// Delete removes a file previously returned by Save. Paths that escape the
// upload directory are rejected.
func (s *LocalStorage) Delete(_ context.Context, location string) error {
	rel := strings.TrimPrefix(location, PublicPrefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return fmt.Errorf("empty file path")
	}

	baseAbs, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.baseDir, rel))
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}
	if realBase, err := filepath.EvalSymlinks(baseAbs); err == nil {
		baseAbs = realBase
	}
	if !strings.HasPrefix(absPath, baseAbs+string(os.PathSeparator)) {
		return fmt.Errorf("file path outside uploads directory")
	}

	if err := os.Remove(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
