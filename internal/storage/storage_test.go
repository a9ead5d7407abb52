package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sahabattani/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	assert.Equal(t, storage.ModeLocal, s.Mode())

	ctx := context.Background()

	t.Run("Success - save and delete", func(t *testing.T) {
		path, err := s.Save(ctx, 7, "Daun.JPG", "image/jpeg", []byte("fake image"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, "/uploads/detections/7/"))
		assert.True(t, strings.HasSuffix(path, ".jpg"))

		onDisk := filepath.Join(dir, strings.TrimPrefix(path, "/uploads/"))
		data, err := os.ReadFile(onDisk)
		require.NoError(t, err)
		assert.Equal(t, "fake image", string(data))

		require.NoError(t, s.Delete(ctx, path))
		_, err = os.Stat(onDisk)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Error - traversal rejected", func(t *testing.T) {
		err := s.Delete(ctx, "/uploads/../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("Error - save without owner", func(t *testing.T) {
		_, err := s.Save(ctx, 0, "leaf.png", "image/png", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("Success - ownership follows the uploader", func(t *testing.T) {
		path, err := s.Save(ctx, 7, "leaf.png", "image/png", []byte("x"))
		require.NoError(t, err)

		assert.True(t, s.Owns(path, 7))
		assert.False(t, s.Owns(path, 8))
		assert.False(t, s.Owns(path, 0))
		assert.False(t, s.Owns("/uploads/detections/7/missing.png", 7))
		assert.False(t, s.Owns("/uploads/detections/7/../8/leaf.png", 7))
		assert.False(t, s.Owns(strings.TrimPrefix(path, "/uploads"), 7))
		assert.False(t, s.Owns("/uploads/detections/7/", 7))
	})
}

type fakeS3 struct {
	s3iface.S3API
	putKeys    []string
	deleteKeys []string
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.putKeys = append(f.putKeys, aws.StringValue(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleteKeys = append(f.deleteKeys, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - bucket URL", func(t *testing.T) {
		client := &fakeS3{}
		s := storage.NewS3StorageWithClient(client, "sahabat", "ap-southeast-1", "")

		url, err := s.Save(ctx, 3, "leaf.png", "image/png", []byte("x"))
		require.NoError(t, err)
		require.Len(t, client.putKeys, 1)
		assert.True(t, strings.HasPrefix(client.putKeys[0], "detections/3/"))
		assert.Equal(t, "https://sahabat.s3.ap-southeast-1.amazonaws.com/"+client.putKeys[0], url)
		assert.True(t, s.Owns(url, 3))
		assert.False(t, s.Owns(url, 4))

		require.NoError(t, s.Delete(ctx, url))
		assert.Equal(t, client.putKeys, client.deleteKeys)
	})

	t.Run("Success - CloudFront URL", func(t *testing.T) {
		client := &fakeS3{}
		s := storage.NewS3StorageWithClient(client, "sahabat", "ap-southeast-1", "https://cdn.example.com/")

		url, err := s.Save(ctx, 3, "leaf.png", "image/png", []byte("x"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/detections/3/"))
		assert.True(t, s.Owns(url, 3))

		require.NoError(t, s.Delete(ctx, url))
		assert.Equal(t, client.putKeys, client.deleteKeys)
	})

	t.Run("Error - bare keys and foreign hosts are refused", func(t *testing.T) {
		client := &fakeS3{}
		s := storage.NewS3StorageWithClient(client, "sahabat", "ap-southeast-1", "")

		for _, location := range []string{
			"detections/3/2026/10/leaf.png",
			"/detections/3/2026/10/leaf.png",
			"https://evil.example.com/detections/3/2026/10/leaf.png",
			"https://sahabat.s3.ap-southeast-1.amazonaws.com/config/secrets.json",
		} {
			assert.False(t, s.Owns(location, 3), location)
			assert.Error(t, s.Delete(ctx, location), location)
		}
		assert.Empty(t, client.deleteKeys)
	})
}
