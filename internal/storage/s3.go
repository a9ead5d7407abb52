package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Storage struct {
	client        s3iface.S3API
	bucket        string
	region        string
	cloudFrontURL string
}

func NewS3Storage(bucket, region, cloudFrontURL string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when USE_S3=true")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return NewS3StorageWithClient(s3.New(sess), bucket, region, cloudFrontURL), nil
}

func NewS3StorageWithClient(client s3iface.S3API, bucket, region, cloudFrontURL string) *S3Storage {
	return &S3Storage{
		client:        client,
		bucket:        bucket,
		region:        region,
		cloudFrontURL: strings.TrimRight(cloudFrontURL, "/"),
	}
}

func (s *S3Storage) Mode() string { return ModeS3 }

func (s *S3Storage) Save(ctx context.Context, ownerID uint, originalName, contentType string, data []byte) (string, error) {
	if ownerID == 0 {
		return "", fmt.Errorf("owner is required")
	}

	now := time.Now()
	key := ownerDir(ownerID) + now.Format("2006/01") + "/" + objectName(originalName, now)

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, location string) error {
	key := s.extractKey(location)
	if !strings.HasPrefix(key, imagesDir+"/") || path.Clean(key) != key {
		return fmt.Errorf("cannot derive object key from %q", location)
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) publicURL(key string) string {
	if s.cloudFrontURL != "" {
		return s.cloudFrontURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) Owns(location string, ownerID uint) bool {
	return ownedKey(s.extractKey(location), ownerID)
}

// extractKey only accepts URLs shaped like the ones publicURL builds; anything
// else yields an empty key.
func (s *S3Storage) extractKey(location string) string {
	if s.cloudFrontURL != "" {
		if key, ok := strings.CutPrefix(location, s.cloudFrontURL+"/"); ok {
			return key
		}
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme != "https" || u.RawQuery != "" || u.Fragment != "" {
		return ""
	}
	if u.Host != fmt.Sprintf("%s.s3.%s.amazonaws.com", s.bucket, s.region) {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
