package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/AnshRaj112/inkwell-backend/internal/config"
)

// ObjectStore keeps blobs by key and hands out URLs clients can download them from.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeCloudinary StorageType = "cloudinary"
	StorageTypeS3         StorageType = "s3"
)

// NewObjectStore picks the backend named by cfg.StorageType.
func NewObjectStore(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch StorageType(strings.ToLower(cfg.StorageType)) {
	case StorageTypeCloudinary:
		store, err := NewCloudinaryStore(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("AWS_S3_BUCKET is required for s3 storage")
		}
		store, err := NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// AvatarKey is where a user's profile picture is stored.
func AvatarKey(userID string) string {
	return "avatars/" + userID
}
