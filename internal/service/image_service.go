package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const maxImageSize = 10 << 20 // 10 MiB

// ObjectStore abstracts the S3-compatible store that holds image bytes.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// MinioStore implements ObjectStore for MinIO/S3 compatible storage.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Put uploads an object.
func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PresignGet generates a pre-signed GET URL.
func (m *MinioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return url.String(), nil
}

// ImageService uploads cover images and avatars to the object store and
// hands back the reference URL, the only form in which images are persisted.
type ImageService struct {
	store     ObjectStore
	publicURL string
	bucket    string
}

// NewImageService returns a new ImageService. A nil store means image upload
// is disabled (no object store configured).
func NewImageService(store ObjectStore, cfg *config.Config) *ImageService {
	return &ImageService{
		store:     store,
		publicURL: strings.TrimRight(cfg.MinioPublicURL, "/"),
		bucket:    cfg.MinioBucket,
	}
}

// Upload stores the image bytes under a fresh key and returns the URL to
// persist on the post or profile.
func (s *ImageService) Upload(ctx context.Context, r io.Reader, size int64, filename, contentType string) (string, error) {
	if s.store == nil {
		return "", models.NewValidationError("Image storage is not configured")
	}
	if size <= 0 || size > maxImageSize {
		return "", models.NewValidationError("Image must be between 1 byte and 10 MiB")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", models.NewValidationError("Only image uploads are accepted")
	}

	key := uuid.New().String() + strings.ToLower(path.Ext(filename))
	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return "", models.NewInternalError(err)
	}

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
	}

	// Fall back to a long-lived presigned URL when no public base is set.
	url, err := s.store.PresignGet(ctx, key, 7*24*time.Hour)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}
