// Package storage holds uploaded KYC documents (identity photos, selfies)
// in object storage, with MinIO and Google Cloud Storage backends.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/finacore/apiserver/config"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// New constructs the object storage backend selected by config.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "minio":
		return NewMinioBackend(cfg.Minio)
	case "gcs":
		return NewGCSBackend(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// DocumentKey builds the object key for one of a user's KYC documents.
func DocumentKey(userID, slot string) string {
	return fmt.Sprintf("users/%s/%s", userID, slot)
}
