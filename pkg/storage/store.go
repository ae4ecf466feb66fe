package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/bidportal-archiver/pkg/config"
)

// ObjectStore is a bucket scoped blob store. Remove treats a missing key as success.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

// New selects the driver named in cfg and makes sure the given buckets exist.
func New(ctx context.Context, cfg config.StorageConfig, buckets ...string) (ObjectStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.StorageDriverMinio:
		store, err := NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBuckets(ctx, buckets...); err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverS3:
		return NewS3Store(cfg)
	case config.StorageDriverLocal, "":
		store, err := NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBuckets(ctx, buckets...); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func joinURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}
