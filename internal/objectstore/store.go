package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"logsearch-backend/config"
	"logsearch-backend/internal/model"
)

var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrObjectNotFound = errors.New("object not found")
)

const (
	DriverS3     = "s3"
	DriverFS     = "fs"
	DriverMemory = "memory"
)

// Store is the object-store capability the search engine depends on.
// Implementations must be safe for concurrent use.
type Store interface {
	// List returns every object in the bucket, recursively, in no particular order.
	List(ctx context.Context, bucket string) ([]model.LogObject, error)
	Get(ctx context.Context, bucket, name string) (io.ReadCloser, error)
	Put(ctx context.Context, bucket, name string, data []byte) error
}

// NewStore builds the store selected by cfg.ObjectStore.Driver.
func NewStore(cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.ObjectStore.Driver) {
	case DriverS3, "minio", "":
		return NewS3Store(cfg.ObjectStore)
	case DriverFS:
		return NewDirStore(cfg.ObjectStore.RootDir)
	case DriverMemory:
		return NewMemoryStore(cfg.ObjectStore.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown object store driver %q", cfg.ObjectStore.Driver)
	}
}
