package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ignite/clinic-events-processor/internal/config"
)

// Storage abstracts where uploaded CSV files live between upload and
// processing. The aggregation core only ever depends on the readable
// stream side of this contract.
type Storage interface {
	// Save persists the body under key. The body may be an unbounded
	// stream; implementations must not buffer it whole.
	Save(ctx context.Context, key string, body io.Reader) error

	// GetStream returns a sequential reader for the object at key. The
	// caller owns closing it.
	GetStream(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}

var ErrInvalidKey = errors.New("invalid storage key")

// New selects a backend from configuration: "s3" for the remote object
// store, "local" (or empty) for the filesystem spool used in direct mode.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("storage type s3 requires s3_bucket (set S3_BUCKET, or SKIP_S3=true for local spooling)")
		}
		return NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.AWSProfile)
	case "", "local":
		return NewLocalStorage(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
