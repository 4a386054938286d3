package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	cfg "github.com/templui/filenest/internal/config"
)

var ErrBlobNotFound = errors.New("blob not found")

// Storage persists opaque file content keyed by an object key.
type Storage interface {
	// Save stores the content of r at key, replacing any existing object
	Save(ctx context.Context, key string, r io.Reader) error

	// Open returns a reader for the object at key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at key. Missing objects are not an error
	Delete(ctx context.Context, key string) error
}

// New builds the storage backend selected by STORAGE_DRIVER.
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverLocal:
		return NewLocalStorage(c.StoragePath)
	case cfg.StorageDriverS3:
		return NewS3(c)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// ReadAll reads the whole object at key.
func ReadAll(ctx context.Context, s Storage, key string) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}
