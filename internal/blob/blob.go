// Package blob stores generated report artifacts on the local filesystem
// or in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned for keys that do not exist.
var ErrNotFound = errors.New("blob not found")

// Drivers accepted by Open.
const (
	DriverFilesystem = "fs"
	DriverS3         = "s3"
)

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is a flat key-value object store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a driver.
type Config struct {
	Driver   string
	Dir      string
	Bucket   string
	Region   string
	Endpoint string
}

// Open builds the store named by cfg.Driver, defaulting to the filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverFilesystem:
		s, err := NewFS(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverS3:
		s, err := NewS3(ctx, S3Config{Bucket: cfg.Bucket, Region: cfg.Region, Endpoint: cfg.Endpoint, PathStyle: cfg.Endpoint != ""})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}

// sanitizeKey rejects empty, absolute and escaping keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}
