// Package storage uploads user files to S3-compatible object storage
// with magic-byte MIME detection, upload validation rules and
// presigned download URLs.
package storage

import (
	"context"
	"io"
	"time"
)

// Visibility controls who can read a stored object.
type Visibility string

const (
	// Private objects are reachable only through signed URLs.
	Private Visibility = "private"
	// PublicRead objects are readable by anyone who has the URL.
	PublicRead Visibility = "public-read"
)

// File describes a stored object.
type File struct {
	Key         string
	ContentType string
	Visibility  Visibility
	Size        int64
}

// Storage is the file storage surface exposed to handlers.
type Storage interface {
	// Put uploads size bytes from r. The key is generated from the
	// upload options unless WithKey is given.
	Put(ctx context.Context, r io.Reader, size int64, opts ...PutOption) (*File, error)

	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Head returns object metadata without fetching the body.
	Head(ctx context.Context, key string) (*File, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Copy duplicates an object within the bucket.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// URL returns an access URL for the object: signed by default,
	// public when requested via WithPublicURL.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// Default limits applied when Config leaves them zero.
const (
	DefaultRegion          = "us-east-1"
	DefaultMaxDownloadSize = int64(50 << 20)
	DefaultURLExpiry       = 15 * time.Minute
)

// Config holds S3-compatible storage settings. Endpoint and PathStyle
// support MinIO and other non-AWS backends.
type Config struct {
	Bucket          string     `yaml:"bucket" env:"STORAGE_BUCKET,required"`
	AccessKey       string     `yaml:"access_key" env:"STORAGE_ACCESS_KEY,required"`
	SecretKey       string     `yaml:"secret_key" env:"STORAGE_SECRET_KEY,required"`
	Region          string     `yaml:"region" env:"STORAGE_REGION" envDefault:"us-east-1"`
	Endpoint        string     `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	PublicURL       string     `yaml:"public_url" env:"STORAGE_PUBLIC_URL"`
	Visibility      Visibility `yaml:"visibility" env:"STORAGE_VISIBILITY" envDefault:"private"`
	PathStyle       bool       `yaml:"path_style" env:"STORAGE_PATH_STYLE"`
	MaxDownloadSize int64      `yaml:"max_download_size" env:"STORAGE_MAX_DOWNLOAD_SIZE"`
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Visibility == "" {
		c.Visibility = Private
	}
	if c.MaxDownloadSize == 0 {
		c.MaxDownloadSize = DefaultMaxDownloadSize
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}
