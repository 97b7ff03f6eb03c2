// Package filestore defines where schema snapshots are exported to.
//
// Providers (currently MinIO and anything speaking the S3 protocol) implement
// Store. Callers depend only on this package, never on a provider package.
//
// Usage:
//
//	loc, err := filestore.ParseLocation("s3://snapshots/prod/public.json")
//	store, err := minio.New(filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin"))
//	if err != nil { ... }
//	defer store.Close()
//
//	info, err := store.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(data), int64(len(data)), "application/json")
package filestore

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/koustreak/dbinfo/internal/errs"
)

// Store is the interface all object storage providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// PutObject uploads size bytes from r to key inside bucket, replacing any
	// existing object. size may be -1 when unknown.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*ObjectInfo, error)

	// StatObject returns metadata for the object at key inside bucket
	// without downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)
}

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	Bucket string
	Key    string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	ContentType  string
	ETag         string
	LastModified time.Time
}

// Location is a bucket/key pair parsed from an s3:// URL.
type Location struct {
	Bucket string
	Key    string
}

// String renders the location back as an s3:// URL.
func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// IsLocation reports whether target names an object store location rather
// than a local file.
func IsLocation(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// ParseLocation splits "s3://bucket/path/to/key" into its bucket and key.
// Both parts are required.
func ParseLocation(target string) (Location, error) {
	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		return Location{}, errs.Newf(errs.ErrKindInvalidInput, "%q is not an s3:// location", target)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, errs.Newf(errs.ErrKindInvalidInput, "%q needs both a bucket and a key", target)
	}
	return Location{Bucket: bucket, Key: key}, nil
}
