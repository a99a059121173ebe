package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Scheme prefixes object locations.
const Scheme = "s3://"

// Object addresses an object (or a prefix, when Key ends with "/") in a bucket.
type Object struct {
	Bucket string
	Key    string
}

// String renders the object as an s3:// location.
func (o Object) String() string {
	return Scheme + o.Bucket + "/" + o.Key
}

// IsPrefix reports whether the object addresses a prefix rather than a single object.
func (o Object) IsPrefix() bool {
	return o.Key == "" || strings.HasSuffix(o.Key, "/")
}

// IsObjectLocation reports whether location uses the s3:// scheme.
func IsObjectLocation(location string) bool {
	return strings.HasPrefix(location, Scheme)
}

// ParseLocation parses "s3://bucket/key". The bucket falls back to defaultBucket
// when the location is "s3:///key".
func ParseLocation(location, defaultBucket string) (Object, error) {
	if !IsObjectLocation(location) {
		return Object{}, fmt.Errorf("not an object location: %q", location)
	}
	rest := strings.TrimPrefix(location, Scheme)
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		bucket = defaultBucket
	}
	if bucket == "" {
		return Object{}, fmt.Errorf("object location %q has no bucket", location)
	}
	return Object{Bucket: bucket, Key: key}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// ListKeys returns the keys below prefix, recursively, in listing order.
func ListKeys(ctx context.Context, client Client, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
