package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioAPI defines the subset of the minio client used by MinioLister.
type MinioAPI interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// MinioLister implements Lister on top of minio-go.
// minio only groups by "/", so other delimiters are rejected.
type MinioLister struct {
	client MinioAPI
}

// NewMinioLister wraps a minio client.
func NewMinioLister(client MinioAPI) *MinioLister {
	return &MinioLister{client: client}
}

// ListCommonPrefixes implements Lister.
func (l *MinioLister) ListCommonPrefixes(ctx context.Context, bucket, delimiter, prefix string) ([]string, error) {
	if delimiter != "/" {
		return nil, fmt.Errorf("minio: unsupported delimiter %q", delimiter)
	}

	// Cancelling stops the listing goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prefixes []string
	for obj := range l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, classifyMinioError(bucket, obj.Err)
		}
		// Non-recursive listings report common prefixes as keys ending in "/".
		if strings.HasSuffix(obj.Key, "/") && obj.Key != prefix {
			prefixes = append(prefixes, obj.Key)
		}
	}
	return prefixes, nil
}

// ListObjects implements Lister.
func (l *MinioLister) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, classifyMinioError(bucket, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// HasObjects implements Lister.
func (l *MinioLister) HasObjects(ctx context.Context, bucket, prefix string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obj, ok := <-l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true, MaxKeys: 1})
	if !ok {
		return false, nil
	}
	if obj.Err != nil {
		return false, classifyMinioError(bucket, obj.Err)
	}
	return true, nil
}

func classifyMinioError(bucket string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return fmt.Errorf("minio: list objects: %w", err)
}
