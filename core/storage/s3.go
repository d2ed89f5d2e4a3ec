package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API defines the subset of the S3 client used by S3Lister.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Lister implements Lister on top of the AWS SDK.
// Every listing follows continuation tokens until the result is complete.
type S3Lister struct {
	client S3API
}

// NewS3Lister wraps an S3 client.
func NewS3Lister(client S3API) *S3Lister {
	return &S3Lister{client: client}
}

// ListCommonPrefixes implements Lister.
func (l *S3Lister) ListCommonPrefixes(ctx context.Context, bucket, delimiter, prefix string) ([]string, error) {
	var prefixes []string
	var continuationToken *string

	for {
		out, err := l.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String(delimiter),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, classifyS3Error(bucket, err)
		}

		for _, cp := range out.CommonPrefixes {
			if cp.Prefix != nil {
				prefixes = append(prefixes, *cp.Prefix)
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuationToken = out.NextContinuationToken
	}

	return prefixes, nil
}

// ListObjects implements Lister.
func (l *S3Lister) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	var continuationToken *string

	for {
		out, err := l.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, classifyS3Error(bucket, err)
		}

		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuationToken = out.NextContinuationToken
	}

	return keys, nil
}

// HasObjects implements Lister.
func (l *S3Lister) HasObjects(ctx context.Context, bucket, prefix string) (bool, error) {
	out, err := l.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, classifyS3Error(bucket, err)
	}
	return len(out.Contents) > 0, nil
}

func classifyS3Error(bucket string, err error) error {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return fmt.Errorf("s3: list objects: %w", err)
}
