package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrBucketNotFound is returned when the listed bucket does not exist.
var ErrBucketNotFound = errors.New("storage: bucket not found")

// Lister defines the object-store listing operations used to discover partitions.
type Lister interface {
	// ListCommonPrefixes returns the full keys of the groupings directly below
	// prefix, each ending with the delimiter.
	ListCommonPrefixes(ctx context.Context, bucket, delimiter, prefix string) ([]string, error)
	// ListObjects returns every object key below prefix.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	// HasObjects reports whether at least one object exists below prefix.
	HasObjects(ctx context.Context, bucket, prefix string) (bool, error)
}

// NewClient creates a Lister for the configured driver.
// awsCfg is only used by the s3 driver.
func NewClient(cfg Config, awsCfg aws.Config) (Lister, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverS3:
		return NewS3Lister(newS3Client(cfg, awsCfg)), nil
	case DriverMinio:
		client, err := newMinioClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewMinioLister(client), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newS3Client(cfg Config, awsCfg aws.Config) *s3.Client {
	var opts []func(*s3.Options)

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.Region != "" {
		opts = append(opts, func(o *s3.Options) {
			o.Region = cfg.Region
		})
	}
	if cfg.AccessKey != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, func(o *s3.Options) {
			o.Credentials = provider
		})
	}

	return s3.NewFromConfig(awsCfg, opts...)
}

func newMinioClient(cfg Config) (*minio.Client, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	if endpoint == "" {
		return nil, errors.New("minio driver requires storage.endpoint")
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}
