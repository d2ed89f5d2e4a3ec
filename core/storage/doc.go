// Package storage provides the object-store listing used to discover partitions.
//
// The Lister interface exposes the three listing shapes the scanner needs:
// delimiter-grouped common prefixes, a flat recursive listing, and a cheap
// existence check. Two drivers implement it:
//
//   - s3: the AWS SDK v2 client, following continuation tokens.
//   - minio: minio-go, for self-hosted S3-compatible stores.
//
// # Usage
//
//	lister, err := storage.NewClient(cfg.Storage, awsCfg)
//	prefixes, err := lister.ListCommonPrefixes(ctx, "bucket", "/", "table/")
//
// Test doubles live in core/storage/mocks.
package storage
