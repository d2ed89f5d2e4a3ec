package partitioner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/partition"
	"github.com/Journera/glutil/core/scanner"
	"github.com/Journera/glutil/core/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"go.uber.org/zap"
)

const s3Scheme = "s3://"

// Partitioner reconciles the partitions of one catalog table with the
// directories that hold its data.
type Partitioner struct {
	api      catalog.API
	scanner  *scanner.Scanner
	logger   *zap.Logger
	database string
	table    string
	profile  string
	bucket   string
	prefix   string
	keys     []partition.Key
	sd       *types.StorageDescriptor
}

// Option configures a Partitioner.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	profile string
	clock   func() time.Time
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithProfile names the aws profile in configuration error hints.
func WithProfile(profile string) Option {
	return func(o *options) {
		o.profile = profile
	}
}

// WithClock replaces the clock used for day-limited scans.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// New reads the table definition and returns a partitioner for it. Unknown
// tables and denied access are reported as *catalog.ConfigError.
func New(ctx context.Context, api catalog.API, lister storage.Lister, database, table string, opts ...Option) (*Partitioner, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	out, err := api.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return nil, catalog.Classify(err, database, table, o.profile)
	}
	if out.Table == nil || out.Table.StorageDescriptor == nil {
		return nil, fmt.Errorf("table %s.%s has no storage descriptor", database, table)
	}

	location := aws.ToString(out.Table.StorageDescriptor.Location)
	bucket, prefix, err := SplitLocation(location)
	if err != nil {
		return nil, fmt.Errorf("table %s.%s: %w", database, table, err)
	}

	var scanOpts []scanner.Option
	if o.clock != nil {
		scanOpts = append(scanOpts, scanner.WithClock(o.clock))
	}

	return &Partitioner{
		api:      api,
		scanner:  scanner.New(lister, bucket, scanOpts...),
		logger:   o.logger.With(zap.String("database", database), zap.String("table", table)),
		database: database,
		table:    table,
		profile:  o.profile,
		bucket:   bucket,
		prefix:   prefix,
		keys:     partition.KeysFromColumns(out.Table.PartitionKeys),
		sd:       out.Table.StorageDescriptor,
	}, nil
}

// SplitLocation splits "s3://bucket/path/" into bucket and key prefix. The
// prefix always ends with "/" unless it is empty.
func SplitLocation(location string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return "", "", fmt.Errorf("location %q is not an s3 location", location)
	}
	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("location %q has no bucket", location)
	}
	return bucket, partition.NormalizeLocation(prefix), nil
}

// Database returns the database name.
func (p *Partitioner) Database() string { return p.database }

// Table returns the table name.
func (p *Partitioner) Table() string { return p.table }

// Bucket returns the bucket holding the table data.
func (p *Partitioner) Bucket() string { return p.bucket }

// Prefix returns the key prefix of the table data within its bucket.
func (p *Partitioner) Prefix() string { return p.prefix }

// Keys returns the partition key schema.
func (p *Partitioner) Keys() []partition.Key { return p.keys }

// PartitionsOnDisk scans storage for partitions. See scanner.Scanner.Scan for
// the meaning of limitDays.
func (p *Partitioner) PartitionsOnDisk(ctx context.Context, limitDays int) ([]partition.Partition, error) {
	return p.scanner.Scan(ctx, p.prefix, p.keys, limitDays)
}

// ExistingPartitions returns every partition registered in the catalog, sorted.
func (p *Partitioner) ExistingPartitions(ctx context.Context) ([]partition.Partition, error) {
	raw, err := catalog.AllPartitions(ctx, p.api, p.database, p.table)
	if err != nil {
		return nil, fmt.Errorf("get partitions of %s.%s: %w", p.database, p.table, err)
	}

	out := make([]partition.Partition, 0, len(raw))
	for _, r := range raw {
		out = append(out, partition.FromCatalog(r))
	}
	partition.Sort(out)
	return out, nil
}
