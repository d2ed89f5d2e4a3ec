package catalog

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
)

// Upstream batch limits enforced by the Glue API.
const (
	MaxBatchGetPartitions    = 1000
	MaxBatchCreatePartitions = 100
	MaxBatchDeletePartitions = 25
)

// API defines the subset of the Glue client used by the partitioner and the
// database cleaner. This enables testing with mock implementations.
type API interface {
	GetDatabase(ctx context.Context, params *glue.GetDatabaseInput, optFns ...func(*glue.Options)) (*glue.GetDatabaseOutput, error)
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	GetTables(ctx context.Context, params *glue.GetTablesInput, optFns ...func(*glue.Options)) (*glue.GetTablesOutput, error)
	BatchDeleteTable(ctx context.Context, params *glue.BatchDeleteTableInput, optFns ...func(*glue.Options)) (*glue.BatchDeleteTableOutput, error)
	GetPartition(ctx context.Context, params *glue.GetPartitionInput, optFns ...func(*glue.Options)) (*glue.GetPartitionOutput, error)
	GetPartitions(ctx context.Context, params *glue.GetPartitionsInput, optFns ...func(*glue.Options)) (*glue.GetPartitionsOutput, error)
	BatchGetPartition(ctx context.Context, params *glue.BatchGetPartitionInput, optFns ...func(*glue.Options)) (*glue.BatchGetPartitionOutput, error)
	BatchCreatePartition(ctx context.Context, params *glue.BatchCreatePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error)
	BatchDeletePartition(ctx context.Context, params *glue.BatchDeletePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchDeletePartitionOutput, error)
	UpdatePartition(ctx context.Context, params *glue.UpdatePartitionInput, optFns ...func(*glue.Options)) (*glue.UpdatePartitionOutput, error)
}

// NewClient creates a Glue client. endpoint is optional.
func NewClient(awsCfg aws.Config, endpoint string) *glue.Client {
	var opts []func(*glue.Options)
	if endpoint != "" {
		opts = append(opts, func(o *glue.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return glue.NewFromConfig(awsCfg, opts...)
}

var _ API = (*glue.Client)(nil)
