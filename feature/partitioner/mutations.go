package partitioner

import (
	"context"
	"fmt"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/partition"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// maxStalledLookups is how many consecutive lookups may return every key
// unprocessed before PartitionsToCreate gives up.
const maxStalledLookups = 3

// PartitionsToCreate returns the candidates the catalog does not hold with the
// same values and location, sorted.
func (p *Partitioner) PartitionsToCreate(ctx context.Context, candidates []partition.Partition) ([]partition.Partition, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	found := partition.NewSet()
	chunks := lo.Chunk(candidates, catalog.MaxBatchGetPartitions)
	for i, chunk := range chunks {
		p.logger.Debug("Fetching partitions", zap.Int("chunk", i+1), zap.Int("of", len(chunks)), zap.Int("count", len(chunk)))

		pending := lo.Map(chunk, func(c partition.Partition, _ int) types.PartitionValueList {
			return types.PartitionValueList{Values: c.Values}
		})
		stalled := 0
		for len(pending) > 0 {
			out, err := p.api.BatchGetPartition(ctx, &glue.BatchGetPartitionInput{
				DatabaseName:    aws.String(p.database),
				TableName:       aws.String(p.table),
				PartitionsToGet: pending,
			})
			if err != nil {
				return nil, fmt.Errorf("batch get partitions of %s.%s: %w", p.database, p.table, err)
			}
			for _, r := range out.Partitions {
				found.Add(partition.FromCatalog(r))
			}
			// Unprocessed keys are asked for again. A lookup that serves none of
			// them counts as stalled.
			if len(out.UnprocessedKeys) >= len(pending) {
				stalled++
				if stalled >= maxStalledLookups {
					return nil, fmt.Errorf("batch get partitions of %s.%s: %d keys left unprocessed", p.database, p.table, len(out.UnprocessedKeys))
				}
				p.logger.Debug("Retrying unprocessed partitions", zap.Int("count", len(out.UnprocessedKeys)), zap.Int("attempt", stalled))
			} else {
				stalled = 0
			}
			pending = out.UnprocessedKeys
		}
	}

	return partition.NewSet(candidates...).Minus(found), nil
}

// CreatePartitions registers partitions, inheriting every storage descriptor
// field from the table except the location. Per-item failures, such as
// partitions created concurrently by someone else, are returned as item errors
// and do not stop the remaining chunks.
func (p *Partitioner) CreatePartitions(ctx context.Context, ps []partition.Partition) ([]catalog.ItemError, error) {
	var errs []catalog.ItemError
	chunks := lo.Chunk(ps, catalog.MaxBatchCreatePartitions)
	for i, chunk := range chunks {
		p.logger.Debug("Creating partitions", zap.Int("chunk", i+1), zap.Int("of", len(chunks)), zap.Int("count", len(chunk)))

		out, err := p.api.BatchCreatePartition(ctx, &glue.BatchCreatePartitionInput{
			DatabaseName:       aws.String(p.database),
			TableName:          aws.String(p.table),
			PartitionInputList: lo.Map(chunk, func(pt partition.Partition, _ int) types.PartitionInput { return p.partitionInput(pt) }),
		})
		if err != nil {
			return errs, &catalog.IncompleteError{
				Sent: i * catalog.MaxBatchCreatePartitions,
				Err:  fmt.Errorf("batch create partitions of %s.%s: %w", p.database, p.table, err),
			}
		}
		errs = append(errs, catalog.PartitionErrors(out.Errors)...)
	}
	return errs, nil
}

func (p *Partitioner) partitionInput(pt partition.Partition) types.PartitionInput {
	sd := *p.sd
	sd.Location = aws.String(pt.Location)
	return types.PartitionInput{
		Values:            pt.Values,
		StorageDescriptor: &sd,
	}
}

// DeletePartitions removes partitions by values. Per-item failures are
// returned as item errors and do not stop the remaining chunks.
func (p *Partitioner) DeletePartitions(ctx context.Context, ps []partition.Partition) ([]catalog.ItemError, error) {
	var errs []catalog.ItemError
	chunks := lo.Chunk(ps, catalog.MaxBatchDeletePartitions)
	for i, chunk := range chunks {
		p.logger.Debug("Deleting partitions", zap.Int("chunk", i+1), zap.Int("of", len(chunks)), zap.Int("count", len(chunk)))

		out, err := p.api.BatchDeletePartition(ctx, &glue.BatchDeletePartitionInput{
			DatabaseName: aws.String(p.database),
			TableName:    aws.String(p.table),
			PartitionsToDelete: lo.Map(chunk, func(pt partition.Partition, _ int) types.PartitionValueList {
				return types.PartitionValueList{Values: pt.Values}
			}),
		})
		if err != nil {
			return errs, &catalog.IncompleteError{
				Sent: i * catalog.MaxBatchDeletePartitions,
				Err:  fmt.Errorf("batch delete partitions of %s.%s: %w", p.database, p.table, err),
			}
		}
		errs = append(errs, catalog.PartitionErrors(out.Errors)...)
	}
	return errs, nil
}

// UpdatePartitionLocations points each catalog partition with the same values
// at the moved partition's location. The catalog record is re-read so that
// fields other than the location are kept. Partitions missing from the catalog
// and rejected updates are returned as item errors.
func (p *Partitioner) UpdatePartitionLocations(ctx context.Context, moved []partition.Partition) ([]catalog.ItemError, error) {
	var errs []catalog.ItemError
	for i, m := range moved {
		current, err := p.api.GetPartition(ctx, &glue.GetPartitionInput{
			DatabaseName:    aws.String(p.database),
			TableName:       aws.String(p.table),
			PartitionValues: m.Values,
		})
		if err != nil {
			if catalog.IsNotFound(err) {
				errs = append(errs, catalog.ItemErrorFrom(m.Values, err))
				continue
			}
			return errs, &catalog.IncompleteError{
				Sent: i,
				Err:  fmt.Errorf("get partition %s of %s.%s: %w", m, p.database, p.table, err),
			}
		}

		p.logger.Debug("Updating partition", zap.Stringer("values", m), zap.String("location", m.Location))
		_, err = p.api.UpdatePartition(ctx, &glue.UpdatePartitionInput{
			DatabaseName:       aws.String(p.database),
			TableName:          aws.String(p.table),
			PartitionValueList: m.Values,
			PartitionInput:     updateInput(current.Partition, m.Location),
		})
		if err != nil {
			errs = append(errs, catalog.ItemErrorFrom(m.Values, err))
		}
	}
	return errs, nil
}

// updateInput copies the fields of a catalog partition that UpdatePartition
// accepts, replacing the storage location. Creation time and the database and
// table echoes are dropped.
func updateInput(current *types.Partition, location string) *types.PartitionInput {
	in := &types.PartitionInput{
		Values:           current.Values,
		Parameters:       current.Parameters,
		LastAccessTime:   current.LastAccessTime,
		LastAnalyzedTime: current.LastAnalyzedTime,
	}
	sd := types.StorageDescriptor{}
	if current.StorageDescriptor != nil {
		sd = *current.StorageDescriptor
	}
	sd.Location = aws.String(location)
	in.StorageDescriptor = &sd
	return in
}
