package partitioner

import (
	"context"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/partition"
)

// Missing returns the existing partitions whose values are not on disk at any
// location, sorted.
func Missing(existing, disk []partition.Partition) []partition.Partition {
	onDisk := make(map[string]struct{}, len(disk))
	for _, d := range disk {
		onDisk[partition.ValuesKey(d.Values)] = struct{}{}
	}

	out := make([]partition.Partition, 0)
	for _, e := range existing {
		if _, ok := onDisk[partition.ValuesKey(e.Values)]; !ok {
			out = append(out, e)
		}
	}
	partition.Sort(out)
	return out
}

// Bad returns the existing partitions that are missing from disk or registered
// at a location where no matching partition exists, sorted.
func Bad(existing, disk []partition.Partition) []partition.Partition {
	wrong := partition.NewSet(partition.NewSet(existing...).Minus(partition.NewSet(disk...))...)
	return wrong.Union(partition.NewSet(Missing(existing, disk)...)).Sorted()
}

// Moved returns the disk partitions whose values are registered in the catalog
// at a different location. Catalog partitions without a disk counterpart are
// missing, not moved, and are skipped.
func Moved(existing, disk []partition.Partition) []partition.Partition {
	idx := partition.NewIndex(disk)

	out := make([]partition.Partition, 0)
	for _, e := range existing {
		d, ok := idx.Get(e)
		if ok && !d.Equal(e) {
			out = append(out, d)
		}
	}
	return out
}

// MissingPartitions returns catalog partitions whose values are not on disk.
func (p *Partitioner) MissingPartitions(ctx context.Context) ([]partition.Partition, error) {
	existing, disk, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Missing(existing, disk), nil
}

// BadPartitions returns catalog partitions that do not match disk.
func (p *Partitioner) BadPartitions(ctx context.Context) ([]partition.Partition, error) {
	existing, disk, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Bad(existing, disk), nil
}

// FindMovedPartitions returns disk partitions registered elsewhere in the catalog.
func (p *Partitioner) FindMovedPartitions(ctx context.Context) ([]partition.Partition, error) {
	existing, disk, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Moved(existing, disk), nil
}

// snapshot reads the catalog, then the object store.
func (p *Partitioner) snapshot(ctx context.Context) (existing, disk []partition.Partition, err error) {
	existing, err = p.ExistingPartitions(ctx)
	if err != nil {
		return nil, nil, err
	}
	disk, err = p.PartitionsOnDisk(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	return existing, disk, nil
}

// CreateResult is the outcome of CreateNewPartitions.
type CreateResult struct {
	// Found are the partitions on disk.
	Found []partition.Partition
	// ToCreate are the partitions that were not yet registered.
	ToCreate []partition.Partition
	// Errors are the per-item failures of the create calls.
	Errors []catalog.ItemError
}

// CreateNewPartitions scans disk and registers every partition the catalog
// does not hold yet.
func (p *Partitioner) CreateNewPartitions(ctx context.Context, limitDays int) (*CreateResult, error) {
	found, err := p.PartitionsOnDisk(ctx, limitDays)
	if err != nil {
		return nil, err
	}
	toCreate, err := p.PartitionsToCreate(ctx, found)
	if err != nil {
		return nil, err
	}

	res := &CreateResult{Found: found, ToCreate: toCreate, Errors: []catalog.ItemError{}}
	if len(toCreate) == 0 {
		return res, nil
	}
	errs, err := p.CreatePartitions(ctx, toCreate)
	res.Errors = append(res.Errors, errs...)
	return res, err
}
