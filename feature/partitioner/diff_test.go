package partitioner_test

import (
	"context"
	"sync"
	"testing"
	"time"

	cmocks "github.com/Journera/glutil/core/catalog/mocks"
	"github.com/Journera/glutil/core/partition"
	smocks "github.com/Journera/glutil/core/storage/mocks"
	"github.com/Journera/glutil/feature/partitioner"

	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	valuesA = []string{"2019", "01", "01", "01"}
	valuesB = []string{"2019", "01", "02", "02"}
)

func TestMissing(t *testing.T) {
	existing := []partition.Partition{
		partition.New(valuesA, "s3://b/X/"),
		partition.New(valuesB, "s3://b/Y/"),
	}
	disk := []partition.Partition{
		partition.New(valuesA, "s3://b/X/"),
		partition.New(valuesA, "s3://b/Z/"),
	}

	assert.Equal(t, []partition.Partition{existing[1]}, partitioner.Missing(existing, disk))
	assert.Equal(t, []partition.Partition{existing[1]}, partitioner.Bad(existing, disk))
	assert.Empty(t, partitioner.Missing(existing[:1], disk))
}

func TestBad_WrongLocation(t *testing.T) {
	existing := []partition.Partition{
		partition.New(valuesA, "s3://b/X/"),
		partition.New(valuesB, "s3://other-bucket/Y/"),
	}
	disk := []partition.Partition{
		partition.New(valuesA, "s3://b/Z/"),
		partition.New(valuesB, "s3://b/Y/"),
	}

	assert.Empty(t, partitioner.Missing(existing, disk))
	assert.Equal(t, existing, partitioner.Bad(existing, disk))
}

func TestBad_Deduplicates(t *testing.T) {
	existing := []partition.Partition{partition.New(valuesB, "s3://b/Y/")}
	// B is both missing and absent from disk; it is reported once.
	got := partitioner.Bad(existing, nil)
	assert.Len(t, got, 1)
}

func TestMoved(t *testing.T) {
	existing := []partition.Partition{
		partition.New(valuesA, "s3://b/old/A/"),
		partition.New(valuesB, "s3://b/B/"),
		partition.New([]string{"2019", "02", "01", "00"}, "s3://b/gone/"),
	}
	disk := []partition.Partition{
		partition.New(valuesA, "s3://b/new/A/"),
		partition.New(valuesB, "s3://b/B/"),
	}

	got := partitioner.Moved(existing, disk)
	require.Len(t, got, 1)
	assert.Equal(t, "s3://b/new/A/", got[0].Location)
}

func TestPartitioner_Reconciliation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.Put(bucket,
		"events/2019/01/01/01/a.json",
		"events/moved/2019/01/01/02/a.json",
		"events/2019/01/01/03/a.json",
	)
	f.glue.AddPartition(db, table, []string{"2019", "01", "01", "01"}, location+"2019/01/01/01/")
	f.glue.AddPartition(db, table, []string{"2019", "01", "01", "03"}, "s3://data/old/2019/01/01/03/")
	f.glue.AddPartition(db, table, []string{"2019", "01", "01", "04"}, location+"2019/01/01/04/")
	p := f.partitioner(t)

	missing, err := p.MissingPartitions(ctx)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, []string{"2019", "01", "01", "04"}, missing[0].Values)

	bad, err := p.BadPartitions(ctx)
	require.NoError(t, err)
	require.Len(t, bad, 2)
	assert.Equal(t, []string{"2019", "01", "01", "03"}, bad[0].Values)
	assert.Equal(t, []string{"2019", "01", "01", "04"}, bad[1].Values)

	moved, err := p.FindMovedPartitions(ctx)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, location+"2019/01/01/03/", moved[0].Location)

	errs, err := p.UpdatePartitionLocations(ctx, moved)
	require.NoError(t, err)
	assert.Empty(t, errs)

	bad, err = p.BadPartitions(ctx)
	require.NoError(t, err)
	assert.Len(t, bad, 1)
}

// callLog records the order of remote calls and whether two ever overlapped.
type callLog struct {
	mu         sync.Mutex
	order      []string
	inFlight   int
	overlapped bool
}

func (l *callLog) enter(name string) {
	l.mu.Lock()
	l.order = append(l.order, name)
	l.inFlight++
	if l.inFlight > 1 {
		l.overlapped = true
	}
	l.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
}

func (l *callLog) leave() {
	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
}

type loggedGlue struct {
	*cmocks.Glue
	log *callLog
}

func (g loggedGlue) GetPartitions(ctx context.Context, in *glue.GetPartitionsInput, opts ...func(*glue.Options)) (*glue.GetPartitionsOutput, error) {
	g.log.enter("catalog")
	defer g.log.leave()
	return g.Glue.GetPartitions(ctx, in, opts...)
}

type loggedStore struct {
	*smocks.Memory
	log *callLog
}

func (s loggedStore) ListCommonPrefixes(ctx context.Context, bucket, delimiter, prefix string) ([]string, error) {
	s.log.enter("store")
	defer s.log.leave()
	return s.Memory.ListCommonPrefixes(ctx, bucket, delimiter, prefix)
}

func (s loggedStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	s.log.enter("store")
	defer s.log.leave()
	return s.Memory.ListObjects(ctx, bucket, prefix)
}

func TestPartitioner_ReadsCatalogThenStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.Put(bucket, "events/2019/01/01/01/a.json")
	f.glue.AddPartition(db, table, []string{"2019", "01", "01", "01"}, location+"2019/01/01/01/")

	log := &callLog{}
	p, err := partitioner.New(ctx, loggedGlue{f.glue, log}, loggedStore{f.store, log}, db, table,
		partitioner.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	missing, err := p.MissingPartitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NotEmpty(t, log.order)
	assert.Equal(t, "catalog", log.order[0])
	assert.Contains(t, log.order, "store")
	assert.False(t, log.overlapped)
}
