package partition_test

import (
	"testing"

	"github.com/Journera/glutil/core/partition"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalizesLocation(t *testing.T) {
	a := partition.New([]string{"2019", "01"}, "s3://b/t/2019/01")
	b := partition.New([]string{"2019", "01"}, "s3://b/t/2019/01/")

	assert.Equal(t, "s3://b/t/2019/01/", a.Location)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.ID(), b.ID())
}

func TestEqual(t *testing.T) {
	base := partition.New([]string{"2019", "01", "01", "01"}, "s3://b/t/x/")

	tests := []struct {
		name  string
		other partition.Partition
		want  bool
	}{
		{"Same", partition.New([]string{"2019", "01", "01", "01"}, "s3://b/t/x"), true},
		{"DifferentLocation", partition.New([]string{"2019", "01", "01", "01"}, "s3://b/t/y/"), false},
		{"DifferentValues", partition.New([]string{"2019", "01", "01", "02"}, "s3://b/t/x/"), false},
		{"ShorterValues", partition.New([]string{"2019", "01", "01"}, "s3://b/t/x/"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Equal(tt.other))
			assert.Equal(t, tt.want, base.ID() == tt.other.ID())
		})
	}
}

func TestCompare_TotalOrder(t *testing.T) {
	ps := []partition.Partition{
		partition.New([]string{"2019", "01", "02"}, "s3://b/a/"),
		partition.New([]string{"2019", "01", "02"}, "s3://b/z/"),
		partition.New([]string{"2019", "01", "01"}, "s3://b/m/"),
		partition.New([]string{"2020", "01", "01"}, "s3://b/a/"),
		partition.New([]string{"2019", "10", "01"}, "s3://b/a/"),
	}

	for _, p := range ps {
		assert.Equal(t, 0, p.Compare(p))
		for _, q := range ps {
			assert.Equal(t, -p.Compare(q), q.Compare(p), "antisymmetry %s %s", p.Location, q.Location)
			assert.Equal(t, p.Equal(q), p.Compare(q) == 0)
			for _, r := range ps {
				if p.Compare(q) < 0 && q.Compare(r) < 0 {
					assert.Negative(t, p.Compare(r), "transitivity")
				}
			}
		}
	}
}

func TestSort(t *testing.T) {
	ps := []partition.Partition{
		partition.New([]string{"2019", "02"}, "s3://b/a/"),
		partition.New([]string{"2019", "01"}, "s3://b/a/"),
		partition.New([]string{"2019", "01"}, "s3://b/z/"),
	}

	partition.Sort(ps)

	assert.Equal(t, []string{"2019", "01"}, ps[0].Values)
	assert.Equal(t, "s3://b/z/", ps[0].Location, "earlier locations sort later")
	assert.Equal(t, "s3://b/a/", ps[1].Location)
	assert.Equal(t, []string{"2019", "02"}, ps[2].Values)
}

func TestNewChecked(t *testing.T) {
	keys := []partition.Key{{Name: "year", Type: partition.KeyInt}, {Name: "source", Type: partition.KeyString}}

	p, err := partition.NewChecked(keys, []string{"2019", "web"}, "s3://b/t/2019/web")
	require.NoError(t, err)
	assert.Equal(t, "s3://b/t/2019/web/", p.Location)

	_, err = partition.NewChecked(keys, []string{"2019"}, "s3://b/t/2019")
	assert.Error(t, err)

	_, err = partition.NewChecked(keys, []string{"20x9", "web"}, "s3://b/t/")
	assert.Error(t, err)
}

func TestNewChecked_FixedWidth(t *testing.T) {
	keys := []partition.Key{
		{Name: "year", Type: partition.KeyInt},
		{Name: "Month", Type: partition.KeyInt},
		{Name: "shard", Type: partition.KeyInt},
	}

	_, err := partition.NewChecked(keys, []string{"2019", "01", "7"}, "s3://b/t/2019/01/7/")
	require.NoError(t, err)

	_, err = partition.NewChecked(keys, []string{"2019", "1", "7"}, "s3://b/t/2019/1/7/")
	assert.ErrorIs(t, err, partition.ErrNotFixedWidth)

	_, err = partition.NewChecked(keys, []string{"19", "01", "7"}, "s3://b/t/19/01/7/")
	assert.ErrorIs(t, err, partition.ErrNotFixedWidth)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "year:int", partition.Key{Name: "year", Type: partition.KeyInt}.String())
}

func TestKeyWidth(t *testing.T) {
	assert.Equal(t, 4, partition.Key{Name: "year", Type: partition.KeyInt}.Width())
	assert.Equal(t, 2, partition.Key{Name: "HOUR", Type: partition.KeyInt}.Width())
	assert.Zero(t, partition.Key{Name: "month", Type: partition.KeyString}.Width())
	assert.Zero(t, partition.Key{Name: "shard", Type: partition.KeyInt}.Width())
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, partition.KeyInt, partition.TypeOf("int"))
	assert.Equal(t, partition.KeyInt, partition.TypeOf("BIGINT"))
	assert.Equal(t, partition.KeyString, partition.TypeOf("string"))
	assert.Equal(t, partition.KeyString, partition.TypeOf("varchar(10)"))
}

func TestFromCatalog(t *testing.T) {
	raw := types.Partition{
		Values:            []string{"2019", "01"},
		StorageDescriptor: &types.StorageDescriptor{Location: aws.String("s3://b/t/2019/01")},
		Parameters:        map[string]string{"k": "v"},
	}

	p := partition.FromCatalog(raw)

	assert.Equal(t, "s3://b/t/2019/01/", p.Location)
	require.NotNil(t, p.Raw)
	assert.Equal(t, "v", p.Raw.Parameters["k"])
	assert.Equal(t, "[2019, 01]", p.String())
}

func TestSet(t *testing.T) {
	a := partition.New([]string{"1"}, "s3://b/1/")
	b := partition.New([]string{"2"}, "s3://b/2/")
	c := partition.New([]string{"3"}, "s3://b/3/")

	left := partition.NewSet(a, b, b)
	right := partition.NewSet(b, c)

	assert.Len(t, left, 2)
	assert.Equal(t, []partition.Partition{a}, left.Minus(right))
	assert.Equal(t, []partition.Partition{a, b, c}, left.Union(right).Sorted())
	assert.True(t, right.Has(partition.New([]string{"3"}, "s3://b/3")))
}
