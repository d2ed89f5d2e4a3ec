package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Journera/glutil/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type name string

func (n name) String() string { return string(n) }

type recorder struct {
	reports []*Report
}

func (r *recorder) Record(_ context.Context, rep *Report) {
	r.reports = append(r.reports, rep)
}

func newTestApplier(t *testing.T, rec Recorder) *Applier {
	a := NewApplier(zaptest.NewLogger(t), rec)
	tick := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return a
}

func TestApply_Gating(t *testing.T) {
	plan := NewPlan(ActionDeleteTables, "db", "", "orphaned", []name{"a", "b"})

	tests := []struct {
		name string
		opts Options
	}{
		{"dry run", Options{DryRun: true, Confirmed: true}},
		{"not confirmed", Options{}},
		{"dry run and not confirmed", Options{DryRun: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			called := false
			rep, err := Apply(context.Background(), newTestApplier(t, rec), plan, tt.opts,
				func(context.Context, []name) ([]catalog.ItemError, error) {
					called = true
					return nil, nil
				})
			require.NoError(t, err)
			assert.False(t, called)
			assert.False(t, rep.Applied)
			assert.Equal(t, 2, rep.Planned)
			assert.Zero(t, rep.Succeeded())
			assert.Empty(t, rec.reports, "unapplied plans are not recorded")
		})
	}
}

func TestApply_EmptyPlanSkipsMutation(t *testing.T) {
	plan := NewPlan[name](ActionDeleteTables, "db", "", "orphaned", nil)
	rep, err := Apply(context.Background(), newTestApplier(t, nil), plan, Options{Confirmed: true},
		func(context.Context, []name) ([]catalog.ItemError, error) {
			t.Fatal("mutation must not run")
			return nil, nil
		})
	require.NoError(t, err)
	assert.False(t, rep.Applied)
	assert.NotNil(t, rep.Errors)
}

func TestApply_CollectsItemErrors(t *testing.T) {
	rec := &recorder{}
	plan := NewPlan(ActionDeletePartitions, "db", "tbl", "missing on disk", []name{"a", "b", "c"})

	rep, err := Apply(context.Background(), newTestApplier(t, rec), plan, Options{Confirmed: true},
		func(_ context.Context, items []name) ([]catalog.ItemError, error) {
			assert.Len(t, items, 3)
			return []catalog.ItemError{{Values: []string{"b"}, Code: "EntityNotFoundException", Message: "gone"}}, nil
		})
	require.NoError(t, err)
	assert.True(t, rep.Applied)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2, rep.Succeeded())
	assert.Equal(t, "db.tbl", rep.Target())
	assert.Equal(t, []string{"a", "b", "c"}, rep.Items)
	assert.True(t, rep.FinishedAt.After(rep.StartedAt))

	require.Len(t, rec.reports, 1)
	assert.Same(t, rep, rec.reports[0])
}

func TestApply_StructuralError(t *testing.T) {
	rec := &recorder{}
	plan := NewPlan(ActionCreatePartitions, "db", "tbl", "on disk", []name{"a"})

	rep, err := Apply(context.Background(), newTestApplier(t, rec), plan, Options{Confirmed: true},
		func(context.Context, []name) ([]catalog.ItemError, error) {
			return nil, errors.New("connection reset")
		})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create_partitions on db.tbl")
	assert.True(t, rep.Applied)
	assert.Len(t, rec.reports, 1)
}

func TestApply_StructuralErrorLogsItemErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := NewApplier(zap.New(core), nil)
	plan := NewPlan(ActionCreatePartitions, "db", "tbl", "on disk", []name{"a", "b"})

	rep, err := Apply(context.Background(), a, plan, Options{Confirmed: true},
		func(context.Context, []name) ([]catalog.ItemError, error) {
			return []catalog.ItemError{{Values: []string{"a"}, Code: "AlreadyExistsException", Message: "exists"}},
				errors.New("connection reset")
		})
	require.Error(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Zero(t, rep.Succeeded())

	failed := logs.FilterMessage("Item failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "AlreadyExistsException", failed[0].ContextMap()["code"])
}

func TestApply_IncompleteMutationCountsSentItems(t *testing.T) {
	rec := &recorder{}
	plan := NewPlan(ActionCreatePartitions, "db", "tbl", "on disk", []name{"a", "b", "c", "d"})

	rep, err := Apply(context.Background(), newTestApplier(t, rec), plan, Options{Confirmed: true},
		func(context.Context, []name) ([]catalog.ItemError, error) {
			return []catalog.ItemError{{Values: []string{"a"}, Code: "AlreadyExistsException"}},
				&catalog.IncompleteError{Sent: 2, Err: errors.New("connection reset")}
		})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 2, rep.Attempted)
	assert.Equal(t, 1, rep.Succeeded())
	require.Len(t, rec.reports, 1)
}

func TestPlan_Preview(t *testing.T) {
	plan := NewPlan(ActionCreatePartitions, "db", "tbl", "", []name{"a", "b", "c"})

	items, more := plan.Preview(2)
	assert.Equal(t, []string{"a", "b"}, items)
	assert.Equal(t, 1, more)

	items, more = plan.Preview(0)
	assert.Len(t, items, 3)
	assert.Zero(t, more)
}
