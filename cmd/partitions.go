package cmd

import (
	"context"
	"fmt"

	"github.com/Journera/glutil/core/partition"
	"github.com/Journera/glutil/core/reconcile"
	"github.com/Journera/glutil/core/scanner"
	"github.com/Journera/glutil/feature/partitioner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var limitDays int

// partitionCommand wires a partitioner to a command body.
func partitionCommand(run func(ctx context.Context, cmd *cobra.Command, rt *runtime, p *partitioner.Partitioner) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		p, err := partitioner.New(ctx, rt.api, rt.lister, args[0], args[1],
			partitioner.WithLogger(rt.logger),
			partitioner.WithProfile(rt.cfg.AWS.Profile),
		)
		if err != nil {
			return err
		}
		return run(ctx, cmd, rt, p)
	}
}

func newPlan(p *partitioner.Partitioner, action reconcile.ActionType, reason string, items []partition.Partition) *reconcile.Plan[partition.Partition] {
	return reconcile.NewPlan(action, p.Database(), p.Table(), reason, items)
}

var createPartitionsCmd = &cobra.Command{
	Use:   "create-partitions DATABASE TABLE",
	Short: "Register the partitions found in S3",
	Long: `Scans the table location in S3 and creates every partition the catalog
does not hold yet. --limit-days restricts the scan to recent days.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if limitDays < 0 {
			return fmt.Errorf("%w: got %d", scanner.ErrInvalidLimitDays, limitDays)
		}
		return nil
	},
	RunE: partitionCommand(func(ctx context.Context, cmd *cobra.Command, rt *runtime, p *partitioner.Partitioner) error {
		rt.logger.Info("Scanning partitions",
			zap.String("bucket", p.Bucket()),
			zap.String("prefix", p.Prefix()),
			zap.Stringers("keys", p.Keys()),
			zap.Int("limit_days", limitDays),
		)

		found, err := p.PartitionsOnDisk(ctx, limitDays)
		if err != nil {
			return err
		}
		toCreate, err := p.PartitionsToCreate(ctx, found)
		if err != nil {
			return err
		}
		rt.logger.Info("Scanned partitions",
			zap.Int("found", len(found)),
			zap.Int("to_create", len(toCreate)),
		)

		plan := newPlan(p, reconcile.ActionCreatePartitions, "found in S3 but not in the catalog", toCreate)
		return runPlan(cmd, rt, plan, p.CreatePartitions)
	}),
}

var deleteAllPartitionsCmd = &cobra.Command{
	Use:   "delete-all-partitions DATABASE TABLE",
	Short: "Delete every partition of a table",
	Args:  cobra.ExactArgs(2),
	RunE: partitionCommand(func(ctx context.Context, cmd *cobra.Command, rt *runtime, p *partitioner.Partitioner) error {
		existing, err := p.ExistingPartitions(ctx)
		if err != nil {
			return err
		}
		plan := newPlan(p, reconcile.ActionDeletePartitions, "registered in the catalog", existing)
		return runPlan(cmd, rt, plan, p.DeletePartitions)
	}),
}

var deleteBadPartitionsCmd = &cobra.Command{
	Use:   "delete-bad-partitions DATABASE TABLE",
	Short: "Delete partitions whose data is missing or misplaced",
	Long: `Deletes partitions that have no data in S3 or that point to a location
the S3 layout does not produce.`,
	Args: cobra.ExactArgs(2),
	RunE: partitionCommand(func(ctx context.Context, cmd *cobra.Command, rt *runtime, p *partitioner.Partitioner) error {
		bad, err := p.BadPartitions(ctx)
		if err != nil {
			return err
		}
		plan := newPlan(p, reconcile.ActionDeletePartitions, "missing or misplaced in S3", bad)
		return runPlan(cmd, rt, plan, p.DeletePartitions)
	}),
}

var deleteMissingPartitionsCmd = &cobra.Command{
	Use:   "delete-missing-partitions DATABASE TABLE",
	Short: "Delete partitions whose data no longer exists in S3",
	Args:  cobra.ExactArgs(2),
	RunE: partitionCommand(func(ctx context.Context, cmd *cobra.Command, rt *runtime, p *partitioner.Partitioner) error {
		missing, err := p.MissingPartitions(ctx)
		if err != nil {
			return err
		}
		plan := newPlan(p, reconcile.ActionDeletePartitions, "missing in S3", missing)
		return runPlan(cmd, rt, plan, p.DeletePartitions)
	}),
}

var updatePartitionsCmd = &cobra.Command{
	Use:   "update-partitions DATABASE TABLE",
	Short: "Point moved partitions at their new S3 location",
	Args:  cobra.ExactArgs(2),
	RunE: partitionCommand(func(ctx context.Context, cmd *cobra.Command, rt *runtime, p *partitioner.Partitioner) error {
		moved, err := p.FindMovedPartitions(ctx)
		if err != nil {
			return err
		}
		plan := newPlan(p, reconcile.ActionUpdatePartitions, "moved in S3", moved)
		return runPlan(cmd, rt, plan, p.UpdatePartitionLocations)
	}),
}

func init() {
	createPartitionsCmd.Flags().IntVarP(&limitDays, "limit-days", "l", 0, "only scan today and this many days before it")

	for _, c := range []*cobra.Command{
		createPartitionsCmd,
		deleteAllPartitionsCmd,
		deleteBadPartitionsCmd,
		deleteMissingPartitionsCmd,
		updatePartitionsCmd,
	} {
		addApplyFlags(c)
		RootCmd.AddCommand(c)
	}
}
