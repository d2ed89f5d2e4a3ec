package cmd

import (
	"github.com/Journera/glutil/core/reconcile"
	"github.com/Journera/glutil/feature/cleaner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var deleteBadTablesCmd = &cobra.Command{
	Use:   "delete-bad-tables DATABASE",
	Short: "Delete tables located inside other tables",
	Long: `Deletes tables whose S3 location sits below another table's location.
Such tables are usually created by a crawler that mistook partitions for tables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := loadRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		c, err := cleaner.New(ctx, rt.api, args[0],
			cleaner.WithLogger(rt.logger),
			cleaner.WithProfile(rt.cfg.AWS.Profile),
		)
		if err != nil {
			return err
		}

		children, err := c.ChildTables(ctx)
		if err != nil {
			return err
		}
		rt.logger.Info("Found child tables", zap.String("database", c.Database()), zap.Int("count", len(children)))

		plan := reconcile.NewPlan(reconcile.ActionDeleteTables, c.Database(), "", "located inside another table", children)
		return runPlan(cmd, rt, plan, c.DeleteTables)
	},
}

func init() {
	addApplyFlags(deleteBadTablesCmd)
	RootCmd.AddCommand(deleteBadTablesCmd)
}
