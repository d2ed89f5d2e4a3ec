package cmd

import (
	"errors"

	"github.com/Journera/glutil/core/config"
	"github.com/Journera/glutil/core/journal"
	"github.com/Journera/glutil/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrJournalDisabled is returned by history when no journal is configured.
var ErrJournalDisabled = errors.New("journal is disabled, set JOURNAL_ENABLED=true")

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history DATABASE [TABLE]",
	Short: "Show the latest recorded runs",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		l, err := logger.New(&cfg.Log)
		if err != nil {
			return err
		}
		defer l.Sync()

		j, err := journal.Open(cfg.Journal, l)
		if err != nil {
			return err
		}
		if j == nil {
			return ErrJournalDisabled
		}

		var table string
		if len(args) == 2 {
			table = args[1]
		}
		runs, err := j.Recent(cmd.Context(), args[0], table, historyLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			l.Info("No runs recorded", zap.String("database", args[0]), zap.String("table", table))
			return nil
		}
		for _, run := range runs {
			l.Info("Run",
				zap.String("id", run.ID),
				zap.String("action", run.Action),
				zap.String("database", run.Database),
				zap.String("table", run.Table),
				zap.Int("planned", run.Planned),
				zap.Int("failed", run.Failed),
				zap.Time("started_at", run.StartedAt),
				zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
			)
			errs, err := run.DecodeErrors()
			if err != nil {
				l.Warn("Unreadable item errors", zap.String("id", run.ID), zap.Error(err))
				continue
			}
			for _, ie := range errs {
				l.Info("Item error",
					zap.String("item", ie.Subject()),
					zap.String("code", ie.Code),
					zap.String("message", ie.Message),
				)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	RootCmd.AddCommand(historyCmd)
}
