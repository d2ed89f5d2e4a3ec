package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Journera/glutil/core/awsconf"
	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/config"
	"github.com/Journera/glutil/core/journal"
	"github.com/Journera/glutil/core/logger"
	"github.com/Journera/glutil/core/reconcile"
	"github.com/Journera/glutil/core/storage"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrItemsFailed is returned when the catalog rejected some of the items of an
// applied plan. Every item error has already been logged.
var ErrItemsFailed = errors.New("some items failed")

// previewLimit caps the items printed before asking for confirmation.
const previewLimit = 50

var (
	dryRun     bool
	yesConfirm bool
)

// clientFactory builds the remote clients. Tests replace it with in-memory fakes.
var clientFactory = newClients

// runtime bundles everything a command needs after startup.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	api     catalog.API
	lister  storage.Lister
	applier *reconcile.Applier
}

// loadRuntime loads configuration, applies the global flag overrides and
// creates the clients.
func loadRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if profile != "" {
		cfg.AWS.Profile = profile
	}
	if region != "" {
		cfg.AWS.Region = region
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	api, lister, err := clientFactory(ctx, cfg, cfg.AWS.Profile)
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, logger: l, api: api, lister: lister, applier: newApplier(cfg, l)}, nil
}

// newClients creates the Glue and object store clients for profile.
func newClients(ctx context.Context, cfg *config.Config, profile string) (catalog.API, storage.Lister, error) {
	awsCfg := cfg.AWS
	if profile != "" {
		awsCfg.Profile = profile
	}

	resolved, err := awsconf.Load(ctx, awsCfg)
	if err != nil {
		return nil, nil, catalog.Classify(err, "", "", awsCfg.Profile)
	}

	lister, err := storage.NewClient(cfg.Storage, resolved)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return catalog.NewClient(resolved, awsCfg.Endpoint), lister, nil
}

// newApplier creates an applier that records runs in the journal when enabled.
// An unreachable journal database only disables the journal.
func newApplier(cfg *config.Config, l *zap.Logger) *reconcile.Applier {
	j, err := journal.Open(cfg.Journal, l)
	if err != nil {
		l.Warn("Optional journal connection failed", zap.Error(err))
		return reconcile.NewApplier(l, nil)
	}
	if j == nil {
		return reconcile.NewApplier(l, nil)
	}
	return reconcile.NewApplier(l, j)
}

// addApplyFlags registers the flags shared by every mutating command.
func addApplyFlags(c *cobra.Command) {
	c.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without applying it")
	c.Flags().BoolVarP(&yesConfirm, "yes", "y", false, "apply without asking for confirmation")
}

// runPlan prints plan, asks for confirmation and applies it with fn.
func runPlan[T reconcile.Item](cmd *cobra.Command, rt *runtime, plan *reconcile.Plan[T], fn reconcile.MutateFunc[T]) error {
	l := rt.logger.With(zap.String("database", plan.Database))
	if plan.Table != "" {
		l = l.With(zap.String("table", plan.Table))
	}

	printPlan(l, plan)

	opts := reconcile.Options{DryRun: dryRun}
	if !plan.Empty() && !dryRun {
		opts.Confirmed = confirmDestructiveAction(cmd.InOrStdin(), cmd.ErrOrStderr(), yesConfirm)
		if !opts.Confirmed {
			l.Warn("Aborted, nothing was changed")
		}
	}

	rep, err := reconcile.Apply(cmd.Context(), rt.applier, plan, opts, fn)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := writeReport(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	}

	if rep.Applied {
		l.Info("Done",
			zap.String("action", string(rep.Action)),
			zap.Int("succeeded", rep.Succeeded()),
			zap.Int("failed", rep.Failed),
		)
	}
	if rep.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrItemsFailed, rep.Failed, rep.Planned)
	}
	return nil
}

// printPlan logs the plan summary and a preview of its items.
func printPlan[T reconcile.Item](l *zap.Logger, plan *reconcile.Plan[T]) {
	if plan.Empty() {
		l.Info("Nothing to do", zap.String("action", string(plan.Action)))
		return
	}

	l.Info("Planned action",
		zap.String("action", string(plan.Action)),
		zap.String("reason", plan.Reason),
		zap.Int("count", len(plan.Items)),
	)

	shown, hidden := plan.Preview(previewLimit)
	for _, item := range shown {
		l.Info("Planned item", zap.String("item", item))
	}
	if hidden > 0 {
		l.Info("Additional items not shown", zap.Int("count", hidden))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer, yes bool) bool {
	if yes {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to confirm: ")
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}

// writeReport prints rep as indented JSON.
func writeReport(w io.Writer, rep *reconcile.Report) error {
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
