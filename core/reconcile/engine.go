package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/Journera/glutil/core/catalog"

	"go.uber.org/zap"
)

// MutateFunc executes a plan's items and returns per-item errors. A non-nil
// error means the mutation could not complete at all.
type MutateFunc[T Item] func(ctx context.Context, items []T) ([]catalog.ItemError, error)

// Recorder receives the report of every applied plan.
type Recorder interface {
	Record(ctx context.Context, r *Report)
}

// Applier executes plans.
type Applier struct {
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// NewApplier creates an applier. recorder may be nil.
func NewApplier(logger *zap.Logger, recorder Recorder) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{logger: logger, recorder: recorder, now: time.Now}
}

// Apply executes plan with fn.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
// Empty plans are never executed.
func Apply[T Item](ctx context.Context, a *Applier, plan *Plan[T], opts Options, fn MutateFunc[T]) (*Report, error) {
	rep := plan.report()
	rep.StartedAt = a.now()

	log := a.logger.With(
		zap.String("action", string(plan.Action)),
		zap.String("target", rep.Target()),
		zap.Int("count", rep.Planned),
	)

	// Safety check: do not execute if not confirmed or dry-run
	if plan.Empty() || opts.DryRun || !opts.Confirmed {
		log.Debug("Plan not applied", zap.Bool("dry_run", opts.DryRun), zap.Bool("confirmed", opts.Confirmed))
		rep.FinishedAt = a.now()
		return rep, nil
	}

	errs, err := fn(ctx, plan.Items)
	rep.Applied = true
	rep.Errors = append(rep.Errors, errs...)
	rep.Failed = len(rep.Errors)
	rep.Attempted = rep.Planned
	if err != nil {
		rep.Attempted = max(catalog.SentBefore(err), rep.Failed)
	}

	for _, ie := range rep.Errors {
		log.Warn("Item failed",
			zap.String("item", ie.Subject()),
			zap.String("code", ie.Code),
			zap.String("message", ie.Message),
		)
	}
	if err != nil {
		rep.FinishedAt = a.now()
		a.record(ctx, rep)
		return rep, fmt.Errorf("failed to %s on %s: %w", plan.Action, rep.Target(), err)
	}

	log.Info("Plan applied", zap.Int("failed", rep.Failed))

	rep.FinishedAt = a.now()
	a.record(ctx, rep)
	return rep, nil
}

func (a *Applier) record(ctx context.Context, rep *Report) {
	if a.recorder != nil {
		a.recorder.Record(ctx, rep)
	}
}
