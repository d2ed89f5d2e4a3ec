// Package reconcile plans and applies catalog mutations.
//
// A Plan pairs an action (create, delete or update partitions, or delete
// tables) with the items it acts on. Planning never mutates anything; Apply
// executes a plan only when it is confirmed and not a dry run, so commands can
// always show what would change before asking for confirmation.
//
// # Partial failures
//
// Catalog batch calls succeed or fail per item. Apply collects per-item errors
// into the Report instead of returning them, and only returns an error when
// the mutation could not run at all. Callers decide whether a non-empty
// Report.Errors is a failure.
//
// # Usage Example
//
//	plan := reconcile.NewPlan(reconcile.ActionDeletePartitions, db, table, "missing on disk", missing)
//	report, err := reconcile.Apply(ctx, applier, plan, reconcile.Options{Confirmed: true}, p.DeletePartitions)
//
// # Coalescing
//
// Group collapses concurrent runs for the same key, which the HTTP trigger uses
// so that overlapping requests for one table share a single scan.
package reconcile
