package reconcile

import "github.com/Journera/glutil/core/catalog"

// NewPlan builds a plan.
func NewPlan[T Item](action ActionType, database, table, reason string, items []T) *Plan[T] {
	return &Plan[T]{
		Action:   action,
		Database: database,
		Table:    table,
		Reason:   reason,
		Items:    items,
	}
}

// Empty reports whether the plan has nothing to do.
func (p *Plan[T]) Empty() bool {
	return len(p.Items) == 0
}

// Strings renders every item.
func (p *Plan[T]) Strings() []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.String())
	}
	return out
}

// Preview renders at most limit items and the number left out.
func (p *Plan[T]) Preview(limit int) ([]string, int) {
	all := p.Strings()
	if limit <= 0 || len(all) <= limit {
		return all, 0
	}
	return all[:limit], len(all) - limit
}

// report starts a report for p.
func (p *Plan[T]) report() *Report {
	return &Report{
		Action:   p.Action,
		Database: p.Database,
		Table:    p.Table,
		Reason:   p.Reason,
		Items:    p.Strings(),
		Planned:  len(p.Items),
		Errors:   []catalog.ItemError{},
	}
}
