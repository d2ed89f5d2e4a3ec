package reconcile

import (
	"fmt"
	"time"

	"github.com/Journera/glutil/core/catalog"
)

// ActionType represents the type of catalog mutation.
type ActionType string

const (
	// ActionCreatePartitions registers partitions found on disk.
	ActionCreatePartitions ActionType = "create_partitions"
	// ActionDeletePartitions removes partitions from the catalog.
	ActionDeletePartitions ActionType = "delete_partitions"
	// ActionUpdatePartitions points partitions at their new location.
	ActionUpdatePartitions ActionType = "update_partitions"
	// ActionDeleteTables removes tables from the catalog.
	ActionDeleteTables ActionType = "delete_tables"
)

// Item is anything a plan can act upon.
type Item interface {
	fmt.Stringer
}

// Plan is a set of items to mutate with one action.
type Plan[T Item] struct {
	// Action specifies the mutation to perform.
	Action ActionType `json:"action"`

	// Database is the target database.
	Database string `json:"database"`

	// Table is the target table, empty for table-level actions.
	Table string `json:"table,omitempty"`

	// Reason explains why the items are planned.
	Reason string `json:"reason"`

	// Items are the partitions or tables to mutate.
	Items []T `json:"-"`
}

// Options controls whether a plan is executed.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the user has confirmed the mutation.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}

// Report describes a plan and the outcome of applying it.
type Report struct {
	Action   ActionType `json:"action"`
	Database string     `json:"database"`
	Table    string     `json:"table,omitempty"`
	Reason   string     `json:"reason"`

	// Items are the rendered plan items.
	Items []string `json:"items"`

	// Planned counts the items in the plan.
	Planned int `json:"planned"`

	// Applied is true when the mutation was executed.
	Applied bool `json:"applied"`

	// Attempted counts the items handed to the catalog. It is below Planned
	// when the mutation stopped early.
	Attempted int `json:"attempted"`

	// Failed counts per-item errors.
	Failed int `json:"failed"`

	// Errors holds every per-item error reported by the catalog.
	Errors []catalog.ItemError `json:"errors"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded counts items applied without error.
func (r *Report) Succeeded() int {
	if !r.Applied {
		return 0
	}
	return max(r.Attempted-r.Failed, 0)
}

// Target renders database or database.table.
func (r *Report) Target() string {
	if r.Table == "" {
		return r.Database
	}
	return r.Database + "." + r.Table
}
