package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/database"
	"github.com/Journera/glutil/core/reconcile"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds configuration for the run journal.
type Config struct {
	// Enabled turns the journal on.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Database is the MySQL database holding the journal table.
	Database database.Config `mapstructure:"database"`
}

// Run is one applied plan.
type Run struct {
	ID         string    `gorm:"primaryKey;type:char(36)"`
	Action     string    `gorm:"size:32;index"`
	Database   string    `gorm:"size:255;index:idx_target"`
	Table      string    `gorm:"size:255;index:idx_target"`
	Reason     string    `gorm:"size:255"`
	Planned    int
	Applied    int
	Failed     int
	Errors     string    `gorm:"type:text"`
	StartedAt  time.Time
	FinishedAt time.Time
}

// TableName sets the journal table name.
func (Run) TableName() string {
	return "glutil_runs"
}

// Journal records applied plans. It implements reconcile.Recorder.
type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
	newID  func() string
}

// New creates a journal on db and migrates its table.
func New(db *gorm.DB, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db, logger: logger, newID: uuid.NewString}, nil
}

// Open connects to the configured database and creates a journal. It returns
// nil without error when the journal is disabled.
func Open(cfg Config, logger *zap.Logger) (*Journal, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return New(db, logger)
}

// FromReport converts a report into a run row.
func FromReport(id string, rep *reconcile.Report) (*Run, error) {
	errs, err := json.MarshalToString(rep.Errors)
	if err != nil {
		return nil, fmt.Errorf("encode errors: %w", err)
	}
	return &Run{
		ID:         id,
		Action:     string(rep.Action),
		Database:   rep.Database,
		Table:      rep.Table,
		Reason:     rep.Reason,
		Planned:    rep.Planned,
		Applied:    rep.Succeeded(),
		Failed:     rep.Failed,
		Errors:     errs,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}, nil
}

// Record stores rep. Failures are logged, never returned, so that a journal
// outage cannot fail a run.
func (j *Journal) Record(ctx context.Context, rep *reconcile.Report) {
	run, err := FromReport(j.newID(), rep)
	if err != nil {
		j.logger.Warn("Failed to encode journal entry", zap.Error(err))
		return
	}
	if err := j.db.WithContext(ctx).Create(run).Error; err != nil {
		j.logger.Warn("Failed to write journal entry",
			zap.String("action", run.Action),
			zap.String("target", rep.Target()),
			zap.Error(err),
		)
	}
}

// Recent returns the latest runs for a target, newest first. An empty table
// matches database-level runs and every table of the database.
func (j *Journal) Recent(ctx context.Context, database, table string, limit int) ([]Run, error) {
	q := j.db.WithContext(ctx).Where("`database` = ?", database)
	if table != "" {
		q = q.Where("`table` = ?", table)
	}
	var runs []Run
	if err := q.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return runs, nil
}

// DecodeErrors returns the item errors of a run.
func (r Run) DecodeErrors() ([]catalog.ItemError, error) {
	var out []catalog.ItemError
	if r.Errors == "" {
		return out, nil
	}
	if err := json.UnmarshalFromString(r.Errors, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ reconcile.Recorder = (*Journal)(nil)
