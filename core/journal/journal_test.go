package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func testReport() *reconcile.Report {
	start := time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC)
	return &reconcile.Report{
		Action:   reconcile.ActionCreatePartitions,
		Database: "analytics",
		Table:    "events",
		Reason:   "found on disk",
		Planned:   3,
		Applied:   true,
		Attempted: 3,
		Failed:    1,
		Errors: []catalog.ItemError{
			{Values: []string{"2019", "01"}, Code: "AlreadyExistsException", Message: "exists"},
		},
		StartedAt:  start,
		FinishedAt: start.Add(time.Second),
	}
}

func TestFromReport(t *testing.T) {
	run, err := FromReport("id-1", testReport())
	require.NoError(t, err)
	assert.Equal(t, "create_partitions", run.Action)
	assert.Equal(t, 2, run.Applied)
	assert.Equal(t, 1, run.Failed)
	assert.JSONEq(t, `[{"values":["2019","01"],"code":"AlreadyExistsException","message":"exists"}]`, run.Errors)

	errs, err := run.DecodeErrors()
	require.NoError(t, err)
	assert.Equal(t, testReport().Errors, errs)
}

func TestRecord(t *testing.T) {
	db, mock := setupMockDB(t)
	j := &Journal{db: db, logger: zap.NewNop(), newID: func() string { return "run-1" }}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `glutil_runs`").
		WithArgs("run-1", "create_partitions", "analytics", "events", "found on disk", 3, 2, 1,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	j.Record(context.Background(), testReport())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_FailureIsLogged(t *testing.T) {
	db, mock := setupMockDB(t)
	core, logs := observer.New(zapcore.WarnLevel)
	j := &Journal{db: db, logger: zap.New(core), newID: func() string { return "run-2" }}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `glutil_runs`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	j.Record(context.Background(), testReport())
	assert.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to write journal entry", logs.All()[0].Message)
	assert.Equal(t, "analytics.events", logs.All()[0].ContextMap()["target"])
}

func TestRecent(t *testing.T) {
	db, mock := setupMockDB(t)
	j := &Journal{db: db, logger: zap.NewNop(), newID: func() string { return "" }}

	rows := sqlmock.NewRows([]string{"id", "action", "database", "table", "planned", "applied", "failed", "errors"}).
		AddRow("run-1", "delete_partitions", "analytics", "events", 5, 5, 0, "[]")
	mock.ExpectQuery("SELECT \\* FROM `glutil_runs` WHERE `database` = \\? AND `table` = \\? ORDER BY started_at DESC").
		WillReturnRows(rows)

	runs, err := j.Recent(context.Background(), "analytics", "events", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "delete_partitions", runs[0].Action)
	assert.Equal(t, 5, runs[0].Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_Disabled(t *testing.T) {
	j, err := Open(Config{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, j)
}
