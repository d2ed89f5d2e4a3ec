package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Journera/glutil/core/awsconf"
	"github.com/Journera/glutil/core/catalog"
	cmocks "github.com/Journera/glutil/core/catalog/mocks"
	"github.com/Journera/glutil/core/reconcile"
	"github.com/Journera/glutil/core/storage"
	smocks "github.com/Journera/glutil/core/storage/mocks"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type env struct {
	app     *fiber.App
	api     catalog.API
	glue    *cmocks.Glue
	store   *smocks.Memory
	clients atomic.Int32
}

func setupTestApp(t *testing.T) *env {
	return setupTestAppTTL(t, 0)
}

func setupTestAppTTL(t *testing.T, resultTTL time.Duration) *env {
	e := &env{glue: cmocks.NewGlue(), store: smocks.NewMemory()}
	e.api = e.glue
	e.glue.AddTable("analytics", "events", "s3://data/events/", "year:int", "month:int", "day:int")
	e.store.Put("data",
		"events/2019/01/01/a.json",
		"events/2019/01/02/a.json",
	)
	e.glue.AddPartition("analytics", "events", []string{"2019", "01", "01"}, "s3://data/events/2019/01/01/")

	factory := func(_ context.Context, profile string) (catalog.API, storage.Lister, error) {
		e.clients.Add(1)
		if profile == "unknown" {
			return nil, nil, errors.Join(awsconf.ErrProfileNotFound, errors.New("no such profile"))
		}
		return e.api, e.store, nil
	}

	svc := NewService(factory, reconcile.NewApplier(zap.NewNop(), nil), zap.NewNop(), time.Minute, resultTTL)
	e.app = fiber.New()
	NewHandler(svc).RegisterRoutes(e.app)
	return e
}

func post(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/partitions/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleCreatePartitions(t *testing.T) {
	e := setupTestApp(t)

	status, body := post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "analytics", body["database"])
	assert.Equal(t, float64(2), body["found"])
	assert.Equal(t, float64(1), body["created"])
	assert.Empty(t, body["errors"])
	assert.Len(t, e.glue.Partitions("analytics", "events"), 2)

	status, body = post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["created"])
	assert.Equal(t, 1, e.glue.Calls(cmocks.OpBatchCreatePartition))
}

// racyGlue hides existing partitions from lookups, as when another writer
// registers them between the lookup and the create call.
type racyGlue struct {
	*cmocks.Glue
}

func (r racyGlue) BatchGetPartition(context.Context, *glue.BatchGetPartitionInput, ...func(*glue.Options)) (*glue.BatchGetPartitionOutput, error) {
	return &glue.BatchGetPartitionOutput{}, nil
}

func TestHandleCreatePartitions_ItemErrors(t *testing.T) {
	e := setupTestApp(t)
	e.api = racyGlue{e.glue}

	status, body := post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["created"])

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	item := errs[0].(map[string]any)
	assert.Equal(t, "AlreadyExistsException", item["code"])
	assert.Equal(t, []any{"2019", "01", "01"}, item["values"])
}

func TestHandleCreatePartitions_ReusesCleanResults(t *testing.T) {
	e := setupTestAppTTL(t, time.Minute)

	post(t, e.app, `{"database":"analytics","table":"events"}`)
	status, body := post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["created"])
	assert.Equal(t, int32(1), e.clients.Load())
}

func TestHandleCreatePartitions_RetriesFailedItems(t *testing.T) {
	e := setupTestAppTTL(t, time.Minute)
	e.api = racyGlue{e.glue}

	_, body := post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Len(t, body["errors"], 1)

	post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Equal(t, int32(2), e.clients.Load())
	assert.Equal(t, 2, e.glue.Calls(cmocks.OpBatchCreatePartition))
}

// flakyGlue fails every create call after the first.
type flakyGlue struct {
	*cmocks.Glue
	calls atomic.Int32
}

func (f *flakyGlue) BatchCreatePartition(ctx context.Context, in *glue.BatchCreatePartitionInput, opts ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error) {
	if f.calls.Add(1) > 1 {
		return nil, errors.New("connection reset")
	}
	return f.Glue.BatchCreatePartition(ctx, in, opts...)
}

func TestHandleCreatePartitions_StoppedRunReportsPartialResult(t *testing.T) {
	e := setupTestApp(t)
	e.api = &flakyGlue{Glue: e.glue}
	day := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 2; i < 150; i++ {
		e.store.Put("data", day.AddDate(0, 0, i).Format("events/2006/01/02/a.json"))
	}

	status, body := post(t, e.app, `{"database":"analytics","table":"events"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body["error"], "connection reset")
	assert.Equal(t, float64(150), body["found"])
	assert.Equal(t, float64(100), body["created"])
	assert.Len(t, e.glue.Partitions("analytics", "events"), 101)
}

func TestService_LogsPartitionKeys(t *testing.T) {
	e := setupTestApp(t)
	svc := NewService(func(context.Context, string) (catalog.API, storage.Lister, error) {
		return e.glue, e.store, nil
	}, reconcile.NewApplier(zap.NewNop(), nil), nil, time.Minute, 0)
	core, logs := observer.New(zap.InfoLevel)

	_, _, err := svc.CreatePartitions(Request{Database: "analytics", Table: "events"}, zap.New(core))
	require.NoError(t, err)

	scanned := logs.FilterMessage("Scanned partitions").All()
	require.Len(t, scanned, 1)
	assert.Equal(t, []any{"year:int", "month:int", "day:int"}, scanned[0].ContextMap()["keys"])
}

func TestHandleCreatePartitions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setup  func(e *env)
		status int
		hint   bool
	}{
		{"invalid json", `{"database":`, nil, fiber.StatusBadRequest, false},
		{"missing table", `{"database":"analytics"}`, nil, fiber.StatusBadRequest, false},
		{"negative limit", `{"database":"analytics","table":"events","limit_days":-1}`, nil, fiber.StatusBadRequest, false},
		{"unknown table", `{"database":"analytics","table":"nope"}`, nil, fiber.StatusNotFound, true},
		{"unknown profile", `{"database":"analytics","table":"events","profile":"unknown"}`, nil, fiber.StatusBadRequest, true},
		{
			name: "access denied",
			body: `{"database":"analytics","table":"events"}`,
			setup: func(e *env) {
				e.glue.Fail(cmocks.OpGetTable, &types.AccessDeniedException{Message: aws.String("denied")})
			},
			status: fiber.StatusForbidden,
			hint:   true,
		},
		{
			name: "catalog outage",
			body: `{"database":"analytics","table":"events"}`,
			setup: func(e *env) {
				e.glue.Fail(cmocks.OpBatchGetPartition, errors.New("service unavailable"))
			},
			status: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupTestApp(t)
			if tt.setup != nil {
				tt.setup(e)
			}
			status, body := post(t, e.app, tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
			if tt.hint {
				assert.NotEmpty(t, body["hint"])
			}
		})
	}
}

func TestHandleCreatePartitions_UsageErrorMakesNoCalls(t *testing.T) {
	e := setupTestApp(t)
	status, _ := post(t, e.app, `{"database":"analytics","table":"events","limit_days":-3}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Zero(t, e.clients.Load())
	assert.Zero(t, e.store.Calls())
}

func TestHandleHealth(t *testing.T) {
	e := setupTestApp(t)
	resp, err := e.app.Test(httptest.NewRequest("GET", HealthPath, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFeature(t *testing.T) {
	f := NewFeature(NewService(nil, nil, nil, time.Second, 0))
	assert.Equal(t, "trigger", f.Name())
	assert.True(t, f.IsEnabled())
	assert.NoError(t, f.Load(fiber.New()))
}
