package trigger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/reconcile"
	"github.com/Journera/glutil/core/storage"
	"github.com/Journera/glutil/feature/partitioner"

	"go.uber.org/zap"
)

// ErrBadRequest marks requests rejected before any remote call.
var ErrBadRequest = errors.New("bad request")

// ClientFactory builds the catalog and object-store clients for an aws profile.
// An empty profile selects the configured default.
type ClientFactory func(ctx context.Context, profile string) (catalog.API, storage.Lister, error)

// Request asks for the partitions of one table to be created.
type Request struct {
	Database  string `json:"database"`
	Table     string `json:"table"`
	Profile   string `json:"profile,omitempty"`
	LimitDays int    `json:"limit_days,omitempty"`
}

func (r Request) validate() error {
	if r.Database == "" || r.Table == "" {
		return fmt.Errorf("%w: database and table are required", ErrBadRequest)
	}
	if r.LimitDays < 0 {
		return fmt.Errorf("%w: limit_days must be zero or positive", ErrBadRequest)
	}
	return nil
}

func (r Request) key() string {
	return r.Database + "." + r.Table + "|" + r.Profile + "|" + strconv.Itoa(r.LimitDays)
}

// Response is the outcome of a create run.
type Response struct {
	Database string              `json:"database"`
	Table    string              `json:"table"`
	Found    int                 `json:"found"`
	Created  int                 `json:"created"`
	Errors   []catalog.ItemError `json:"errors"`
}

// Service runs create-partitions for HTTP requests.
type Service struct {
	clients ClientFactory
	applier *reconcile.Applier
	group   *reconcile.Group[*Response]
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates a new trigger service. Concurrent requests for the same
// table share one run; finished results are reused for resultTTL.
func NewService(clients ClientFactory, applier *reconcile.Applier, logger *zap.Logger, timeout, resultTTL time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		clients: clients,
		applier: applier,
		group:   reconcile.NewGroup[*Response](resultTTL),
		timeout: timeout,
		logger:  logger,
	}
}

// CreatePartitions scans the table's data and registers the partitions the
// catalog does not hold yet. shared reports whether the result came from a
// run started by another request. A run that stops midway returns what it
// created so far along with the error.
func (s *Service) CreatePartitions(req Request, l *zap.Logger) (resp *Response, shared bool, err error) {
	if err := req.validate(); err != nil {
		return nil, false, err
	}

	key := req.key()
	resp, shared, err = s.group.Do(key, func() (*Response, error) {
		// Runs are shared, so they must not depend on one request's lifetime.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.run(ctx, req, l)
	})
	// Results with failed items are not reused, so the next request retries them.
	if err == nil && len(resp.Errors) > 0 {
		s.group.Forget(key)
	}
	return resp, shared, err
}

func (s *Service) run(ctx context.Context, req Request, l *zap.Logger) (*Response, error) {
	api, lister, err := s.clients(ctx, req.Profile)
	if err != nil {
		return nil, catalog.Classify(err, req.Database, req.Table, req.Profile)
	}

	p, err := partitioner.New(ctx, api, lister, req.Database, req.Table,
		partitioner.WithLogger(l),
		partitioner.WithProfile(req.Profile),
	)
	if err != nil {
		return nil, err
	}

	found, err := p.PartitionsOnDisk(ctx, req.LimitDays)
	if err != nil {
		return nil, err
	}
	toCreate, err := p.PartitionsToCreate(ctx, found)
	if err != nil {
		return nil, err
	}
	l.Info("Scanned partitions",
		zap.String("bucket", p.Bucket()),
		zap.String("prefix", p.Prefix()),
		zap.Stringers("keys", p.Keys()),
		zap.Int("found", len(found)),
		zap.Int("to_create", len(toCreate)),
	)

	plan := reconcile.NewPlan(reconcile.ActionCreatePartitions, req.Database, req.Table, "found on disk", toCreate)
	rep, err := reconcile.Apply(ctx, s.applier, plan, reconcile.Options{Confirmed: true}, p.CreatePartitions)
	if rep == nil {
		return nil, err
	}

	resp := &Response{
		Database: req.Database,
		Table:    req.Table,
		Found:    len(found),
		Created:  rep.Succeeded(),
		Errors:   rep.Errors,
	}
	return resp, err
}
