package cleaner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Journera/glutil/core/catalog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Cleaner finds and deletes orphaned tables in one database.
type Cleaner struct {
	api      catalog.API
	logger   *zap.Logger
	database string
	profile  string

	mu    sync.Mutex
	trees map[string]*TableTree
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cleaner) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProfile names the aws profile in configuration error hints.
func WithProfile(profile string) Option {
	return func(c *Cleaner) {
		c.profile = profile
	}
}

// New checks that database exists and returns a cleaner for it.
func New(ctx context.Context, api catalog.API, database string, opts ...Option) (*Cleaner, error) {
	c := &Cleaner{
		api:      api,
		logger:   zap.NewNop(),
		database: database,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("database", database))

	if _, err := api.GetDatabase(ctx, &glue.GetDatabaseInput{Name: aws.String(database)}); err != nil {
		return nil, catalog.Classify(err, database, "", c.profile)
	}
	return c, nil
}

// Database returns the database name.
func (c *Cleaner) Database() string { return c.database }

// RefreshTrees reloads the tables of the database and rebuilds the trees.
// Tables outside s3 are ignored.
func (c *Cleaner) RefreshTrees(ctx context.Context) error {
	raw, err := catalog.AllTables(ctx, c.api, c.database)
	if err != nil {
		return catalog.Classify(err, c.database, "", c.profile)
	}

	tables := make([]Table, 0, len(raw))
	for _, r := range raw {
		if r.StorageDescriptor == nil {
			continue
		}
		location := aws.ToString(r.StorageDescriptor.Location)
		if !strings.HasPrefix(location, s3Scheme) {
			continue
		}
		t, err := NewTable(c.database, aws.ToString(r.Name), location)
		if err != nil {
			c.logger.Warn("Skipping table", zap.Error(err))
			continue
		}
		tables = append(tables, t)
	}

	trees, err := BuildTrees(tables)
	if err != nil {
		return fmt.Errorf("build table trees: %w", err)
	}
	c.logger.Debug("Built table trees", zap.Int("tables", len(tables)), zap.Int("buckets", len(trees)))

	c.mu.Lock()
	c.trees = trees
	c.mu.Unlock()
	return nil
}

// Trees returns the trees, building them on first use.
func (c *Cleaner) Trees(ctx context.Context) (map[string]*TableTree, error) {
	c.mu.Lock()
	trees := c.trees
	c.mu.Unlock()
	if trees != nil {
		return trees, nil
	}

	if err := c.RefreshTrees(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trees, nil
}

// ChildTables returns the orphaned tables of the database, sorted by name.
func (c *Cleaner) ChildTables(ctx context.Context) ([]Table, error) {
	trees, err := c.Trees(ctx)
	if err != nil {
		return nil, err
	}
	return ChildTables(trees), nil
}

// DeleteTables deletes tables in a single batch call. Tables the catalog
// fails to delete are returned as item errors.
func (c *Cleaner) DeleteTables(ctx context.Context, tables []Table) ([]catalog.ItemError, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	c.logger.Debug("Deleting tables", zap.Int("count", len(tables)))

	out, err := c.api.BatchDeleteTable(ctx, &glue.BatchDeleteTableInput{
		DatabaseName:   aws.String(c.database),
		TablesToDelete: lo.Map(tables, func(t Table, _ int) string { return t.Name }),
	})
	if err != nil {
		return nil, fmt.Errorf("batch delete tables of %s: %w", c.database, err)
	}

	c.mu.Lock()
	c.trees = nil
	c.mu.Unlock()
	return catalog.TableErrors(out.Errors), nil
}
