package mocks

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
)

// Operation names accepted by Fail and Sizes.
const (
	OpGetDatabase          = "GetDatabase"
	OpGetTable             = "GetTable"
	OpGetTables            = "GetTables"
	OpBatchDeleteTable     = "BatchDeleteTable"
	OpGetPartition         = "GetPartition"
	OpGetPartitions        = "GetPartitions"
	OpBatchGetPartition    = "BatchGetPartition"
	OpBatchCreatePartition = "BatchCreatePartition"
	OpBatchDeletePartition = "BatchDeletePartition"
	OpUpdatePartition      = "UpdatePartition"
)

// Glue is an in-memory catalog implementing catalog.API. It records the size
// of every call so tests can assert chunking, and can be told to fail any
// operation.
type Glue struct {
	// PageSize limits GetPartitions and GetTables pages. Zero means 100.
	PageSize int

	mu         sync.Mutex
	databases  map[string]struct{}
	tables     map[string]map[string]types.Table
	partitions map[string]map[string]types.Partition
	failures   map[string]error
	sizes      map[string][]int
}

// NewGlue creates an empty catalog.
func NewGlue() *Glue {
	return &Glue{
		databases:  make(map[string]struct{}),
		tables:     make(map[string]map[string]types.Table),
		partitions: make(map[string]map[string]types.Partition),
		failures:   make(map[string]error),
		sizes:      make(map[string][]int),
	}
}

// AddDatabase registers a database.
func (g *Glue) AddDatabase(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addDatabase(name)
}

func (g *Glue) addDatabase(name string) {
	g.databases[name] = struct{}{}
	if g.tables[name] == nil {
		g.tables[name] = make(map[string]types.Table)
	}
}

// AddTable registers a table located at location with the given partition keys
// (name:type pairs such as "year:int").
func (g *Glue) AddTable(database, name, location string, keys ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addDatabase(database)

	cols := make([]types.Column, 0, len(keys))
	for _, k := range keys {
		colName, colType, ok := strings.Cut(k, ":")
		if !ok {
			colType = "string"
		}
		cols = append(cols, types.Column{Name: aws.String(colName), Type: aws.String(colType)})
	}
	g.tables[database][name] = types.Table{
		Name:         aws.String(name),
		DatabaseName: aws.String(database),
		StorageDescriptor: &types.StorageDescriptor{
			Location:     aws.String(location),
			InputFormat:  aws.String("org.apache.hadoop.mapred.TextInputFormat"),
			OutputFormat: aws.String("org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat"),
			SerdeInfo: &types.SerDeInfo{
				SerializationLibrary: aws.String("org.openx.data.jsonserde.JsonSerDe"),
			},
		},
		PartitionKeys: cols,
	}
}

// AddPartition registers a partition directly, bypassing call accounting.
func (g *Glue) AddPartition(database, table string, values []string, location string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.store(database, table, types.Partition{
		Values:            values,
		DatabaseName:      aws.String(database),
		TableName:         aws.String(table),
		CreationTime:      aws.Time(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)),
		StorageDescriptor: &types.StorageDescriptor{Location: aws.String(location)},
	})
}

// Partitions returns the stored partitions sorted by values.
func (g *Glue) Partitions(database, table string) []types.Partition {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sortedPartitions(database, table)
}

// TableNames returns the names of the tables in database, sorted.
func (g *Glue) TableNames(database string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, 0, len(g.tables[database]))
	for n := range g.tables[database] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fail makes every following call to op return err. A nil err clears it.
func (g *Glue) Fail(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.failures, op)
		return
	}
	g.failures[op] = err
}

// Sizes returns the item count of every call made to op, in order.
func (g *Glue) Sizes(op string) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.sizes[op]...)
}

// Calls returns how many times op was called.
func (g *Glue) Calls(op string) int {
	return len(g.Sizes(op))
}

func (g *Glue) record(op string, n int) error {
	g.sizes[op] = append(g.sizes[op], n)
	return g.failures[op]
}

func (g *Glue) GetDatabase(_ context.Context, in *glue.GetDatabaseInput, _ ...func(*glue.Options)) (*glue.GetDatabaseOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpGetDatabase, 1); err != nil {
		return nil, err
	}
	name := aws.ToString(in.Name)
	if _, ok := g.databases[name]; !ok {
		return nil, notFound("Database " + name + " not found.")
	}
	return &glue.GetDatabaseOutput{Database: &types.Database{Name: aws.String(name)}}, nil
}

func (g *Glue) GetTable(_ context.Context, in *glue.GetTableInput, _ ...func(*glue.Options)) (*glue.GetTableOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpGetTable, 1); err != nil {
		return nil, err
	}
	db, name := aws.ToString(in.DatabaseName), aws.ToString(in.Name)
	if _, ok := g.databases[db]; !ok {
		return nil, notFound("Database " + db + " not found.")
	}
	t, ok := g.tables[db][name]
	if !ok {
		return nil, notFound("Table " + name + " not found.")
	}
	return &glue.GetTableOutput{Table: &t}, nil
}

func (g *Glue) GetTables(_ context.Context, in *glue.GetTablesInput, _ ...func(*glue.Options)) (*glue.GetTablesOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpGetTables, 1); err != nil {
		return nil, err
	}
	db := aws.ToString(in.DatabaseName)
	if _, ok := g.databases[db]; !ok {
		return nil, notFound("Database " + db + " not found.")
	}

	names := make([]string, 0, len(g.tables[db]))
	for n := range g.tables[db] {
		names = append(names, n)
	}
	sort.Strings(names)
	all := make([]types.Table, 0, len(names))
	for _, n := range names {
		all = append(all, g.tables[db][n])
	}

	page, next := g.page(len(all), in.NextToken)
	return &glue.GetTablesOutput{TableList: all[page[0]:page[1]], NextToken: next}, nil
}

func (g *Glue) BatchDeleteTable(_ context.Context, in *glue.BatchDeleteTableInput, _ ...func(*glue.Options)) (*glue.BatchDeleteTableOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpBatchDeleteTable, len(in.TablesToDelete)); err != nil {
		return nil, err
	}
	db := aws.ToString(in.DatabaseName)
	out := &glue.BatchDeleteTableOutput{}
	for _, name := range in.TablesToDelete {
		if _, ok := g.tables[db][name]; !ok {
			out.Errors = append(out.Errors, types.TableError{
				TableName:   aws.String(name),
				ErrorDetail: detail("EntityNotFoundException", "Table "+name+" not found."),
			})
			continue
		}
		delete(g.tables[db], name)
		delete(g.partitions, db+"."+name)
	}
	return out, nil
}

func (g *Glue) GetPartition(_ context.Context, in *glue.GetPartitionInput, _ ...func(*glue.Options)) (*glue.GetPartitionOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpGetPartition, 1); err != nil {
		return nil, err
	}
	p, ok := g.partitions[tableKey(in.DatabaseName, in.TableName)][valuesKey(in.PartitionValues)]
	if !ok {
		return nil, notFound("Cannot find partition.")
	}
	return &glue.GetPartitionOutput{Partition: &p}, nil
}

func (g *Glue) GetPartitions(_ context.Context, in *glue.GetPartitionsInput, _ ...func(*glue.Options)) (*glue.GetPartitionsOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpGetPartitions, 1); err != nil {
		return nil, err
	}
	db, table := aws.ToString(in.DatabaseName), aws.ToString(in.TableName)
	if _, ok := g.tables[db][table]; !ok {
		return nil, notFound("Table " + table + " not found.")
	}
	all := g.sortedPartitions(db, table)
	page, next := g.page(len(all), in.NextToken)
	return &glue.GetPartitionsOutput{Partitions: all[page[0]:page[1]], NextToken: next}, nil
}

func (g *Glue) BatchGetPartition(_ context.Context, in *glue.BatchGetPartitionInput, _ ...func(*glue.Options)) (*glue.BatchGetPartitionOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpBatchGetPartition, len(in.PartitionsToGet)); err != nil {
		return nil, err
	}
	stored := g.partitions[tableKey(in.DatabaseName, in.TableName)]
	out := &glue.BatchGetPartitionOutput{}
	for _, v := range in.PartitionsToGet {
		if p, ok := stored[valuesKey(v.Values)]; ok {
			out.Partitions = append(out.Partitions, p)
		}
	}
	return out, nil
}

func (g *Glue) BatchCreatePartition(_ context.Context, in *glue.BatchCreatePartitionInput, _ ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpBatchCreatePartition, len(in.PartitionInputList)); err != nil {
		return nil, err
	}
	db, table := aws.ToString(in.DatabaseName), aws.ToString(in.TableName)
	stored := g.partitions[db+"."+table]
	out := &glue.BatchCreatePartitionOutput{}
	for _, pi := range in.PartitionInputList {
		if _, ok := stored[valuesKey(pi.Values)]; ok {
			out.Errors = append(out.Errors, types.PartitionError{
				PartitionValues: pi.Values,
				ErrorDetail:     detail("AlreadyExistsException", "Partition already exists."),
			})
			continue
		}
		var sd *types.StorageDescriptor
		if pi.StorageDescriptor != nil {
			c := *pi.StorageDescriptor
			sd = &c
		}
		g.store(db, table, types.Partition{
			Values:            pi.Values,
			DatabaseName:      aws.String(db),
			TableName:         aws.String(table),
			CreationTime:      aws.Time(time.Now()),
			StorageDescriptor: sd,
			Parameters:        pi.Parameters,
		})
		stored = g.partitions[db+"."+table]
	}
	return out, nil
}

func (g *Glue) BatchDeletePartition(_ context.Context, in *glue.BatchDeletePartitionInput, _ ...func(*glue.Options)) (*glue.BatchDeletePartitionOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpBatchDeletePartition, len(in.PartitionsToDelete)); err != nil {
		return nil, err
	}
	stored := g.partitions[tableKey(in.DatabaseName, in.TableName)]
	out := &glue.BatchDeletePartitionOutput{}
	for _, v := range in.PartitionsToDelete {
		k := valuesKey(v.Values)
		if _, ok := stored[k]; !ok {
			out.Errors = append(out.Errors, types.PartitionError{
				PartitionValues: v.Values,
				ErrorDetail:     detail("EntityNotFoundException", "Partition not found."),
			})
			continue
		}
		delete(stored, k)
	}
	return out, nil
}

func (g *Glue) UpdatePartition(_ context.Context, in *glue.UpdatePartitionInput, _ ...func(*glue.Options)) (*glue.UpdatePartitionOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(OpUpdatePartition, 1); err != nil {
		return nil, err
	}
	db, table := aws.ToString(in.DatabaseName), aws.ToString(in.TableName)
	stored := g.partitions[db+"."+table]
	k := valuesKey(in.PartitionValueList)
	current, ok := stored[k]
	if !ok {
		return nil, notFound("Partition not found.")
	}
	if in.PartitionInput == nil {
		return nil, &types.InvalidInputException{Message: aws.String("PartitionInput is required.")}
	}
	current.Values = in.PartitionInput.Values
	current.StorageDescriptor = in.PartitionInput.StorageDescriptor
	current.Parameters = in.PartitionInput.Parameters
	delete(stored, k)
	g.store(db, table, current)
	return &glue.UpdatePartitionOutput{}, nil
}

func (g *Glue) store(database, table string, p types.Partition) {
	k := database + "." + table
	if g.partitions[k] == nil {
		g.partitions[k] = make(map[string]types.Partition)
	}
	g.partitions[k][valuesKey(p.Values)] = p
}

func (g *Glue) sortedPartitions(database, table string) []types.Partition {
	stored := g.partitions[database+"."+table]
	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]types.Partition, 0, len(keys))
	for _, k := range keys {
		out = append(out, stored[k])
	}
	return out
}

// page returns the [start, end) window for a token and the next token.
func (g *Glue) page(total int, token *string) ([2]int, *string) {
	size := g.PageSize
	if size <= 0 {
		size = 100
	}
	start, _ := strconv.Atoi(aws.ToString(token))
	if start > total {
		start = total
	}
	end := min(start+size, total)
	var next *string
	if end < total {
		next = aws.String(strconv.Itoa(end))
	}
	return [2]int{start, end}, next
}

func tableKey(database, table *string) string {
	return aws.ToString(database) + "." + aws.ToString(table)
}

func valuesKey(values []string) string {
	return strings.Join(values, "\x00")
}

func notFound(msg string) error {
	return &types.EntityNotFoundException{Message: aws.String(msg)}
}

func detail(code, msg string) *types.ErrorDetail {
	return &types.ErrorDetail{ErrorCode: aws.String(code), ErrorMessage: aws.String(msg)}
}
