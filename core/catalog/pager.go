package catalog

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
)

// AllPartitions fetches every partition of a table, following NextToken.
func AllPartitions(ctx context.Context, api API, database, table string) ([]types.Partition, error) {
	input := &glue.GetPartitionsInput{
		DatabaseName: aws.String(database),
		TableName:    aws.String(table),
	}

	var partitions []types.Partition
	for {
		resp, err := api.GetPartitions(ctx, input)
		if err != nil {
			return nil, err
		}
		partitions = append(partitions, resp.Partitions...)

		if aws.ToString(resp.NextToken) == "" {
			break
		}
		input.NextToken = resp.NextToken
	}
	return partitions, nil
}

// AllTables fetches every table of a database, following NextToken.
func AllTables(ctx context.Context, api API, database string) ([]types.Table, error) {
	input := &glue.GetTablesInput{
		DatabaseName: aws.String(database),
	}

	var tables []types.Table
	for {
		resp, err := api.GetTables(ctx, input)
		if err != nil {
			return nil, err
		}
		tables = append(tables, resp.TableList...)

		if aws.ToString(resp.NextToken) == "" {
			break
		}
		input.NextToken = resp.NextToken
	}
	return tables, nil
}
