// Package catalog wraps the AWS Glue Data Catalog operations used to reconcile
// partitions and clean up tables.
//
// API is the subset of *glue.Client that the partitioner and cleaner call, so
// tests can substitute core/catalog/mocks. AllPartitions and AllTables follow
// NextToken pagination.
//
// # Errors
//
// Setup failures (unknown profile, access denied, missing database or table)
// are classified into *ConfigError, whose Hint method gives the user something
// to check. Failures of individual items inside a batched call are never
// returned as errors; they are collected as ItemError values instead.
package catalog
