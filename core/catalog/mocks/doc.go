// Package mocks provides an in-memory Glue catalog for tests.
package mocks
