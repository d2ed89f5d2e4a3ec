package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Lister is a mock implementation of storage.Lister
type Lister struct {
	mock.Mock
}

func (m *Lister) ListCommonPrefixes(ctx context.Context, bucket, delimiter, prefix string) ([]string, error) {
	args := m.Called(ctx, bucket, delimiter, prefix)
	if prefixes, ok := args.Get(0).([]string); ok {
		return prefixes, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Lister) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	args := m.Called(ctx, bucket, prefix)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Lister) HasObjects(ctx context.Context, bucket, prefix string) (bool, error) {
	args := m.Called(ctx, bucket, prefix)
	return args.Bool(0), args.Error(1)
}
