package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory object store implementing storage.Lister.
// It counts listing calls so tests can assert that no request was made.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]map[string]struct{}
	calls   int
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string]struct{})}
}

// Put adds object keys to a bucket.
func (m *Memory) Put(bucket string, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string]struct{})
		m.buckets[bucket] = b
	}
	for _, k := range keys {
		b[k] = struct{}{}
	}
}

// Calls returns the number of listing calls made so far.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Memory) ListCommonPrefixes(_ context.Context, bucket, delimiter, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	seen := make(map[string]struct{})
	for key := range m.buckets[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]
		if i := strings.Index(rest, delimiter); i >= 0 {
			seen[prefix+rest[:i+len(delimiter)]] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func (m *Memory) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	matched := make(map[string]struct{})
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			matched[key] = struct{}{}
		}
	}
	return sortedKeys(matched), nil
}

func (m *Memory) HasObjects(_ context.Context, bucket, prefix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			return true, nil
		}
	}
	return false, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
