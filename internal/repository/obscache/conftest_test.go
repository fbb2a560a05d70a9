package obscache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/db"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
)

type mockSource struct {
	records []observation.Record
	err     error
	calls   int
}

func (m *mockSource) List(_ context.Context, _ filter.Descriptor) ([]observation.Record, error) {
	m.calls++
	return m.records, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedSource(t *testing.T, inner *mockSource) (*CachedSource, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cs := New(inner, ms, 0, nil, zap.NewNop())
	return cs, ms
}
