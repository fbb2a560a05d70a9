// Package memory implements db.Store in process on patrickmn/go-cache.
package memory

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/bioscout/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultCleanupInterval is how often expired entries are purged.
const DefaultCleanupInterval = 5 * time.Minute

// Store keeps values in memory. Entries written with Set never expire.
type Store struct {
	cache atomic.Pointer[gocache.Cache]
}

// NewStore creates an in-process store. cleanup <= 0 uses DefaultCleanupInterval.
func NewStore(cleanup time.Duration) *Store {
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	s := &Store{}
	s.cache.Store(gocache.New(gocache.NoExpiration, cleanup))
	return s
}

// Ping fails only after Close.
func (s *Store) Ping(context.Context) error {
	if s.cache.Load() == nil {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close drops all entries and the cache itself. go-cache stops its janitor
// goroutine from a finalizer, so the reference must not outlive Close.
func (s *Store) Close() {
	if c := s.cache.Swap(nil); c != nil {
		c.Flush()
	}
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	c := s.cache.Load()
	if c == nil {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrClosed}
	}
	v, ok := c.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	data, _ := v.([]byte)
	return append([]byte(nil), data...), nil
}

// Set stores a value without expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value that expires after ttl. ttl <= 0 never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c := s.cache.Load()
	if c == nil {
		return &db.Error{Op: db.OpSet, Err: db.ErrClosed}
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Del removes a key.
func (s *Store) Del(_ context.Context, key string) error {
	c := s.cache.Load()
	if c == nil {
		return &db.Error{Op: db.OpDel, Err: db.ErrClosed}
	}
	c.Delete(key)
	return nil
}

// Len reports the number of stored items, including expired ones not yet purged.
func (s *Store) Len() int {
	c := s.cache.Load()
	if c == nil {
		return 0
	}
	return c.ItemCount()
}
