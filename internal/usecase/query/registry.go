package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/metrics"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Registry holds map sessions in memory and evicts idle ones.
type Registry struct {
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*mapsync.Session
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTTL sets the idle timeout. Zero or negative disables eviction.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) { r.ttl = ttl }
}

// WithRegistryClock overrides the clock used for sessions and eviction.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) { r.newID = gen }
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
		sessions: make(map[string]*mapsync.Session),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create starts a new empty session.
func (r *Registry) Create() *mapsync.Session {
	s := mapsync.NewSession(r.newID(), mapsync.WithClock(r.now))

	r.mu.Lock()
	r.sessions[s.ID()] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	return s
}

// Get returns a session by id.
func (r *Registry) Get(id string) (*mapsync.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	s.Touch()
	return s, nil
}

// Delete removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	metrics.SessionsActive.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict drops sessions idle for longer than the TTL and returns how many went.
func (r *Registry) Evict() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	evicted := 0
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if evicted > 0 {
		metrics.SessionsActive.Set(float64(n))
		r.logger.Debug("Evicted idle sessions", zap.Int("evicted", evicted), zap.Int("remaining", n))
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}
