// Package cache holds the catalog's single read snapshot: one payload with a
// fixed time-to-live, replaced as a whole, invalidated on any listing
// mutation. It is best-effort and never authoritative; the store remains the
// source of truth.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/CenterForCreators/cfc-nft-shared-mint-backend/internal/clock"
)

const DefaultTTL = 10 * time.Second

type Snapshot struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clock.Clock
	takenAt time.Time
	payload []byte
}

func NewSnapshot(ttl time.Duration, clk clock.Clock) *Snapshot {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Snapshot{ttl: ttl, clock: clk}
}

// Get returns the cached payload while it is fresh; otherwise it runs fetch,
// stores the result and returns it. Concurrent stale reads serialize on the
// recompute so the store sees one query, not a stampede.
func (s *Snapshot) Get(ctx context.Context, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.payload != nil && now.Sub(s.takenAt) < s.ttl {
		return s.payload, nil
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.payload = payload
	s.takenAt = now
	return payload, nil
}

// Invalidate empties the snapshot so the next read recomputes.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = nil
	s.takenAt = time.Time{}
}
