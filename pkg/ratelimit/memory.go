package ratelimit

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryStoreSize bounds the number of tracked keys. Eviction of a
// hot key under pressure only resets its window, which errs on the side of
// allowing a request; it never trips the limit early.
const DefaultMemoryStoreSize = 65536

// MemoryStore is a process-local Store using fixed windows over an
// LRU-bounded key map. Counters are per-process; use RedisStore when the
// limit must hold across instances.
type MemoryStore struct {
	mu      sync.Mutex
	windows *lru.Cache[string, *counterWindow]
	now     func() time.Time
}

type counterWindow struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates an in-memory store tracking at most size keys.
// size <= 0 uses DefaultMemoryStoreSize.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemoryStoreSize
	}
	cache, err := lru.New[string, *counterWindow](size)
	if err != nil {
		// lru.New only fails on non-positive size, excluded above
		panic(err)
	}
	return &MemoryStore{
		windows: cache,
		now:     time.Now,
	}
}

// Incr atomically increments the key's counter within its current window
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows.Get(key)
	if !ok || !now.Before(w.resetAt) {
		w = &counterWindow{resetAt: now.Add(window)}
		s.windows.Add(key, w)
	}

	w.count++
	return w.count, w.resetAt, nil
}

// Purge removes expired windows. The LRU bound already caps memory; this
// just keeps long-idle keys from occupying cache slots.
func (s *MemoryStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, key := range s.windows.Keys() {
		if w, ok := s.windows.Peek(key); ok && !now.Before(w.resetAt) {
			s.windows.Remove(key)
		}
	}
}

// StartPurge runs Purge on the given interval until ctx is cancelled
func (s *MemoryStore) StartPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Purge()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows.Len()
}
