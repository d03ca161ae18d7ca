package ratelimit

import (
	"context"
	"time"
)

// Store is the shared counter backing the limiter. Implementations must
// make the increment atomic with respect to concurrent calls for the same
// key: the limit is a correctness property, not a hint, and interleaved
// read-modify-write would undercount it.
type Store interface {
	// Incr increments the counter for key within its current window and
	// returns the post-increment count and the window's reset time. A new
	// window starts when none exists or the previous one has elapsed.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}
