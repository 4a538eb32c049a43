package resilience

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// SourceLimiter rate-limits calls per evidence-source key. It is shared
// across verification runs: no run may bypass it.
type SourceLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	failFast bool
}

// NewSourceLimiter creates a limiter allowing rps requests per second
// with the given burst per source key. When failFast is true, Acquire
// returns ErrRateLimited instead of waiting for capacity.
func NewSourceLimiter(rps float64, burst int, failFast bool) *SourceLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		failFast: failFast,
	}
}

func (l *SourceLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Acquire blocks until the source has capacity, or fails fast with
// ErrRateLimited when so configured. Context cancellation aborts the
// wait.
func (l *SourceLimiter) Acquire(ctx context.Context, sourceKey string) error {
	lim := l.limiter(sourceKey)

	if l.failFast {
		if !lim.Allow() {
			return eris.Wrapf(ErrRateLimited, "limiter: %s", sourceKey)
		}
		return nil
	}

	if err := lim.Wait(ctx); err != nil {
		return eris.Wrapf(err, "limiter: wait for %s", sourceKey)
	}
	return nil
}
