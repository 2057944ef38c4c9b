package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// ReloadLimiter throttles snapshot reloads triggered by upstream rescans so
// a burst of file events cannot thrash the store.
type ReloadLimiter struct {
	inner *rate.Limiter
}

// NewReloadLimiter creates a token bucket limiter.
// r: reloads per second. b: burst size.
func NewReloadLimiter(r float64, b int) *ReloadLimiter {
	return &ReloadLimiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Allow reports whether one reload may happen now.
func (l *ReloadLimiter) Allow() bool {
	return l.inner.AllowN(time.Now(), 1)
}

// Wait blocks until a reload token is available.
func (l *ReloadLimiter) Wait(ctx context.Context) error {
	return l.inner.WaitN(ctx, 1)
}
