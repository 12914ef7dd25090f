// Package pacing provides the request budget shared by every outbound
// collaborator: search queries, page fetches and catalog pages.
package pacing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ErrDailyLimitReached is returned when the daily request cap has been exhausted.
var ErrDailyLimitReached = errors.New("daily request limit reached")

// CostHint is the throttle state a rate-costed API reports with each
// response.
type CostHint struct {
	Requested   float64
	Available   float64
	RestoreRate float64
}

// Budget paces outbound requests. It combines a per-minute token bucket,
// a rolling 24-hour cap and a pause triggered by low cost hints. Safe for
// concurrent use.
type Budget struct {
	limiter  *rate.Limiter
	daily    atomic.Int64
	maxDaily int64

	costThreshold float64
	costPause     time.Duration

	mu          sync.Mutex
	resetAt     time.Time
	pausedUntil time.Time

	nowFunc   func() time.Time
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// Option configures a Budget.
type Option func(*Budget)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(b *Budget) {
		b.nowFunc = f
	}
}

// WithSleepFunc overrides how the budget waits out a cost pause.
func WithSleepFunc(f func(ctx context.Context, d time.Duration) error) Option {
	return func(b *Budget) {
		b.sleepFunc = f
	}
}

// WithBurst sets the token bucket burst size.
func WithBurst(n int) Option {
	return func(b *Budget) {
		if n > 0 {
			b.limiter.SetBurst(n)
		}
	}
}

// WithCostThreshold pauses all callers for pause whenever an observed cost
// hint reports less than threshold available.
func WithCostThreshold(threshold float64, pause time.Duration) Option {
	return func(b *Budget) {
		b.costThreshold = threshold
		b.costPause = pause
	}
}

// NewBudget creates a budget allowing perMinute requests per minute and
// maxDaily requests per rolling 24 hours. A maxDaily of zero disables the
// daily cap.
func NewBudget(perMinute int, maxDaily int64, opts ...Option) *Budget {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	b := &Budget{
		limiter:       rate.NewLimiter(limit, 1),
		maxDaily:      maxDaily,
		costThreshold: 200,
		costPause:     2 * time.Second,
		nowFunc:       time.Now,
		sleepFunc:     sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.resetAt = b.nowFunc().Add(24 * time.Hour)
	return b
}

// Wait blocks until one more request may be made, or the context is
// canceled. Returns ErrDailyLimitReached once the daily cap is used up.
func (b *Budget) Wait(ctx context.Context) error {
	b.checkDailyReset()

	if used, ok := b.reserve(); !ok {
		return fmt.Errorf("%w (%d/%d)", ErrDailyLimitReached, used, b.maxDaily)
	}

	if d := b.pauseRemaining(); d > 0 {
		if err := b.sleepFunc(ctx, d); err != nil {
			b.release()
			return fmt.Errorf("waiting out cost pause: %w", err)
		}
	}

	if err := b.limiter.Wait(ctx); err != nil {
		b.release()
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// reserve claims one unit of the daily cap. The check and the increment
// are a single compare-and-swap so concurrent callers never overshoot.
func (b *Budget) reserve() (int64, bool) {
	for {
		n := b.daily.Load()
		if b.maxDaily > 0 && n >= b.maxDaily {
			return n, false
		}
		if b.daily.CompareAndSwap(n, n+1) {
			return n + 1, true
		}
	}
}

// release returns a reserved unit whose request never went out.
func (b *Budget) release() {
	for {
		n := b.daily.Load()
		if n <= 0 || b.daily.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// Observe records a cost hint. When the available cost drops below the
// threshold, subsequent Wait calls from every caller hold off for the
// configured pause.
func (b *Budget) Observe(h CostHint) {
	if b.costThreshold <= 0 || h.Available >= b.costThreshold {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	until := b.nowFunc().Add(b.costPause)
	if until.After(b.pausedUntil) {
		b.pausedUntil = until
	}
}

// DailyCount returns the number of requests made in the current window.
func (b *Budget) DailyCount() int64 {
	return b.daily.Load()
}

// MaxDaily returns the configured daily cap (zero when unlimited).
func (b *Budget) MaxDaily() int64 {
	return b.maxDaily
}

// Remaining returns the requests left in the current window, or -1 when
// the daily cap is disabled.
func (b *Budget) Remaining() int64 {
	if b.maxDaily <= 0 {
		return -1
	}
	return max(b.maxDaily-b.daily.Load(), 0)
}

// ResetAt returns when the daily counter next resets.
func (b *Budget) ResetAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resetAt
}

func (b *Budget) pauseRemaining() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pausedUntil.Sub(b.nowFunc())
}

func (b *Budget) checkDailyReset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.nowFunc()
	if now.After(b.resetAt) {
		b.daily.Store(0)
		b.resetAt = now.Add(24 * time.Hour)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
