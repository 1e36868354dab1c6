// Package limiter spaces outbound registry lookups.
//
// A [Limiter] hands out turns in arrival order so that no two turns start
// within the configured interval of each other. Callers block in
// [Limiter.Schedule] until their turn comes; there is no queue bound, waiting
// is the backpressure.
//
//	l := limiter.New(100 * time.Millisecond)
//	if err := l.Schedule(ctx); err != nil {
//	    return err // ctx was canceled while waiting
//	}
//	// issue the lookup
package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the spacing used when New is given a non-positive interval.
const DefaultInterval = 100 * time.Millisecond

// Limiter serializes callers so consecutive turns are at least Interval apart.
// It is safe for concurrent use.
type Limiter struct {
	interval time.Duration

	mu      sync.Mutex
	rl      *rate.Limiter
	waiting int       // reserved turns that have not started
	last    time.Time // latest turn that started
}

// New creates a Limiter with the given minimum spacing between turns.
// A zero or negative interval selects [DefaultInterval].
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{interval: interval, rl: newRate(interval)}
}

// Unlimited returns a Limiter that never delays callers.
func Unlimited() *Limiter {
	return &Limiter{rl: rate.NewLimiter(rate.Inf, 1)}
}

func newRate(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Interval returns the minimum spacing between turns.
func (l *Limiter) Interval() time.Duration { return l.interval }

// Schedule blocks until it is the caller's turn.
//
// Turns are reserved in call order, so callers are served first come first
// served. If ctx is done before the turn arrives, Schedule returns ctx.Err()
// and gives the reservation back when no later caller depends on it.
func (l *Limiter) Schedule(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := time.Now()
	r := l.rl.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		l.started(now)
		l.mu.Unlock()
		return nil
	}
	l.waiting++
	l.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		l.mu.Lock()
		l.waiting--
		l.started(now.Add(delay))
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.waiting--
		r.Cancel()
		l.mu.Unlock()
		return ctx.Err()
	}
}

// started records a turn start. Callers hold l.mu.
func (l *Limiter) started(at time.Time) {
	if at.After(l.last) {
		l.last = at
	}
}

// Reset drops the debt left behind by callers that gave up waiting, so the
// next turn comes one interval after the latest turn that actually started.
//
// Reset never shortens the spacing: while any caller holds a reserved turn it
// is a no-op.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.interval == 0 || l.waiting > 0 {
		return
	}
	rl := newRate(l.interval)
	if !l.last.IsZero() {
		rl.ReserveN(l.last, 1)
	}
	l.rl = rl
}
