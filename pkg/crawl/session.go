package crawl

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Session is one running or finished comparison.
type Session struct {
	Module string
	First  string
	Second string

	// Root is the top of the comparison tree.
	Root *Node

	ctx    context.Context
	cancel context.CancelFunc
	stop   atomic.Bool
	done   chan struct{}

	mu       sync.Mutex
	started  time.Time
	finished time.Time

	stats struct {
		nodes    atomic.Int64
		lookups  atomic.Int64
		failures atomic.Int64
		canceled atomic.Int64
	}
}

// Stats summarizes a session's progress.
type Stats struct {
	Nodes    int           `json:"nodes"`
	Lookups  int           `json:"lookups"`
	Failures int           `json:"failures"`
	Canceled int           `json:"canceled"`
	Elapsed  time.Duration `json:"elapsed"`
	Finished bool          `json:"finished"`
}

func newSession(ctx context.Context, module, first, second string) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		Module:  module,
		First:   first,
		Second:  second,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
	}
}

// Done is closed exactly once, when the whole tree has settled.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session is done or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop prevents nodes that have not started fetching from crawling further.
// Lookups already in flight run to completion. Stop is idempotent.
func (s *Session) Stop() { s.stop.Store(true) }

// Cancel stops the session and aborts in-flight lookups. Canceled sides are
// marked as such and never cached. Cancel is idempotent.
func (s *Session) Cancel() {
	s.Stop()
	s.cancel()
}

// Stopped reports whether Stop or Cancel was called.
func (s *Session) Stopped() bool { return s.stop.Load() }

func (s *Session) stopping() bool {
	return s.stop.Load() || s.ctx.Err() != nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.finished = time.Now()
	s.mu.Unlock()
	s.cancel()
	close(s.done)
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	elapsed := time.Since(s.started)
	finished := !s.finished.IsZero()
	if finished {
		elapsed = s.finished.Sub(s.started)
	}
	s.mu.Unlock()

	return Stats{
		Nodes:    int(s.stats.nodes.Load()),
		Lookups:  int(s.stats.lookups.Load()),
		Failures: int(s.stats.failures.Load()),
		Canceled: int(s.stats.canceled.Load()),
		Elapsed:  elapsed,
		Finished: finished,
	}
}
