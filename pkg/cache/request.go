package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackdiff/pkg/deps"
	"github.com/matzehuels/stackdiff/pkg/limiter"
	"github.com/matzehuels/stackdiff/pkg/observability"
)

// DefaultTTL is the entry lifetime used by the CLI when nothing is configured.
const DefaultTTL = time.Hour

// Options configures a [RequestCache].
type Options struct {
	// TTL is how long a successful lookup stays valid. Zero disables caching:
	// concurrent callers are still deduplicated, but nothing is stored.
	TTL time.Duration

	// Limiter spaces outbound lookups. Nil means no spacing.
	Limiter *limiter.Limiter

	// Logger receives debug output. Nil uses log.Default().
	Logger *log.Logger

	// Now overrides the clock used for entry ages. Nil uses time.Now.
	Now func() time.Time
}

// RequestCache deduplicates and memoizes dependency lookups.
// It is safe for concurrent use.
type RequestCache struct {
	fetcher deps.Fetcher
	limiter *limiter.Limiter
	ttl     time.Duration
	logger  *log.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[Key]entry
	pending map[Key]*call

	inflight sync.WaitGroup
}

// entry is a stored lookup result.
type entry struct {
	value    deps.Resolution
	storedAt time.Time
}

// call is an in-flight lookup shared by every caller waiting on its key.
type call struct {
	done    chan struct{}
	value   deps.Resolution
	err     error
	cancel  context.CancelFunc
	waiters int

	// abandoned is set when the last waiter left before the lookup settled.
	abandoned bool
}

// New creates a RequestCache that resolves misses with fetcher.
func New(fetcher deps.Fetcher, opts Options) *RequestCache {
	if opts.Limiter == nil {
		opts.Limiter = limiter.Unlimited()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &RequestCache{
		fetcher: fetcher,
		limiter: opts.Limiter,
		ttl:     opts.TTL,
		logger:  opts.Logger,
		now:     opts.Now,
		entries: make(map[Key]entry),
		pending: make(map[Key]*call),
	}
}

// TTL returns the configured entry lifetime.
func (c *RequestCache) TTL() time.Duration { return c.ttl }

// Limiter returns the limiter that spaces outbound lookups.
func (c *RequestCache) Limiter() *limiter.Limiter { return c.limiter }

// Fetch returns the resolved version and dependency list for key.
//
// The returned dependency slice is a copy and may be modified by the caller.
// If ctx ends
// before the result is available, Fetch returns ctx.Err(); see the package
// documentation for what happens to the underlying lookup.
func (c *RequestCache) Fetch(ctx context.Context, key Key) (deps.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return deps.Resolution{}, err
	}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if c.now().Sub(e.storedAt) < c.ttl {
			c.mu.Unlock()
			observability.Cache().OnCacheHit(ctx, key.String())
			return clone(e.value), nil
		}
		delete(c.entries, key)
	}

	cl, shared := c.pending[key]
	if !shared {
		lookupCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		cl = &call{done: make(chan struct{}), cancel: cancel}
		c.pending[key] = cl
		c.inflight.Add(1)
		go c.run(lookupCtx, key, cl)
	}
	cl.waiters++
	c.mu.Unlock()

	if shared {
		observability.Cache().OnCacheShared(ctx, key.String())
		c.logger.Debug("joined pending lookup", "key", key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key.String())
		c.logger.Debug("cache miss", "key", key)
	}

	select {
	case <-cl.done:
		if cl.err != nil {
			return deps.Resolution{}, cl.err
		}
		return clone(cl.value), nil
	case <-ctx.Done():
		c.leave(key, cl)
		return deps.Resolution{}, ctx.Err()
	}
}

func clone(r deps.Resolution) deps.Resolution {
	r.Dependencies = slices.Clone(r.Dependencies)
	return r
}

// leave detaches one waiter from cl and abandons the lookup if nobody is
// left waiting for it.
func (c *RequestCache) leave(key Key, cl *call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl.waiters--
	if cl.waiters > 0 {
		return
	}
	select {
	case <-cl.done:
		return
	default:
	}
	cl.abandoned = true
	cl.cancel()
	if c.pending[key] == cl {
		delete(c.pending, key)
	}
	c.logger.Debug("abandoned lookup", "key", key)
}

func (c *RequestCache) run(ctx context.Context, key Key, cl *call) {
	defer c.inflight.Done()
	defer cl.cancel()

	value, err := c.lookup(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending[key] == cl {
		delete(c.pending, key)
	}
	if err == nil && !cl.abandoned && c.ttl > 0 {
		c.entries[key] = entry{value: value, storedAt: c.now()}
		observability.Cache().OnCacheSet(ctx, key.String(), len(value.Dependencies))
	}
	cl.value, cl.err = value, err
	close(cl.done)
}

func (c *RequestCache) lookup(ctx context.Context, key Key) (deps.Resolution, error) {
	if err := c.limiter.Schedule(ctx); err != nil {
		return deps.Resolution{}, err
	}
	return c.fetcher.Lookup(ctx, key.Name, key.Version)
}

// Clear removes every stored entry. In-flight lookups are not affected and
// store their result when they complete.
func (c *RequestCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of live entries.
func (c *RequestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Sub(e.storedAt) < c.ttl {
			n++
		}
	}
	return n
}

// Pending returns the number of lookups currently in flight.
func (c *RequestCache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Drain blocks until every lookup started by Fetch has settled, including
// abandoned ones still winding down, or until ctx is done.
func (c *RequestCache) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
