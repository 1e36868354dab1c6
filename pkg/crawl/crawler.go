package crawl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackdiff/pkg/cache"
	"github.com/matzehuels/stackdiff/pkg/deps"
	"github.com/matzehuels/stackdiff/pkg/observability"
)

// Source resolves one requested module version to a concrete version and
// its direct dependencies. [cache.RequestCache] is the standard
// implementation.
//
// Fetch must be safe for concurrent use and must return ctx.Err() when ctx
// ends before a result is available.
type Source interface {
	Fetch(ctx context.Context, key cache.Key) (deps.Resolution, error)
}

// Crawler starts comparison sessions against a shared [Source].
//
// A Crawler holds no per-comparison state; one instance can serve many
// concurrent sessions.
type Crawler struct {
	source Source
	opts   Options
}

// New creates a Crawler that looks up dependencies through source.
func New(source Source, opts Options) *Crawler {
	return &Crawler{source: source, opts: opts.WithDefaults()}
}

// Start begins comparing module at the first and second versions and
// returns immediately. The session runs until its tree settles, or until
// ctx is canceled or [Session.Cancel] is called.
func (c *Crawler) Start(ctx context.Context, module, first, second string) *Session {
	s := newSession(ctx, module, first, second)
	s.Root = newNode(module, 0, newSide(module, first, nil), newSide(module, second, nil))
	s.stats.nodes.Add(1)

	logger := c.opts.Logger.With("module", module)
	logger.Debug("comparison started", "first", first, "second", second)
	observability.Crawl().OnComparisonStart(ctx, module, first, second)

	w := &walk{crawler: c, session: s, logger: logger}
	go func() {
		w.run(s.Root)
		s.finish()

		stats := s.Stats()
		logger.Debug("comparison finished", "nodes", stats.Nodes, "lookups", stats.Lookups,
			"failures", stats.Failures, "elapsed", stats.Elapsed)
		observability.Crawl().OnComparisonComplete(ctx, module, stats.Nodes, stats.Elapsed)
	}()
	return s
}

// Compare runs a comparison to completion. If ctx ends first, the session is
// canceled and Compare returns it along with ctx.Err(); the tree is partial.
func (c *Crawler) Compare(ctx context.Context, module, first, second string) (*Session, error) {
	s := c.Start(ctx, module, first, second)
	if err := s.Wait(ctx); err != nil {
		s.Cancel()
		<-s.Done()
		return s, err
	}
	return s, nil
}

// walk carries the per-session state shared by every node goroutine.
type walk struct {
	crawler *Crawler
	session *Session
	logger  *log.Logger
}

// run crawls n and blocks until n and all of its descendants are done.
func (w *walk) run(n *Node) {
	defer n.finish()

	if w.session.stopping() {
		n.mu.Lock()
		n.stopped = true
		n.mu.Unlock()
		n.settle(nil)
		return
	}
	if limit := w.crawler.opts.MaxDepth; limit > 0 && n.Depth >= limit {
		n.mu.Lock()
		n.truncated = true
		n.mu.Unlock()
		n.settle(nil)
		return
	}

	n.setState(StateFetching)
	var firstList, secondList []deps.Module
	var g errgroup.Group
	g.Go(func() error {
		firstList = w.fetchSide(n, true)
		return nil
	})
	g.Go(func() error {
		secondList = w.fetchSide(n, false)
		return nil
	})
	_ = g.Wait()

	seeds := deps.Merge(firstList, secondList)
	if len(seeds) == 0 {
		n.settle(nil)
		return
	}

	first, second := n.First(), n.Second()
	firstAncestors, secondAncestors := first.extend(n.Name), second.extend(n.Name)
	children := make([]*Node, len(seeds))
	for i, seed := range seeds {
		children[i] = newNode(seed.Name, n.Depth+1,
			newSide(seed.Name, seed.FirstVersion, firstAncestors),
			newSide(seed.Name, seed.SecondVersion, secondAncestors))
	}
	w.session.stats.nodes.Add(int64(len(children)))
	n.settle(children)

	var wg sync.WaitGroup
	wg.Add(len(children))
	for _, child := range children {
		go func() {
			defer wg.Done()
			w.run(child)
		}()
	}
	wg.Wait()
}

// fetchSide looks up one side of n, records the resolved version and returns
// the dependency list. Sides that are missing, circular, failed or canceled
// yield an empty list. A side whose resolved version repeats an ancestor is
// marked circular after the lookup.
func (w *walk) fetchSide(n *Node, first bool) []deps.Module {
	n.mu.Lock()
	side := *n.side(first)
	n.mu.Unlock()

	if n.Name == "" || side.Missing() || side.Circular {
		return nil
	}

	ctx := w.session.ctx
	w.session.stats.lookups.Add(1)
	start := time.Now()
	res, err := w.crawler.source.Fetch(ctx, cache.Key{Name: n.Name, Version: side.Hint})
	if err == nil {
		circular := res.Version != "" && side.repeats(n.Name, res.Version)
		n.mu.Lock()
		s := n.side(first)
		s.Resolved = res.Version
		s.Circular = circular
		n.mu.Unlock()

		w.logger.Debug("resolved", "dependency", n.Name, "version", side.Hint, "resolved", res.Version,
			"count", len(res.Dependencies), "took", time.Since(start))
		if circular {
			return nil
		}
		return res.Dependencies
	}

	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		n.mu.Lock()
		n.side(first).Canceled = true
		n.mu.Unlock()
		w.session.stats.canceled.Add(1)
		return nil
	}

	n.mu.Lock()
	n.side(first).Err = err
	n.mu.Unlock()
	w.session.stats.failures.Add(1)
	w.logger.Warn("lookup failed", "dependency", n.Name, "version", side.Hint, "err", err)
	observability.Crawl().OnLookupFailed(ctx, n.Name, side.Hint, err)
	return nil
}
