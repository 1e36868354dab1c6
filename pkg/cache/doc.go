// Package cache memoizes registry lookups for the comparison crawler.
//
// # Overview
//
// [RequestCache] sits between the crawler and a [deps.Fetcher]. For each
// [Key] (module name and requested version) it:
//
//   - returns a live entry immediately, without touching the network or the
//     rate limiter
//   - attaches concurrent callers for the same key to one in-flight lookup
//   - runs a new lookup otherwise, waiting for a [limiter.Limiter] turn first
//
// Successful results are stored for the configured TTL. Failed lookups are
// never stored, so the next Fetch of the same key tries again.
//
// # Cancellation
//
// Every Fetch takes a context. A caller whose context ends gets ctx.Err()
// back and is detached from the in-flight lookup. The lookup itself keeps
// running as long as at least one caller still waits for it; when the last
// caller leaves, the lookup's context is canceled and whatever it eventually
// returns is discarded. Cancellation never produces a cache entry.
//
// # Lifecycle
//
// A RequestCache is meant to live as long as the process so that repeated
// comparisons share results:
//
//	c := cache.New(npmClient, cache.Options{
//	    TTL:     time.Hour,
//	    Limiter: limiter.New(100 * time.Millisecond),
//	})
//	res, err := c.Fetch(ctx, cache.Key{Name: "express", Version: "^4.18.0"})
//
// [Clear] drops stored entries but leaves in-flight lookups alone. [Drain]
// waits for in-flight lookups to settle and is called on server shutdown.
//
// [deps.Fetcher]: github.com/matzehuels/stackdiff/pkg/deps.Fetcher
// [limiter.Limiter]: github.com/matzehuels/stackdiff/pkg/limiter.Limiter
// [Clear]: RequestCache.Clear
// [Drain]: RequestCache.Drain
package cache
