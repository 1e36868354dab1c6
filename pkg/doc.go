// Package pkg provides the core libraries for Stackdiff dependency comparison.
//
// # Overview
//
// Stackdiff compares two versions of an npm package by crawling both
// versions' dependency trees side by side. Where the trees diverge it reports
// version changes, dependencies present on only one side, circular
// references and lookups that failed.
//
// # Architecture
//
// The data flow of one comparison:
//
//	npm registry
//	     ↓
//	[integrations/npm] client (one version's direct dependencies)
//	     ↓
//	[limiter] (spaces outbound requests)
//	     ↓
//	[cache] (deduplicates and memoizes lookups)
//	     ↓
//	[crawl] (walks both trees, merging siblings with [deps].Merge)
//	     ↓
//	[crawl].Snapshot → text, JSON, DOT or SVG ([render/nodelink])
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/stackdiff/pkg/cache"
//	    "github.com/matzehuels/stackdiff/pkg/crawl"
//	    "github.com/matzehuels/stackdiff/pkg/integrations/npm"
//	    "github.com/matzehuels/stackdiff/pkg/limiter"
//	)
//
//	registry := npm.NewClient(npm.DefaultRegistry, nil)
//	rc := cache.New(registry, cache.Options{
//	    TTL:     cache.DefaultTTL,
//	    Limiter: limiter.New(limiter.DefaultInterval),
//	})
//	sess, err := crawl.New(rc, crawl.Options{}).Compare(ctx, "express", "4.17.0", "4.18.2")
//	if err != nil {
//	    return err // ctx ended; sess still holds the partial tree
//	}
//	fmt.Println(sess.Snapshot().Root.Differences)
//
// # Main Packages
//
//   - [deps]: Module, Fetcher and the sibling merge
//   - [limiter]: FIFO spacing of registry requests
//   - [cache]: request cache with in-flight deduplication and TTL
//   - [crawl]: the dual-tree crawler, difference classification and snapshots
//   - [integrations]: HTTP client with retries; [integrations/npm] registry client
//   - [session]: addressable comparisons for the HTTP API
//   - [render/nodelink]: Graphviz export
//   - [errors]: coded errors and input validation
//   - [observability]: hooks for cache, HTTP and crawl events
//
// [deps]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/deps
// [limiter]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/limiter
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/cache
// [crawl]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/crawl
// [integrations]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/integrations
// [integrations/npm]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/integrations/npm
// [session]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/session
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackdiff/pkg/observability
package pkg
