// Package crawl compares two versions of a package by walking both
// versions' dependency trees side by side.
//
// # Overview
//
// A comparison is rooted at one module name and two versions. The root
// [Node] looks up the direct dependencies of each version, merges the two
// lists by module name with [deps.Merge], and starts one child node per
// merged name. Children repeat the process until every branch ends:
//
//   - the dependency is missing on both sides
//   - the version on a side was already visited on the path from the root
//     (a circular reference)
//   - the session was stopped or canceled
//   - the configured maximum depth was reached
//
// # Versions
//
// Each [Side] keeps the version or range the parent requested ([Side.Hint])
// and the concrete version the registry resolved it to ([Side.Resolved]).
// Differences and cycles are judged on resolved versions where known: "^1.2.0"
// and "1.2.3" that both resolve to 1.2.3 are the same dependency, and a range
// that resolves to a version already on the path is circular.
// [Node.AreHintsDifferent] still reports that the requests differed.
//
// A node is done only after all of its descendants are done, so
// [Session.Done] closes exactly once, when the whole tree has settled.
//
// # Failures
//
// Lookup failures never abort a comparison. The failing side records the
// error in [Side.Err], its dependency list counts as empty, and the other
// side keeps going. The finished tree is a partial, annotated result.
//
// Cancellation is not a failure: a side whose lookup was canceled has
// [Side.Canceled] set and no error.
//
// # Usage
//
//	source := cache.New(npm.NewClient(cfg.Registry, logger), cache.Options{TTL: time.Hour})
//	c := crawl.New(source, crawl.Options{Logger: logger})
//
//	s := c.Start(ctx, "express", "4.17.1", "4.18.2")
//	<-s.Done()
//	snap := s.Snapshot()
//
// [deps.Merge]: github.com/matzehuels/stackdiff/pkg/deps.Merge
package crawl
