// Package deps defines the dependency data model shared by the registry
// clients, the request cache and the comparison crawler.
//
// # Overview
//
// A [Module] is one side of a comparison at one tree position: a package name
// and a version. An empty version means the dependency is missing on that side.
//
// Registry clients implement [Fetcher], which resolves a single (name,
// version) pair and returns a [Resolution]:
//
//	res, err := fetcher.Lookup(ctx, "express", "^4.18.0")
//	// res.Version == "4.18.2", res.Dependencies lists its direct dependencies
//
// The dependency list preserves the order in which the registry declares the
// dependencies. Versions in the list are whatever the manifest declares
// (typically semver ranges like "^1.2.0"); the registry resolves them when
// they are looked up in turn.
//
// # Merging
//
// [Merge] combines the dependency lists of two versions of the same package
// into one list of [Seed] values, one per distinct dependency name:
//
//	first := []deps.Module{{Name: "a", Version: "1.0.0"}, {Name: "b", Version: "1.0.0"}}
//	second := []deps.Module{{Name: "b", Version: "2.0.0"}, {Name: "c", Version: "1.0.0"}}
//	seeds := deps.Merge(first, second)
//	// a: 1.0.0 / -    b: 1.0.0 / 2.0.0    c: - / 1.0.0
//
// Merge is pure and deterministic: names from the first list come first in
// their original order, followed by names only present in the second list.
package deps
