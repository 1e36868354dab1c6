package deps

import (
	"context"
	"fmt"
)

// Module identifies a package at a specific version.
// An empty Version means the module is absent.
type Module struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// String returns "name@version", or just the name when the version is absent.
func (m Module) String() string {
	if m.Version == "" {
		return m.Name
	}
	return fmt.Sprintf("%s@%s", m.Name, m.Version)
}

// Resolution is what a registry returns for one requested version.
type Resolution struct {
	// Version is the concrete version the request resolved to, such as
	// "1.2.3" for a request of "^1.2.0". Empty when the registry does not
	// report one.
	Version string `json:"version,omitempty"`

	// Dependencies are the direct dependencies in the order the manifest
	// declares them.
	Dependencies []Module `json:"dependencies,omitempty"`
}

// Fetcher retrieves the direct dependency list of one module version.
//
// Implementations wrap HTTP clients for a specific registry. They must be safe
// for concurrent use and should return ctx.Err() when the context is canceled.
// Caching and rate limiting are the caller's concern, see the cache package.
type Fetcher interface {
	// Lookup resolves version (an exact version, a range or a dist-tag) and
	// returns the resolved version with its direct dependencies.
	Lookup(ctx context.Context, name, version string) (Resolution, error)
}

// FetcherFunc adapts an ordinary function to the [Fetcher] interface.
type FetcherFunc func(ctx context.Context, name, version string) (Resolution, error)

// Lookup calls f(ctx, name, version).
func (f FetcherFunc) Lookup(ctx context.Context, name, version string) (Resolution, error) {
	return f(ctx, name, version)
}
