// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches version manifests from the npm registry
// (https://registry.npmjs.org or any compatible mirror). A manifest lists
// the runtime dependencies of one published version.
//
// # Usage
//
//	client := npm.NewClient(npm.DefaultRegistry, logger)
//
//	m, err := client.Manifest(ctx, "express", "^4.18.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.Name, m.Version, m.Dependencies)
//
// # Version Selection
//
// The version argument may be an exact version, a semver range or a
// dist-tag. The registry resolves it to the highest matching published
// version, which is reported in [Manifest.Version].
//
// # Dependency Order
//
// [Manifest.Dependencies] keeps the order of the "dependencies" object in the
// published package.json. devDependencies, peerDependencies and
// optionalDependencies are not included.
//
// # Fetcher
//
// [Client.Lookup] implements [deps.Fetcher], so a Client can back the
// request cache directly. It reports the version the registry resolved the
// request to alongside the dependencies.
//
// [deps.Fetcher]: github.com/matzehuels/stackdiff/pkg/deps.Fetcher
package npm
