// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// The [Client] type holds the HTTP plumbing shared by registry clients:
// default headers, JSON decoding, retry with backoff for transient
// failures, and [observability] HTTP hooks. Registry specifics live in
// subpackages:
//
//   - [npm]: Node Package Manager
//
// # Errors
//
// Clients report failures with sentinel errors that callers match with
// errors.Is:
//
//   - [ErrNotFound]: the package or version does not exist (404)
//   - [ErrRateLimited]: the registry answered 429; retried after Retry-After
//   - [ErrNetwork]: connection failures and other unexpected statuses
//
// Context cancellation is returned as ctx.Err(), never wrapped, so callers
// can tell an abandoned request from a failed one.
//
// [npm]: github.com/matzehuels/stackdiff/pkg/integrations/npm
// [observability]: github.com/matzehuels/stackdiff/pkg/observability
package integrations
