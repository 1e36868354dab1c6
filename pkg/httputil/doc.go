// Package httputil provides HTTP helpers shared by registry clients.
//
// [Retry] re-runs an operation that failed with a [RetryableError], doubling
// the delay after each attempt. Registry clients wrap transient failures
// (network errors, 5xx and 429 responses) so that only those are retried:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.get(ctx, url, &out)
//	})
//
// A RetryableError may carry the wait the server asked for, for example from
// a Retry-After header. Retry never waits less than that.
package httputil
