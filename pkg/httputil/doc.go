// Package httputil retries transient repository failures.
//
// Callers mark an error transient by wrapping it in [RetryableError];
// connection failures, 429 and 5xx responses qualify, a 404 never does.
// A server's Retry-After wait, parsed by [RetryAfter], stretches the
// backoff up to the policy's ceiling:
//
//	err := httputil.Retry(ctx, func() error {
//	    return fetchPOM(ctx, url)
//	})
package httputil
