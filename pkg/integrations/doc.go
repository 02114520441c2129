// Package integrations provides the HTTP plumbing shared by artifact
// repository clients.
//
// [Client] wraps an [net/http.Client] with default headers, a byte cache
// ([cache.Cache]) with a TTL, and retries with exponential backoff for
// transient failures (connection errors, 429 and 5xx responses). Request
// and cache events are reported through [observability.HTTP] and
// [observability.Cache].
//
// The [maven] subpackage implements the Maven repository layout on top of
// it.
//
// # Errors
//
//   - [ErrNotFound]: the repository answered 404
//   - [ErrNetwork]: connection failures and unexpected status codes
//
// Transient errors are wrapped in [httputil.RetryableError].
package integrations
