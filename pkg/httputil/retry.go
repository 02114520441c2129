package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryableError marks a transient failure. After is the wait the server
// asked for through Retry-After, zero when it gave none.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is marked transient.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy bounds retries of transient failures. The delay doubles after
// each attempt and never exceeds MaxDelay, nor does a server-requested wait.
type Policy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultPolicy is used by repository clients.
var DefaultPolicy = Policy{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}

// Do runs fn until it succeeds, fails permanently, or the attempts run out.
// Only [RetryableError] failures are retried. The last error is returned,
// or ctx.Err() when ctx ends during a wait.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || i == attempts-1 {
			return err
		}
		wait := max(delay, re.After)
		if p.MaxDelay > 0 {
			wait = min(wait, p.MaxDelay)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// Retry runs fn under [DefaultPolicy].
func Retry(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}

// RetryAfter parses a Retry-After header given in seconds or as an HTTP
// date relative to now. Missing or malformed values yield zero.
func RetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(header); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}
