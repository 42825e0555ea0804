package model

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError is the classified form of a failed board fetch. Adapters and
// the notifier surface it instead of opaque strings so callers can decide
// between retrying now, honoring a rate limit, or giving up on the source
// until the next poll cycle.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is worth another attempt within
// the same fetch. Rate limits and server-side errors are; other 4xx mean
// the request itself is wrong and repeating it cannot help.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RateLimited reports whether the upstream board throttled us. Callers
// should wait at least RetryAfter (when set) before the next request to
// that host.
func (e *HTTPError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
