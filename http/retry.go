package http

import (
	"context"
	"time"

	"github.com/fwojciec/sitescout"
)

// Ensure RetryFetcher implements sitescout.Fetcher at compile time.
var _ sitescout.Fetcher = (*RetryFetcher)(nil)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// RetryDelays returns n exponential backoff delays starting at 1s: 1s, 2s, 4s...
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Second << i
	}
	return delays
}

// RetryFetcher wraps a Fetcher and retries failed fetches with backoff.
// Errors that another attempt cannot fix (ENOTFOUND, EINVALID and context
// errors) are returned immediately.
type RetryFetcher struct {
	next   sitescout.Fetcher
	delays []time.Duration
	logger LogFunc
}

// NewRetryFetcher creates a RetryFetcher that waits delays[i] before retry i.
// The logger, if non-nil, is called for each retry attempt.
func NewRetryFetcher(next sitescout.Fetcher, delays []time.Duration, logger LogFunc) *RetryFetcher {
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// Fetch attempts to fetch url up to len(delays)+1 times.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (*sitescout.Page, error) {
	maxAttempts := len(f.delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		page, err := f.next.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !retryable(ctx, err) || attempt >= maxAttempts-1 {
			break
		}

		if f.logger != nil {
			f.logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		// Wait before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}

	return nil, lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch sitescout.ErrorCode(err) {
	case sitescout.ENOTFOUND, sitescout.EINVALID:
		return false
	}
	return true
}
