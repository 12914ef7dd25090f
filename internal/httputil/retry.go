// Package httputil provides the retry policy shared by the outbound HTTP
// collaborators.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff interval; each retry doubles it.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// Retryable reports whether a status code is worth another attempt:
// 429 and any 5xx.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// DoWithRetry executes req and retries on 429 and 5xx responses with
// exponential backoff, honoring a Retry-After header given in seconds.
// When maxRetries is 0 the default (3) is used. After exhausting retries
// the last response is returned so the caller can inspect it. before, if
// non-nil, runs ahead of every attempt including the first; an error from
// it is returned as is and no request is sent. onRetry, if non-nil, is
// called before each backoff. Requests with a body are replayed through
// GetBody.
func DoWithRetry(
	ctx context.Context,
	client *http.Client,
	req *http.Request,
	maxRetries int,
	before func(ctx context.Context) error,
	onRetry func(attempt int, status int),
) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		if before != nil {
			if err := before(ctx); err != nil {
				return nil, err
			}
		}

		r := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		backoff := RetryBaseDelay << attempt
		if ra, err := time.ParseDuration(resp.Header.Get("Retry-After") + "s"); err == nil && ra > backoff {
			backoff = ra
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if onRetry != nil {
			onRetry(attempt+1, resp.StatusCode)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
