// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for remote indicator sources.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy controls backoff for throttled requests. The zero value uses
// DefaultRetryPolicy.
type RetryPolicy struct {
	// MaxRetries bounds the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the first backoff; each further attempt doubles it.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff, including a server Retry-After.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 3 retries starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxRetries <= 0 {
		p.MaxRetries = d.MaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	return p
}

// backoff returns the wait before retry number attempt (0-based).
func (p RetryPolicy) backoff(attempt int, resp *http.Response) time.Duration {
	d := p.BaseDelay << attempt
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	}
	if d > p.MaxDelay || d < 0 {
		d = p.MaxDelay
	}
	return d
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// DoWithRetry executes req and retries on 429 and 503 responses with
// exponential backoff. A numeric Retry-After header overrides the computed
// delay. The body of each throttled response is drained and closed before
// waiting. Cancelling ctx during a wait returns ctx.Err(). After the last
// retry the throttled response is returned for the caller to inspect.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy, log *zap.Logger) (*http.Response, error) {
	policy = policy.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt >= policy.MaxRetries {
			return resp, nil
		}

		wait := policy.backoff(attempt, resp)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Debug("request throttled",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}
