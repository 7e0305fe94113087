// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with external services.
// This file implements a wrapper around a plain HTTP client. The wrapper uses
// the Decorator design pattern to add rate limiting, a per-attempt timeout and
// a bounded retry loop to outbound downloads (poster images from the image
// CDN), so a slow or throttling upstream never blocks a request indefinitely.
//
// Structs:
//   - RateLimitedFetcher: wraps an *http.Client with a token bucket limiter.
//
// Functions:
//   - NewRateLimitedFetcher: A constructor to create a new instance of the wrapped client.
//   - Fetch: downloads a URL, honouring the limiter, the timeout and the retry budget.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

// MaxFetchBytes caps the size of a single downloaded body.
const MaxFetchBytes = 10 << 20

// ErrPermanentFetch marks a failure that retrying cannot fix (e.g. HTTP 404).
var ErrPermanentFetch = errors.New("permanent fetch failure")

// RateLimitedFetcher is a decorator around *http.Client that limits the request
// rate and retries transient failures.
type RateLimitedFetcher struct {
	Client       *http.Client        // The wrapped HTTP client.
	RateLimit    *rate.Limiter       // Token bucket shared by every download.
	Timeout      time.Duration       // Deadline of a single attempt.
	MaxRetries   int                 // Extra attempts after the first failure.
	Backoff      time.Duration       // Pause between attempts, doubled each retry.
	retryCounter metric.Int64Counter // Counts retried attempts.
}

// NewRateLimitedFetcher is a constructor function that creates a new
// RateLimitedFetcher.
//
// Inputs:
//   - client: the HTTP client to wrap; nil uses http.DefaultClient.
//   - requestsPerSecond: refill rate and burst size of the limiter; values below 1 mean 1.
//   - timeout: per-attempt deadline.
//   - maxRetries: extra attempts after a transient failure.
//
// Outputs:
//   - *RateLimitedFetcher: A pointer to the newly created wrapper.
func NewRateLimitedFetcher(client *http.Client, requestsPerSecond int, timeout time.Duration, maxRetries int) *RateLimitedFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	retries, err := otel.Meter("github.com/jaycherian/gcp-go-movie-reco").Int64Counter("poster.fetch.retries")
	if err != nil {
		slog.Warn("failed to create retry counter", "error", err)
	}
	return &RateLimitedFetcher{
		Client:       client,
		RateLimit:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		Timeout:      timeout,
		MaxRetries:   maxRetries,
		Backoff:      200 * time.Millisecond,
		retryCounter: retries,
	}
}

// Fetch downloads url and returns the body.
//
// Logic Flow:
//  1. Wait for a token from the limiter (or for ctx to end).
//  2. Issue a GET bounded by the per-attempt timeout.
//  3. Return the body on 2xx; stop on a permanent failure (4xx other than 429).
//  4. Otherwise back off and try again until the retry budget is spent.
//
// Inputs:
//   - ctx: The context for the request; cancelling it aborts waiting and retries.
//   - url: The absolute URL to download.
//
// Outputs:
//   - []byte: the response body, at most MaxFetchBytes long.
//   - error: the last error once all attempts failed.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := f.Backoff
	for attempt := 0; attempt <= f.MaxRetries; attempt++ {
		if attempt > 0 {
			if f.retryCounter != nil {
				f.retryCounter.Add(ctx, 1)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err := f.RateLimit.Wait(ctx); err != nil {
			return nil, err
		}
		body, err := f.attempt(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if errors.Is(err, ErrPermanentFetch) {
			break
		}
	}
	return nil, lastErr
}

func (f *RateLimitedFetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermanentFetch, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrPermanentFetch, url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes))
}
