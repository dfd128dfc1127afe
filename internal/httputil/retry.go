// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across pipeline stages.
package httputil

import (
	"io"
	"net/http"
	"time"
)

// RetryDelay is the pause before retrying an HTTP 429 response. Tests
// override this to avoid real sleeps.
var RetryDelay = 3 * time.Second

const defaultMaxRetries = 2

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) after a fixed RetryDelay pause. When maxRetries is 0 the
// default (2) is used. On each 429 the response body is drained and closed
// before sleeping. After exhausting retries the last 429 response is
// returned so the caller can inspect it.
func DoWithRetry(client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(req.Context()))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Retries exhausted, hand the 429 back to the caller.
		if attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		time.Sleep(RetryDelay)
	}
}
