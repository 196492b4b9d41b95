package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

type RateLimitedTransport struct {
	base http.RoundTripper
}

type readCloser struct {
	io.Reader
	io.Closer
}

func WithRateLimiting(base http.RoundTripper) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RateLimitedTransport{base: base}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Preserve the original request body for retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		err = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to close request body: %w", err)
		}
	}

	for {
		// Restore the request body for each attempt
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		// Check for 429 status
		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfter(resp)

			if waitDuration > 0 {
				// Close the response body to free resources
				err = resp.Body.Close()
				if err != nil {
					return nil, fmt.Errorf("failed to close response body: %w", err)
				}

				// Wait for the specified duration
				log.Printf("Rate limited, waiting %s", waitDuration)
				select {
				case <-req.Context().Done():
					return nil, req.Context().Err()
				case <-time.After(waitDuration):
					// Continue the loop to retry
					continue
				}
			}
		}

		// Return response for all other cases
		return resp, err
	}
}

// retryAfter extracts the server-requested wait from a 429 response. The
// Retry-After header is tried first, as seconds then as an HTTP date.
// Telegram omits the header on some responses and instead reports
// parameters.retry_after in the JSON body, so that is the fallback.
func retryAfter(resp *http.Response) time.Duration {
	if retryAfterStr := resp.Header.Get("retry-after"); retryAfterStr != "" {
		// Try parsing as seconds
		if seconds, err := strconv.Atoi(retryAfterStr); err == nil {
			return time.Duration(seconds) * time.Second
		}
		if retryTime, err := time.Parse(time.RFC1123, retryAfterStr); err == nil {
			return time.Until(retryTime)
		}
		return 0
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return 0
	}
	// Put the consumed bytes back so callers can still read the error payload
	resp.Body = readCloser{io.MultiReader(bytes.NewReader(body), resp.Body), resp.Body}

	var payload struct {
		Parameters struct {
			RetryAfter int `json:"retry_after"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	return time.Duration(payload.Parameters.RetryAfter) * time.Second
}
