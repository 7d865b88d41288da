// Package partner provides a resilient HTTP client for the ad partner's
// audience API
package partner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "adrelay/internal/platform/errors"
	"adrelay/internal/platform/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "adrelay-sync"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond

	// bodyTailMax bounds how much of an error body is kept for diagnostics
	bodyTailMax = 2048
)

// Options configures the Client
type Options struct {
	BaseURL     string
	AccessToken string
	UserAgent   string
	Timeout     time.Duration

	// Retry config for transient and rate limited responses on
	// idempotent calls. Mutations are never retried here
	MaxRetries int
	RetryBase  time.Duration
}

// StatusError is a non-2xx partner response after the retry budget is
// spent. Body is a bounded tail of the response for diagnostics
type StatusError struct {
	Status int
	Body   string
}

// Error implements error
func (e *StatusError) Error() string {
	return fmt.Sprintf("partner status %d body %s", e.Status, e.Body)
}

// Client is a minimal partner REST client with bounded exponential backoff
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("partner"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Do issues a request with auth headers and, when retry is true, bounded
// backoff on transport errors and transient statuses. When retry is
// false any non-2xx returns a *StatusError immediately so the caller can
// classify it
func (c *Client) Do(ctx context.Context, method, path string, body []byte, retry bool) (*http.Response, error) {
	url := c.opts.BaseURL + path
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "partner new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.opts.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.AccessToken)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !retry || !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "partner do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("partner transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("partner http response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		if retry && perr.RetryableStatus(resp.StatusCode) && c.shouldRetry(attempts) {
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", wait).Msg("partner transient status retrying")
			drainAndClose(resp.Body)
			c.sleep(wait)
			attempts++
			continue
		}

		tail := readTail(resp.Body)
		_ = resp.Body.Close()
		return nil, &StatusError{Status: resp.StatusCode, Body: tail}
	}
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func (c *Client) backoff(attempt int) time.Duration {
	// simple exponential with cap
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	ceil := int64(30 * time.Second / time.Millisecond)
	if ms > ceil {
		ms = ceil
	}
	return time.Duration(ms) * time.Millisecond
}

// retryAfter honors a Retry-After header in seconds when present
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func readTail(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, bodyTailMax))
	return string(b)
}

func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, bodyTailMax))
	_ = rc.Close()
}
