// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package breach queries a k-anonymity range endpoint for leaked password
// digests.
//
// Only a five character hex prefix of a digest is sent. The endpoint answers
// with every known suffix sharing that prefix, one record per line.
package breach

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Client defaults.
const (
	DefaultBaseURL   = "https://api.pwnedpasswords.com"
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "authcore-breach-check"

	maxBodyBytes = 1 << 20
)

var prefixRegex = regexp.MustCompile(`^[0-9a-fA-F]{5}$`)

// Client performs range queries over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	maxRetries uint64
	retryBase  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Without WithTimeout its Timeout
// is used, and it must be positive.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds a whole Range call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetry sets how many times a failed attempt is retried and the base of
// the exponential backoff. Zero retries disables retrying.
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		if base > 0 {
			c.retryBase = base
		}
	}
}

// New creates a Client for the endpoint at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, oops.Code("BREACH_INVALID_URL").
			With("base_url", baseURL).
			Errorf("breach endpoint must be an absolute URL")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		maxRetries: 2,
		retryBase:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		return nil, oops.Code("BREACH_INVALID_CLIENT").Errorf("http client is required")
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	if c.httpClient.Timeout <= 0 {
		return nil, oops.Code("BREACH_INVALID_CLIENT").Errorf("http client must have a timeout")
	}
	c.timeout = c.httpClient.Timeout
	return c, nil
}

// Range returns the records for prefix. Transport errors and 5xx responses
// are retried until the client timeout elapses. Any other non-2xx status,
// or a body over the size limit, fails immediately.
func (c *Client) Range(ctx context.Context, prefix string) ([]string, error) {
	if !prefixRegex.MatchString(prefix) {
		return nil, oops.Code("BREACH_INVALID_PREFIX").
			With("prefix", prefix).
			Errorf("prefix must be five hex characters")
	}

	endpoint := c.baseURL + "/range/" + strings.ToUpper(prefix)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lines []string
	attempt := func(ctx context.Context) error {
		var err error
		lines, err = c.fetch(ctx, endpoint)
		return err
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	if err := retry.Do(ctx, backoff, attempt); err != nil {
		return nil, oops.Code("BREACH_CHECK_UNAVAILABLE").
			With("prefix", prefix).
			Wrap(err)
	}
	return lines, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, retry.RetryableError(fmt.Errorf("range endpoint returned %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("range endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	// A truncated list could hide the matching suffix.
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("range response exceeds %d bytes", maxBodyBytes)
	}
	return splitLines(string(body)), nil
}

func splitLines(body string) []string {
	raw := strings.Split(body, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

