// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil fetches alert pages over HTTP with backoff on rate limits.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests shorten it.
var RetryBaseDelay = 2 * time.Second

const (
	defaultMaxRetries = 5
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "scholar-mail/dev"

	// maxBodyBytes bounds how much of a page is read.
	maxBodyBytes = 16 << 20
)

// Fetcher downloads documents for link extraction.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	logger     *zap.Logger
}

// NewFetcher returns a Fetcher configured from cfg. A nil client gets one
// with cfg.Timeout (default 30s).
func NewFetcher(client *http.Client, cfg types.HTTPConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	f := &Fetcher{
		client:     client,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if f.maxRetries <= 0 {
		f.maxRetries = defaultMaxRetries
	}
	return f
}

// Get downloads url and returns the body. Any status other than 200 after
// retries is an error.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// do executes req and retries on HTTP 429 with exponential backoff starting
// at RetryBaseDelay. After maxRetries the last 429 response is returned. A
// cancelled context during backoff returns ctx.Err().
func (f *Fetcher) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests || attempt >= f.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := RetryBaseDelay << attempt
		f.logger.Info("rate limited, backing off",
			zap.String("url", req.URL.String()),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", f.maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
