package ics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type cachedBody struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher downloads feeds and remembers validators so unchanged feeds are
// served from memory after a 304.
type Fetcher struct {
	client *resty.Client
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedBody
}

// NewFetcher builds a fetcher with a per-request timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/calendar")
	return &Fetcher{client: client, logger: logger, cache: map[string]cachedBody{}}
}

// Fetch returns the feed body. A network error or non-OK status falls back to
// the last good body when one exists.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed) ([]byte, error) {
	f.mu.Lock()
	prev, hasPrev := f.cache[feed.URL]
	f.mu.Unlock()

	req := f.client.R().SetContext(ctx)
	if hasPrev && prev.etag != "" {
		req.SetHeader("If-None-Match", prev.etag)
	}
	if hasPrev && prev.lastModified != "" {
		req.SetHeader("If-Modified-Since", prev.lastModified)
	}

	resp, err := req.Get(feed.URL)
	if err != nil {
		if hasPrev {
			f.logger.Warn("ics fetch failed, serving cached body", zap.String("feed", feed.ID), zap.Error(err))
			return prev.body, nil
		}
		return nil, fmt.Errorf("fetch ics feed %s: %w", feed.ID, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		body := resp.Body()
		f.mu.Lock()
		f.cache[feed.URL] = cachedBody{
			etag:         resp.Header().Get("ETag"),
			lastModified: resp.Header().Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		return body, nil
	case http.StatusNotModified:
		if hasPrev {
			return prev.body, nil
		}
		return nil, fmt.Errorf("fetch ics feed %s: not modified without cached body", feed.ID)
	default:
		if hasPrev {
			f.logger.Warn("ics fetch returned non-OK status, serving cached body", zap.String("feed", feed.ID), zap.Int("status", resp.StatusCode()))
			return prev.body, nil
		}
		return nil, fmt.Errorf("fetch ics feed %s: unexpected status %s", feed.ID, resp.Status())
	}
}
