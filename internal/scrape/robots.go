package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const robotsCacheTTL = time.Hour

type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
}

// RobotsChecker fetches and caches robots.txt per host. Hosts whose
// robots.txt cannot be fetched are treated as fully allowed.
type RobotsChecker struct {
	client  *http.Client
	nowFunc func() time.Time

	mu    sync.Mutex
	cache map[string]robotsEntry
}

// NewRobotsChecker creates a checker backed by the given HTTP client.
func NewRobotsChecker(client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		client:  client,
		nowFunc: time.Now,
		cache:   make(map[string]robotsEntry),
	}
}

// Allowed reports whether the given URL may be fetched by the given user
// agent according to the host's robots.txt.
func (c *RobotsChecker) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}

	data, err := c.robotsFor(ctx, u)
	if err != nil {
		return false, err
	}
	if data == nil {
		return true, nil
	}
	return data.TestAgent(u.Path, userAgent), nil
}

func (c *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Scheme + "://" + u.Host

	c.mu.Lock()
	entry, ok := c.cache[host]
	c.mu.Unlock()
	if ok && c.nowFunc().Sub(entry.fetchedAt) < robotsCacheTTL {
		return entry.data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}

	var data *robotstxt.RobotsData
	resp, err := c.client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr == nil && resp.StatusCode == http.StatusOK {
			if parsed, parseErr := robotstxt.FromBytes(body); parseErr == nil {
				data = parsed
			}
		}
	}

	c.mu.Lock()
	c.cache[host] = robotsEntry{data: data, fetchedAt: c.nowFunc()}
	c.mu.Unlock()
	return data, nil
}
