package scrape

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/tcg-tools/restock-monitor/internal/metrics"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	// KindBreakerOpen means the source's circuit breaker rejected the fetch.
	KindBreakerOpen ErrorKind = "breaker_open"
	// KindRobots means robots.txt disallows the URL.
	KindRobots ErrorKind = "robots_disallowed"
	// KindStatus means the final attempt ended with a non-2xx status.
	KindStatus ErrorKind = "bad_status"
	// KindTransport means the final attempt failed at the transport level.
	KindTransport ErrorKind = "transport"
)

// FetchError is returned when a fetch cannot be completed.
type FetchError struct {
	Kind   ErrorKind
	Source string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s (%s): %s", e.URL, e.Source, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" status=%d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher performs rate-limited, retrying HTTP GETs against a single source.
// Every fetch waits on the source's spacing gate, rotates the browser
// fingerprint per attempt, and reports the outcome to the source's circuit
// breaker as a single aggregate success or failure. Safe for concurrent use;
// concurrent fetches against the same source serialize through the spacing
// gate.
type Fetcher struct {
	source     string
	client     *http.Client
	limiter    *Limiter
	breaker    *Breaker
	pool       *FingerprintPool
	robots     *RobotsChecker
	maxRetries int
	retryBase  time.Duration
	logger     *slog.Logger
	sleepFunc  func(context.Context, time.Duration) error
}

// FetcherOption customizes Fetcher construction.
type FetcherOption func(*Fetcher)

// WithFetcherLogger sets the logger used for attempt-level diagnostics.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithRobots enables robots.txt checking before each fetch.
func WithRobots(r *RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// NewFetcher creates a fetcher for one source. The limiter and breaker are
// owned by the caller so their state survives across scrape cycles.
func NewFetcher(source string, limiter *Limiter, breaker *Breaker, timeout time.Duration, maxRetries int, retryBase time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:     source,
		client:     &http.Client{Timeout: timeout},
		limiter:    limiter,
		breaker:    breaker,
		pool:       NewFingerprintPool(),
		maxRetries: maxRetries,
		retryBase:  retryBase,
		logger:     slog.Default(),
		sleepFunc:  sleepCtx,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BreakerState returns the current state of the source's circuit breaker.
func (f *Fetcher) BreakerState() BreakerState {
	return f.breaker.State()
}

// Fetch GETs the URL and returns the decoded response body. A fetch that
// exhausts all retries records exactly one failure with the breaker.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !f.breaker.Allow() {
		metrics.FetchesTotal.WithLabelValues(f.source, "breaker_open").Inc()
		return nil, &FetchError{Kind: KindBreakerOpen, Source: f.source, URL: url}
	}

	if f.robots != nil {
		fp := f.pool.Pick()
		allowed, err := f.robots.Allowed(ctx, url, fp.UserAgent)
		if err != nil {
			f.logger.Warn("robots check failed, proceeding", "source", f.source, "error", err)
		} else if !allowed {
			metrics.FetchesTotal.WithLabelValues(f.source, "robots_disallowed").Inc()
			return nil, &FetchError{Kind: KindRobots, Source: f.source, URL: url}
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	lastStatus := 0
	var retryAfter time.Duration
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			if err := f.sleepFunc(ctx, f.backoff(attempt, lastStatus, retryAfter)); err != nil {
				return nil, err
			}
		}

		body, status, ra, err := f.attempt(ctx, url)
		retryAfter = ra
		switch {
		case err == nil && status == http.StatusOK:
			f.breaker.RecordSuccess()
			metrics.FetchesTotal.WithLabelValues(f.source, "ok").Inc()
			metrics.BreakerState.WithLabelValues(f.source).Set(float64(f.breaker.State()))
			return body, nil
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			f.logger.Debug("fetch attempt failed", "source", f.source, "url", url, "attempt", attempt+1, "error", err)
		default:
			lastErr = nil
			lastStatus = status
			f.logger.Debug("fetch attempt got bad status", "source", f.source, "url", url, "attempt", attempt+1, "status", status)
		}
	}

	opened := f.breaker.RecordFailure()
	if opened {
		f.logger.Warn("circuit breaker opened", "source", f.source)
	}
	metrics.FetchesTotal.WithLabelValues(f.source, "error").Inc()
	metrics.BreakerState.WithLabelValues(f.source).Set(float64(f.breaker.State()))

	ferr := &FetchError{Source: f.source, URL: url, Err: lastErr}
	if lastStatus != 0 {
		ferr.Kind = KindStatus
		ferr.Status = lastStatus
	} else {
		ferr.Kind = KindTransport
	}
	return nil, ferr
}

// attempt performs one GET. The status and retryAfter values are only
// meaningful when err is nil.
func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, err
	}

	fp := f.pool.Pick()
	for key, values := range fp.Headers {
		req.Header[key] = values
	}
	req.Header.Set("User-Agent", fp.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, retryAfterHint(resp), nil
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, 0, nil
}

// retryAfterHint extracts the Retry-After delay from a 429 response.
func retryAfterHint(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// backoff returns how long to wait before the given attempt. A 429 with a
// Retry-After header is honored verbatim; everything else gets exponential
// backoff with jitter.
func (f *Fetcher) backoff(attempt int, lastStatus int, retryAfter time.Duration) time.Duration {
	if lastStatus == http.StatusTooManyRequests && retryAfter > 0 {
		return retryAfter
	}
	d := f.retryBase * time.Duration(1<<(attempt-1))
	jitter := time.Duration(rand.Int64N(int64(time.Second)))
	return d + jitter
}

// readBody decodes the response body according to its Content-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(reader)
}
