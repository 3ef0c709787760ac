package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-parts/config"
)

// Fetcher retrieves listing pages through colly. Every call runs on a clone
// of one base collector, so callbacks stay per request while the transport,
// limits and robots cache are shared.
type Fetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	limiter   *hostLimiter
	cache     *lru.Cache[string, string]
	metrics   *Metrics

	requestCount atomic.Int64
	retryCount   atomic.Int64
	cacheHits    atomic.Int64
}

// NewFetcher builds a fetcher configured from cfg. metrics may be nil.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	f := &Fetcher{
		cfg:       cfg,
		collector: collector,
		limiter:   newHostLimiter(cfg.RequestsPerSecond),
		metrics:   metrics,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, string](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		f.cache = cache
	}
	return f, nil
}

// Fetch returns the body of rawURL. Timeouts, connection failures, 429 and
// 5xx responses are retried up to MaxRetries times with capped exponential
// backoff. Any failure is returned as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if body, ok := f.cached(rawURL); ok {
		return body, nil
	}

	for attempt := 0; ; attempt++ {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", &FetchError{URL: rawURL, Err: classifyError(err, 0)}
		}

		body, status, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			if f.cache != nil {
				f.cache.Add(rawURL, body)
			}
			return body, nil
		}

		classified := classifyError(err, status)
		label := errorTypeLabel(classified)
		f.metrics.IncError(label)
		slog.Debug("fetch attempt failed",
			slog.String("url", rawURL),
			slog.Int("attempt", attempt+1),
			slog.Int("status", status),
			slog.String("category", label),
			slog.Any("error", err),
		)

		fetchErr := &FetchError{URL: rawURL, Status: status, Err: classified}
		if attempt >= f.cfg.MaxRetries || !retryable(classified) || ctx.Err() != nil {
			return "", fetchErr
		}

		f.retryCount.Add(1)
		f.metrics.IncRetries()
		if err := sleepWithContext(ctx, backoff(f.cfg, attempt+1)); err != nil {
			return "", fetchErr
		}
	}
}

func (f *Fetcher) cached(rawURL string) (string, bool) {
	if f.cache == nil {
		return "", false
	}
	body, ok := f.cache.Get(rawURL)
	if ok {
		f.cacheHits.Add(1)
		f.metrics.IncCacheHit()
	}
	return body, ok
}

// fetchOnce issues a single synchronous request. Status is 0 when no
// response was received.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (string, int, error) {
	c := f.collector.Clone()

	var (
		body    []byte
		status  int
		reqErr  error
		aborted bool
	)

	c.OnRequest(func(r *colly.Request) {
		if reqCtx, ok := r.Ctx.GetAny("ctx").(context.Context); ok && reqCtx.Err() != nil {
			aborted = true
			r.Abort()
			return
		}
		r.Ctx.Put("start", time.Now())
		f.requestCount.Add(1)
		f.metrics.IncRequest("started")
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
		f.observeDuration(r.Ctx)
		f.metrics.IncRequest("completed")
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			f.observeDuration(r.Ctx)
		}
		reqErr = err
		f.metrics.IncRequest("failed")
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, rawURL, nil, collyCtx, nil); err != nil && reqErr == nil {
		reqErr = err
	}
	if aborted {
		return "", 0, ctx.Err()
	}
	if reqErr != nil {
		return "", status, reqErr
	}
	if status >= http.StatusBadRequest {
		return "", status, fmt.Errorf("status %d", status)
	}
	return string(body), status, nil
}

func (f *Fetcher) observeDuration(ctx *colly.Context) {
	if ctx == nil {
		return
	}
	if start, ok := ctx.GetAny("start").(time.Time); ok {
		f.metrics.ObserveDuration(time.Since(start))
	}
}

// RequestCount returns the number of HTTP requests issued.
func (f *Fetcher) RequestCount() int { return int(f.requestCount.Load()) }

// RetryCount returns the number of retries performed.
func (f *Fetcher) RetryCount() int { return int(f.retryCount.Load()) }

// CacheHits returns the number of pages served from the cache.
func (f *Fetcher) CacheHits() int { return int(f.cacheHits.Load()) }

func backoff(cfg *config.Config, attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
