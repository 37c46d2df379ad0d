// Package fetch implements the HTTP fetch proxy from spec.md §4.A: byte
// and text retrieval with a process-wide TTL cache, retry with backoff,
// and bounded outbound concurrency. Response validators (ETag,
// Last-Modified) are recorded on each cache entry but are not sent back
// as conditional request headers; an expired entry is fetched in full.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/semaphore"

	domainerrors "github.com/emcd/librovore/internal/errors"
)

// Config configures a Proxy per the options enumerated in spec.md §6.
type Config struct {
	UserAgent          string
	Timeout            time.Duration
	DefaultTTL         time.Duration
	MaxConcurrency     int64
	PerHostConcurrency int64
	MaxRedirects       int
	RobotsStrict       bool
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:          userAgent,
		Timeout:            30 * time.Second,
		DefaultTTL:         5 * time.Minute,
		MaxConcurrency:     16,
		PerHostConcurrency: 4,
		MaxRedirects:       10,
		RobotsStrict:       false,
	}
}

type cacheEntry struct {
	body         []byte
	finalURL     string
	header       http.Header
	etag         string
	lastModified string
}

// Proxy is the shared HTTP fetch layer. One Proxy is owned by a Core
// value and reused across every processor and the detection
// orchestrator, so its connection pool and caches are actually shared
// (spec.md §5).
type Proxy struct {
	cfg    Config
	client *http.Client
	cache  *lru.LRU[string, cacheEntry]

	global *semaphore.Weighted

	hostsMu sync.Mutex
	hosts   map[string]*semaphore.Weighted

	robots *robotsCache
}

// New constructs a Proxy. cfg.DefaultTTL is the lifetime of every cache
// entry; FetchBytes and FetchText take no per-call TTL.
func New(cfg Config) *Proxy {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "librovore/dev"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 16
	}
	if cfg.PerHostConcurrency <= 0 {
		cfg.PerHostConcurrency = 4
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: int(cfg.PerHostConcurrency) * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	p := &Proxy{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= cfg.MaxRedirects {
					return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
				}
				return nil
			},
		},
		cache:  lru.NewLRU[string, cacheEntry](4096, nil, cfg.DefaultTTL),
		global: semaphore.NewWeighted(cfg.MaxConcurrency),
		hosts:  make(map[string]*semaphore.Weighted),
	}
	p.robots = newRobotsCache(p)
	return p
}

func (p *Proxy) hostSemaphore(host string) *semaphore.Weighted {
	p.hostsMu.Lock()
	defer p.hostsMu.Unlock()
	sem, ok := p.hosts[host]
	if !ok {
		sem = semaphore.NewWeighted(p.cfg.PerHostConcurrency)
		p.hosts[host] = sem
	}
	return sem
}

// FetchBytes retrieves the raw bytes at url, honoring the TTL cache.
// Transport/4xx/5xx failures surface as *errors.DomainError with Kind
// ContentInaccessibility.
func (p *Proxy) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if entry, ok := p.cache.Get(url); ok {
		return entry.body, nil
	}

	entry, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	p.cache.Add(url, entry)
	return entry.body, nil
}

// FetchText retrieves url's body as a string plus the final URL
// (after redirects) and response headers, so callers can update a
// RedirectCache.
func (p *Proxy) FetchText(ctx context.Context, url string) (body string, finalURL string, headers http.Header, err error) {
	if entry, ok := p.cache.Get(url); ok {
		return string(entry.body), entry.finalURL, entry.header, nil
	}

	entry, err := p.fetch(ctx, url)
	if err != nil {
		return "", "", nil, err
	}
	p.cache.Add(url, entry)
	return string(entry.body), entry.finalURL, entry.header, nil
}

// Purge drops every cached response. Used by tests and by Core.Close.
// The per-host robots.txt cache is kept.
func (p *Proxy) Purge() {
	p.cache.Purge()
}

// CrawlDelay returns the advisory robots.txt Crawl-Delay in effect for
// rawURL's host, or zero. Spec.md §4.A treats this as advisory only; no
// fetch is delayed by it, and the detection orchestrator does not
// consult it.
func (p *Proxy) CrawlDelay(ctx context.Context, rawURL string) float64 {
	return p.robots.CrawlDelay(ctx, rawURL)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}

func (p *Proxy) fetch(ctx context.Context, url string) (cacheEntry, error) {
	allowed, unreachable, warning := p.robots.Allowed(ctx, url)
	switch {
	case unreachable && p.cfg.RobotsStrict:
		return cacheEntry{}, domainerrors.RobotsInaccessibility(url, fmt.Errorf("%s", warning)).WithRetryable(false)
	case !allowed:
		return cacheEntry{}, domainerrors.New(domainerrors.KindContentInaccessibility,
			"disallowed by robots.txt", nil).WithContext("url", url)
	}

	if err := p.global.Acquire(ctx, 1); err != nil {
		return cacheEntry{}, err
	}
	defer p.global.Release(1)

	host := hostOf(url)
	hostSem := p.hostSemaphore(host)
	if err := hostSem.Acquire(ctx, 1); err != nil {
		return cacheEntry{}, err
	}
	defer hostSem.Release(1)

	return domainerrors.RetryIf(ctx, domainerrors.DefaultRetryConfig(), domainerrors.IsRetryable, func() (cacheEntry, error) {
		return p.doRequest(ctx, url)
	})
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d for %s", e.code, e.url)
}

func (p *Proxy) doRequest(ctx context.Context, url string) (cacheEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return cacheEntry{}, domainerrors.ContentInaccessibility(url, err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return cacheEntry{}, domainerrors.ContentInaccessibility(url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return cacheEntry{}, domainerrors.ContentInaccessibility(url, err)
	}
	body = normalizeToUTF8(body, resp.Header.Get("Content-Type"))

	if resp.StatusCode >= 400 {
		statusErr := &statusError{code: resp.StatusCode, url: url}
		if resp.StatusCode >= 500 {
			return cacheEntry{}, domainerrors.ContentInaccessibility(url, statusErr).WithRetryable(true)
		}
		return cacheEntry{}, domainerrors.New(domainerrors.KindContentInaccessibility,
			fmt.Sprintf("http %d for %s", resp.StatusCode, url), statusErr).
			WithContext("status_code", resp.StatusCode)
	}

	return cacheEntry{
		body:         body,
		finalURL:     resp.Request.URL.String(),
		header:       resp.Header,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// normalizeToUTF8 re-encodes body to UTF-8 when contentType or a
// document's own meta tags declare a different charset. Older Sphinx
// and MkDocs builds occasionally still emit latin-1 or windows-1252;
// every downstream processor (goquery, html-to-markdown) assumes UTF-8
// input and silently mangles anything else.
func normalizeToUTF8(body []byte, contentType string) []byte {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return body
	}
	return decoded
}
