package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"

	domainerrors "github.com/emcd/librovore/internal/errors"
)

// robotsEntry caches one host's parsed robots.txt, or the absence of
// one. A nil group means "allow everything" - either robots.txt was
// missing, unreadable, or had no group applicable to our user agent.
// warning is non-empty when robots.txt could not be retrieved or parsed.
type robotsEntry struct {
	group   *robotstxt.Group
	warning string
}

// robotsCache fetches and memoizes robots.txt per host, honoring
// spec.md §4.A's rule: retrieval failure never fails the enclosing
// operation, it degrades to "allow all" plus a warning.
type robotsCache struct {
	proxy *Proxy

	mu      sync.Mutex
	entries map[string]robotsEntry
}

func newRobotsCache(p *Proxy) *robotsCache {
	return &robotsCache{proxy: p, entries: make(map[string]robotsEntry)}
}

// Allowed reports whether rawURL may be fetched under robots.txt for
// its host. unreachable is true when robots.txt itself could not be
// retrieved or parsed (as opposed to being retrieved and found to
// permit everything); warning carries the human-readable detail in
// that case. A definitive disallow rule always yields allowed=false,
// regardless of unreachable.
func (c *robotsCache) Allowed(ctx context.Context, rawURL string) (allowed bool, unreachable bool, warning string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true, false, ""
	}
	host := u.Scheme + "://" + u.Host

	entry, warning := c.entryFor(ctx, host)
	if entry.group == nil {
		return true, warning != "", warning
	}
	return entry.group.Test(u.Path), false, ""
}

// CrawlDelay returns the advisory Crawl-Delay for rawURL's host, or
// zero when none applies. Callers treat this as advisory only (spec.md
// §4.A); it never gates a fetch.
func (c *robotsCache) CrawlDelay(ctx context.Context, rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	host := u.Scheme + "://" + u.Host
	entry, _ := c.entryFor(ctx, host)
	if entry.group == nil {
		return 0
	}
	return entry.group.CrawlDelay.Seconds()
}

func (c *robotsCache) entryFor(ctx context.Context, host string) (robotsEntry, string) {
	c.mu.Lock()
	if entry, ok := c.entries[host]; ok {
		c.mu.Unlock()
		return entry, entry.warning
	}
	c.mu.Unlock()

	entry, warning := c.fetch(ctx, host)
	entry.warning = warning

	c.mu.Lock()
	c.entries[host] = entry
	c.mu.Unlock()

	return entry, warning
}

func (c *robotsCache) fetch(ctx context.Context, host string) (robotsEntry, string) {
	robotsURL := host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return robotsEntry{}, ""
	}
	req.Header.Set("User-Agent", c.proxy.cfg.UserAgent)

	resp, err := c.proxy.client.Do(req)
	if err != nil {
		return robotsEntry{}, domainerrors.RobotsInaccessibility(robotsURL, err).Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return robotsEntry{}, ""
	}
	if resp.StatusCode >= 400 {
		return robotsEntry{}, domainerrors.RobotsInaccessibility(robotsURL,
			&statusError{code: resp.StatusCode, url: robotsURL}).Error()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return robotsEntry{}, domainerrors.RobotsInaccessibility(robotsURL, err).Error()
	}

	doc, err := robotstxt.FromBytes(body)
	if err != nil {
		return robotsEntry{}, domainerrors.RobotsInaccessibility(robotsURL, err).Error()
	}

	agent := c.proxy.cfg.UserAgent
	if idx := strings.IndexByte(agent, '/'); idx >= 0 {
		agent = agent[:idx]
	}
	return robotsEntry{group: doc.FindGroup(agent)}, ""
}
