package httpfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches robots.txt groups per host.
type RobotsChecker struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.Group
}

func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the configured user agent may fetch link. A missing
// or unreadable robots.txt allows everything.
func (r *RobotsChecker) Allowed(ctx context.Context, link string) (bool, error) {
	u, err := url.Parse(link)
	if err != nil {
		return false, err
	}

	group, err := r.group(ctx, u)
	if err != nil {
		return true, err
	}
	if group == nil {
		return true, nil // No robots.txt or parse error = Allowed
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return group.Test(path), nil
}

func (r *RobotsChecker) group(ctx context.Context, u *url.URL) (*robotstxt.Group, error) {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	group, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return group, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch robots.txt for %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err == nil {
		group = data.FindGroup(r.userAgent)
	}

	r.mu.Lock()
	r.cache[key] = group
	r.mu.Unlock()
	return group, nil
}
