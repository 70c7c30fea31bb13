package httpfetch

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// ProxyRotator hands out configured proxies in sequence.
type ProxyRotator struct {
	proxies []*url.URL
	mu      sync.Mutex
	index   int
}

// NewProxyRotator parses the proxy URLs once.
func NewProxyRotator(rawProxies []string) (*ProxyRotator, error) {
	r := &ProxyRotator{}
	for _, raw := range rawProxies {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q", raw)
		}
		r.proxies = append(r.proxies, u)
	}
	return r, nil
}

// Next returns a proxy URL from the list, rotating sequentially.
func (r *ProxyRotator) Next() *url.URL {
	if len(r.proxies) == 0 {
		return nil // No proxy
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.proxies[r.index]
	r.index = (r.index + 1) % len(r.proxies)
	return p
}

// Proxy has the signature expected by http.Transport.Proxy.
func (r *ProxyRotator) Proxy(*http.Request) (*url.URL, error) {
	return r.Next(), nil
}
