// Package httpfetch fetches source pages and downloads images over plain HTTP
// using a single explicitly configured client.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

const (
	maxPageBytes  = 16 << 20
	maxImageBytes = 64 << 20
)

// ClientConfig is the identity and transport configuration shared by every
// request of a run. It is built once at startup.
type ClientConfig struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Timeout        time.Duration
	Proxies        []string
	RespectRobots  bool
}

// DefaultClientConfig returns the fixed browser-like identity headers.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		Timeout:        20 * time.Second,
	}
}

// Client implements repository.PageFetcher and repository.ImageDownloader.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	robots     *RobotsChecker
	logger     *zap.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if len(cfg.Proxies) > 0 {
		rotator, err := NewProxyRotator(cfg.Proxies)
		if err != nil {
			return nil, err
		}
		transport.Proxy = rotator.Proxy
	}

	// Cookies set by a page are sent again when its image is downloaded.
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
		logger: logger,
	}
	if cfg.RespectRobots {
		c.robots = NewRobotsChecker(c.httpClient, cfg.UserAgent)
	}
	return c, nil
}

var (
	_ repository.PageFetcher     = (*Client)(nil)
	_ repository.ImageDownloader = (*Client)(nil)
)

// Fetch retrieves the page at url and decodes it to UTF-8.
func (c *Client) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	if c.robots != nil {
		allowed, err := c.robots.Allowed(ctx, url)
		if err != nil {
			c.logger.Debug("robots.txt check failed, assuming allowed", zap.String("url", url), zap.Error(err))
		} else if !allowed {
			return nil, fmt.Errorf("%w: %s", repository.ErrRobotsDisallowed, url)
		}
	}

	start := time.Now()
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	page := &entity.Page{
		URL:            url,
		FinalURL:       resp.Request.URL.String(),
		HTTPStatusCode: resp.StatusCode,
		ContentType:    resp.Header.Get("Content-Type"),
		FetchedAt:      start,
	}

	if !isSuccess(resp.StatusCode) {
		return page, &repository.StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), page.ContentType)
	if err != nil {
		return page, fmt.Errorf("failed to detect page encoding for %s: %w", url, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return page, c.wrapTransportErr(url, err)
	}

	page.Markup = string(body)
	page.ResponseTimeMS = int(time.Since(start).Milliseconds())
	return page, nil
}

// Download retrieves an image and returns its bytes.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &repository.StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, c.wrapTransportErr(url, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrEmptyBody, url)
	}
	return data, nil
}

// get issues a GET with the configured identity headers. Redirects are
// followed by the underlying http.Client.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapTransportErr(url, err)
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Accept != "" {
		req.Header.Set("Accept", c.cfg.Accept)
	}
	if c.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
	}
}

func (c *Client) wrapTransportErr(url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: GET %s: %v", repository.ErrFetchTimeout, url, err)
	}
	return fmt.Errorf("GET %s: %w", url, err)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
