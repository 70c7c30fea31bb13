package chromedp_crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in headless Chrome and returns the resulting
// DOM. It implements repository.PageFetcher for script-heavy sources.
type BrowserFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   *zap.Logger

	once          sync.Once
	browserCtx    context.Context
	browserCancel context.CancelFunc
	startErr      error
}

// NewBrowserFetcher prepares a browser allocator. The browser itself starts on
// the first Fetch and is shared by later fetches, each in its own tab. Close
// releases it.
func NewBrowserFetcher(userAgent string, pageLoadTimeout time.Duration, logger *zap.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  pageLoadTimeout,
		logger:   logger,
	}
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	if f.browserCancel != nil {
		f.browserCancel()
	}
	f.cancel()
}

func (f *BrowserFetcher) browser() (context.Context, error) {
	f.once.Do(func() {
		f.browserCtx, f.browserCancel = chromedp.NewContext(f.allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
		if err := chromedp.Run(f.browserCtx); err != nil {
			f.startErr = fmt.Errorf("failed to start browser: %w", err)
		}
	})
	return f.browserCtx, f.startErr
}

// documentResponse holds the first main document response seen on a tab.
type documentResponse struct {
	mu          sync.Mutex
	seen        bool
	status      int
	url         string
	contentType string
}

func (d *documentResponse) observe(ev interface{}) {
	e, ok := ev.(*network.EventResponseReceived)
	if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen {
		return
	}
	d.seen = true
	d.status = int(e.Response.Status)
	d.url = e.Response.URL
	d.contentType = e.Response.MimeType
}

// Fetch navigates a fresh tab to pageURL and captures the rendered markup.
// A non-2xx document response is reported as a *repository.StatusError.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*entity.Page, error) {
	browserCtx, err := f.browser()
	if err != nil {
		return nil, err
	}

	taskCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	// The tab hangs off the shared browser, so the caller's cancellation is
	// forwarded explicitly.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	doc := &documentResponse{}
	chromedp.ListenTarget(taskCtx, doc.observe)

	var markup, location string
	start := time.Now()
	err = chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("rendering %s: %w", pageURL, repository.ErrFetchTimeout)
		}
		return nil, fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	doc.mu.Lock()
	status, contentType := doc.status, doc.contentType
	if location == "" {
		location = doc.url
	}
	doc.mu.Unlock()

	page := &entity.Page{
		URL:            pageURL,
		FinalURL:       location,
		HTTPStatusCode: status,
		ContentType:    contentType,
		Markup:         markup,
		ResponseTimeMS: int(elapsed.Milliseconds()),
		FetchedAt:      time.Now(),
	}

	f.logger.Debug("Rendered page",
		zap.String("url", pageURL),
		zap.Int("status", status),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	)

	if err := statusError(pageURL, status); err != nil {
		return page, err
	}
	return page, nil
}

// statusError maps a document status to an error. 0 means no response event
// was observed, e.g. for pages served from cache, and is not an error.
func statusError(pageURL string, status int) error {
	if status == 0 || (status >= 200 && status < 300) {
		return nil
	}
	return &repository.StatusError{StatusCode: status, URL: pageURL}
}
