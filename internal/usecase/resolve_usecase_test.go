package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"go.uber.org/zap"
)

func TestResolvePage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*entity.Page{
		"https://x.test/page": {
			URL:    "https://x.test/page",
			Markup: `<meta property="og:image" content="/a.jpg">`,
		},
	}}
	cache := newMemCache()
	uc := NewImageResolver(fetcher, cache, 0, zap.NewNop())

	res, err := uc.ResolvePage(context.Background(), "www.x.test/page")
	if err == nil {
		// "www.x.test/page" normalizes to https://www.x.test/page, which the
		// fake does not serve.
		t.Fatalf("expected a 404 for an unknown page, got %+v", res)
	}
	if repository.StatusCodeOf(err) != 404 {
		t.Errorf("expected status error to propagate, got %v", err)
	}

	res, err = uc.ResolvePage(context.Background(), "https://x.test/page")
	if err != nil {
		t.Fatalf("ResolvePage() error = %v", err)
	}
	if !res.Found || res.ImageURL != "https://x.test/a.jpg" || res.Strategy != "meta" || res.Host != "x.test" {
		t.Errorf("unexpected resolution %+v", res)
	}
	if res.Cached {
		t.Error("first resolution should not be marked cached")
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}

	calls := len(fetcher.calls)
	again, err := uc.ResolvePage(context.Background(), "https://x.test/page")
	if err != nil {
		t.Fatal(err)
	}
	if len(fetcher.calls) != calls {
		t.Error("cache hit should not refetch the page")
	}
	if !again.Cached || again.ImageURL != res.ImageURL {
		t.Errorf("unexpected cached resolution %+v", again)
	}

	if err := uc.Invalidate(context.Background(), "https://x.test/page"); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.ResolvePage(context.Background(), "https://x.test/page"); err != nil {
		t.Fatal(err)
	}
	if len(fetcher.calls) != calls+1 {
		t.Error("an invalidated page should be fetched again")
	}
}

func TestResolvePage_NoImage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*entity.Page{
		"https://x.test/plain": {URL: "https://x.test/plain", Markup: `<p>text only</p>`},
	}}
	res, err := NewImageResolver(fetcher, nil, 0, zap.NewNop()).ResolvePage(context.Background(), "https://x.test/plain")
	if err != nil {
		t.Fatalf("ResolvePage() error = %v", err)
	}
	if res.Found || res.ImageURL != "" {
		t.Errorf("expected no image, got %+v", res)
	}
}

func TestResolvePage_UsesFinalURLAsBase(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*entity.Page{
		"https://x.test/old": {
			URL:      "https://x.test/old",
			FinalURL: "https://y.test/new/",
			Markup:   `<meta property="og:image" content="img.png">`,
		},
	}}
	res, err := NewImageResolver(fetcher, nil, 0, zap.NewNop()).ResolvePage(context.Background(), "https://x.test/old")
	if err != nil {
		t.Fatal(err)
	}
	if res.ImageURL != "https://y.test/new/img.png" {
		t.Errorf("ImageURL = %q", res.ImageURL)
	}
}

func TestResolvePage_InvalidURL(t *testing.T) {
	fetcher := &fakeFetcher{}
	_, err := NewImageResolver(fetcher, nil, 0, zap.NewNop()).ResolvePage(context.Background(), "nodots")
	if !errors.Is(err, ErrInvalidPageURL) {
		t.Errorf("expected ErrInvalidPageURL, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Error("an invalid URL must not be fetched")
	}
}
