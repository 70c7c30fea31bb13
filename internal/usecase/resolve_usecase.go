package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"github.com/user/catalog-imager/internal/resolver"
	"github.com/user/catalog-imager/pkg/metrics"
	"github.com/user/catalog-imager/pkg/utils"
	"go.uber.org/zap"
)

// ErrInvalidPageURL is returned when a page URL has no identifiable host.
var ErrInvalidPageURL = errors.New("page URL has no identifiable host")

// ImageResolver defines the interface for resolving a page to its lead image.
type ImageResolver interface {
	// ResolvePage fetches rawURL and picks its lead image. A page without a
	// usable image is not an error: the result has Found == false.
	ResolvePage(ctx context.Context, rawURL string) (*entity.Resolution, error)
	// Invalidate drops any cached resolution of rawURL.
	Invalidate(ctx context.Context, rawURL string) error
}

type imageResolverUseCase struct {
	fetcher  repository.PageFetcher
	cache    repository.ResolutionCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewImageResolver creates a new ImageResolver use case. A nil cache disables
// caching.
func NewImageResolver(fetcher repository.PageFetcher, cache repository.ResolutionCache, cacheTTL time.Duration, logger *zap.Logger) ImageResolver {
	if cache == nil {
		cache = noopResolutionCache{}
	}
	return &imageResolverUseCase{
		fetcher:  fetcher,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func (uc *imageResolverUseCase) ResolvePage(ctx context.Context, rawURL string) (*entity.Resolution, error) {
	pageURL, host, ok := utils.NormalizeURL(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPageURL, rawURL)
	}

	cached, hit, err := uc.cache.Get(ctx, pageURL)
	if err != nil {
		uc.logger.Warn("Resolution cache lookup failed", zap.String("url", pageURL), zap.Error(err))
	} else if hit {
		uc.logger.Debug("Resolution cache hit", zap.String("url", pageURL))
		return cached, nil
	}

	start := time.Now()
	page, err := uc.fetcher.Fetch(ctx, pageURL)
	metrics.FetchDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
	if err != nil {
		if repository.StatusCodeOf(err) != 0 {
			metrics.PagesFetchedTotal.WithLabelValues("http_error").Inc()
		} else {
			metrics.PagesFetchedTotal.WithLabelValues("failure").Inc()
		}
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageURL, err)
	}
	metrics.PagesFetchedTotal.WithLabelValues("success").Inc()

	now := time.Now().UTC()
	res := &entity.Resolution{
		PageURL:    pageURL,
		Host:       host,
		ResolvedAt: &now,
	}
	if c, found := resolver.ResolveCandidate(page.BaseURL(), page.Markup); found {
		res.ImageURL = c.URL
		res.Strategy = string(c.Strategy)
		res.Found = true
		metrics.CandidatesTotal.WithLabelValues(string(c.Strategy)).Inc()
	} else {
		metrics.CandidatesTotal.WithLabelValues("none").Inc()
	}

	if err := uc.cache.Put(ctx, res, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache resolution", zap.String("url", pageURL), zap.Error(err))
	}
	return res, nil
}

func (uc *imageResolverUseCase) Invalidate(ctx context.Context, rawURL string) error {
	pageURL, _, ok := utils.NormalizeURL(rawURL)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageURL, rawURL)
	}
	return uc.cache.Forget(ctx, pageURL)
}

type noopResolutionCache struct{}

func (noopResolutionCache) Get(context.Context, string) (*entity.Resolution, bool, error) {
	return nil, false, nil
}

func (noopResolutionCache) Put(context.Context, *entity.Resolution, time.Duration) error {
	return nil
}

func (noopResolutionCache) Forget(context.Context, string) error {
	return nil
}
