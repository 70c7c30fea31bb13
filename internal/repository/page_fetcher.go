package repository

import (
	"context"

	"github.com/user/catalog-imager/internal/entity"
)

// PageFetcher defines the contract for retrieving the markup of a source page.
type PageFetcher interface {
	// Fetch retrieves url. A non-2xx response is reported as a *StatusError.
	Fetch(ctx context.Context, url string) (*entity.Page, error)
}

// ImageDownloader defines the contract for downloading a resolved image.
type ImageDownloader interface {
	// Download returns the body of a 2xx response. Redirects are followed and
	// an empty body is reported as ErrEmptyBody.
	Download(ctx context.Context, url string) ([]byte, error)
}
