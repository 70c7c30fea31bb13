package repository

import (
	"context"
	"time"

	"github.com/user/catalog-imager/internal/entity"
)

// ResolutionCache remembers which image a page resolved to across runs.
type ResolutionCache interface {
	// Get returns the cached resolution of pageURL, or ok=false on a miss.
	Get(ctx context.Context, pageURL string) (res *entity.Resolution, ok bool, err error)
	// Put stores res for pageURL with the given expiry.
	Put(ctx context.Context, res *entity.Resolution, expiry time.Duration) error
	// Forget removes a cached resolution.
	Forget(ctx context.Context, pageURL string) error
}
