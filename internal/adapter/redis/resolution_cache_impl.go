package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/pkg/utils"
)

const resolutionPrefix = "resolution:"

// ResolutionCacheImpl implements repository.ResolutionCache with one JSON
// value per page URL.
type ResolutionCacheImpl struct {
	client *redis.Client
}

// NewResolutionCache creates a new instance of ResolutionCacheImpl.
func NewResolutionCache(client *redis.Client) *ResolutionCacheImpl {
	return &ResolutionCacheImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *ResolutionCacheImpl) generateKey(pageURL string) string {
	return resolutionPrefix + utils.HashURL(pageURL)
}

// Get returns the cached resolution for pageURL. A missing key is a miss, not
// an error.
func (r *ResolutionCacheImpl) Get(ctx context.Context, pageURL string) (*entity.Resolution, bool, error) {
	raw, err := r.client.Get(ctx, r.generateKey(pageURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached resolution: %w", err)
	}

	var res entity.Resolution
	if err := json.Unmarshal(raw, &res); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Put.
		return nil, false, nil
	}
	res.Cached = true
	return &res, true, nil
}

// Put stores res under its page URL. SETEX is atomic and sets the expiry.
func (r *ResolutionCacheImpl) Put(ctx context.Context, res *entity.Resolution, expiry time.Duration) error {
	stored := *res
	stored.Cached = false
	raw, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to encode resolution: %w", err)
	}
	return r.client.SetEx(ctx, r.generateKey(res.PageURL), raw, expiry).Err()
}

// Forget removes a cached resolution.
func (r *ResolutionCacheImpl) Forget(ctx context.Context, pageURL string) error {
	return r.client.Del(ctx, r.generateKey(pageURL)).Err()
}

// Ping reports whether the server is reachable.
func (r *ResolutionCacheImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
