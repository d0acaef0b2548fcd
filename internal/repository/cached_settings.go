package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/simnotice/simnotice/internal/domain"
)

// CachedSettings fronts SettingRepo with a TTL cache for per-key reads.
// Writes go through and flush the cache.
type CachedSettings struct {
	repo  *SettingRepo
	cache *cache.Cache
}

func NewCachedSettings(repo *SettingRepo, ttl time.Duration) *CachedSettings {
	return &CachedSettings{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedSettings) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	var missing []string

	for _, k := range keys {
		if v, ok := c.cache.Get(k); ok {
			out[k] = v.(string)
			continue
		}
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := c.repo.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for k, v := range loaded {
		c.cache.SetDefault(k, v)
		out[k] = v
	}
	return out, nil
}

func (c *CachedSettings) GetAll(ctx context.Context) ([]domain.Setting, error) {
	return c.repo.GetAll(ctx)
}

func (c *CachedSettings) BatchUpdate(ctx context.Context, values map[string]string) error {
	if err := c.repo.BatchUpdate(ctx, values); err != nil {
		return err
	}
	c.cache.Flush()
	return nil
}
