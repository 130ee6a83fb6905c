package catalog

import (
	"context"
	"time"

	"sjsage522/freegameworker/internal/game"
	"sjsage522/freegameworker/logger"
	"sjsage522/freegameworker/services/cache"
)

// CachedCatalog remembers positive existence answers so repeated polls do
// not ask the catalog about offers it already holds. Negative answers and
// errors are never cached.
type CachedCatalog struct {
	Catalog
	cache cache.CacheService
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedCatalog wraps inner with an existence cache
func NewCachedCatalog(inner Catalog, cacheSvc cache.CacheService, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		Catalog: inner,
		cache:   cacheSvc,
		ttl:     ttl,
		log:     logger.ForCache(),
	}
}

func existsKey(key game.PartialGame) string {
	return cache.Key("exists", key.Store.String(), key.ID)
}

// Exists answers from the cache when possible
func (c *CachedCatalog) Exists(ctx context.Context, key game.PartialGame) (bool, error) {
	if _, err := c.cache.Get(existsKey(key)); err == nil {
		return true, nil
	}

	exists, err := c.Catalog.Exists(ctx, key)
	if err != nil {
		return exists, err
	}
	if exists {
		c.remember(key)
	}
	return exists, nil
}

// Submit stores g and remembers it as existing
func (c *CachedCatalog) Submit(ctx context.Context, g game.Game) error {
	if err := c.Catalog.Submit(ctx, g); err != nil {
		return err
	}
	c.remember(g.Key())
	return nil
}

func (c *CachedCatalog) remember(key game.PartialGame) {
	if err := c.cache.Set(existsKey(key), []byte("1"), c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache existence")
	}
}
