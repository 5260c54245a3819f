package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"contractor-card-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches companies and questions from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// CatalogCache keeps the serialized catalog in Redis so every instance shares
// one copy, and falls back to the loader on a miss.
//
//	SET catalog:v1 <json> EX <ttl>
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

const catalogKey = "catalog:v1"

func NewCatalogCache(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := c.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := c.cached(ctx); ok {
			return catalog, nil
		}

		catalog, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		raw, err := json.Marshal(catalog)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := c.client.Set(ctx, catalogKey, raw, c.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache catalog failed: %v", err)
		}
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate removes the shared copy; every instance reloads on next read.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		log.Printf("invalidate catalog failed: %v", err)
	}
}

func (c *CatalogCache) cached(ctx context.Context) (domain.Catalog, bool) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
