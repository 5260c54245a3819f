package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"contractor-card-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches companies and questions from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

const catalogKey = "catalog"

// CatalogCache caches the catalog with TTL to avoid repeated DB hits.
type CatalogCache struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	catalog   *domain.Catalog
	expiresAt time.Time
}

func NewCatalogCache(loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := c.cached(c.clock()); ok {
		return catalog, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		now := c.clock()
		if catalog, ok := c.cached(now); ok {
			return catalog, nil
		}

		catalog, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		c.mu.Lock()
		c.catalog = &catalog
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate drops the cached catalog so the next read reloads it.
func (c *CatalogCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	c.catalog = nil
	c.mu.Unlock()
}

func (c *CatalogCache) cached(now time.Time) (domain.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog != nil && c.expiresAt.After(now) {
		return *c.catalog, true
	}
	return domain.Catalog{}, false
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves a fixed catalog (useful for tests/demos).
type StaticCatalogLoader struct {
	catalog domain.Catalog
}

func NewStaticCatalogLoader(catalog domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalog: catalog}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	return l.catalog, nil
}

// StoreCatalogLoader reads the catalog out of the in-memory stores.
type StoreCatalogLoader struct {
	companies *CompanyStore
	questions *QuestionStore
}

func NewStoreCatalogLoader(companies *CompanyStore, questions *QuestionStore) *StoreCatalogLoader {
	return &StoreCatalogLoader{companies: companies, questions: questions}
}

func (l *StoreCatalogLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	companies, err := l.companies.ListCompanies(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	questions, err := l.questions.ListQuestions(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	return domain.Catalog{Companies: companies, Questions: questions}, nil
}
