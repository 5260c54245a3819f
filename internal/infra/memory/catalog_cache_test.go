package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"contractor-card-service/internal/domain"
)

func TestCatalogCacheCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	cache := NewCatalogCache(loader, time.Minute)

	catalog, err := cache.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(catalog.Companies) != 1 || len(catalog.Questions) != 1 {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := cache.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestCatalogCacheInvalidate(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	cache := NewCatalogCache(loader, time.Minute)

	_, _ = cache.GetCatalog(context.Background())
	cache.Invalidate(context.Background())
	_, _ = cache.GetCatalog(context.Background())

	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestCatalogCacheExpires(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	cache := NewCatalogCache(loader, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.GetCatalog(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetCatalog(context.Background())

	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestStoreCatalogLoaderReadsStores(t *testing.T) {
	companies := NewCompanyStore(domain.Company{FullName: "Acme", ShortName: "ACM"})
	questions := NewQuestionStore(
		domain.Question{Question: "first", Options: []string{"a", "b"}, CorrectIndex: 0},
		domain.Question{Question: "second", Options: []string{"a", "b"}, CorrectIndex: 1},
	)
	catalog, err := NewStoreCatalogLoader(companies, questions).LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(catalog.Companies) != 1 || catalog.Companies[0].ShortName != "ACM" {
		t.Fatalf("unexpected companies %+v", catalog.Companies)
	}
	if len(catalog.Questions) != 2 || catalog.Questions[0].Question != "first" {
		t.Fatalf("expected questions oldest first, got %+v", catalog.Questions)
	}
}

type countingLoader struct {
	CatalogLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.CatalogLoader.LoadCatalog(ctx)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Companies: []domain.Company{{ID: "c1", FullName: "Acme", ShortName: "ACM"}},
		Questions: []domain.Question{
			{ID: "q1", Question: "Hard hat required on site?", Options: []string{"Yes", "No"}, CorrectIndex: 0},
		},
	}
}
