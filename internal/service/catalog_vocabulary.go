package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"styleme/internal/model"
)

// CatalogSource supplies the live category and brand lists
type CatalogSource interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListBrands(ctx context.Context) ([]string, error)
}

// CatalogVocabulary caches category names and brands for the extractor.
// A zero TTL reads the catalog on every call.
type CatalogVocabulary struct {
	source CatalogSource
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	categories []model.Category
	brands     []string
	loadedAt   time.Time
}

// NewCatalogVocabulary creates a cached vocabulary over source
func NewCatalogVocabulary(source CatalogSource, ttl time.Duration, logger *zap.Logger) *CatalogVocabulary {
	return &CatalogVocabulary{
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns categories and brands. On a storage error the last good copy is
// returned, or empty lists when none exists.
func (v *CatalogVocabulary) Get(ctx context.Context) ([]model.Category, []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.loadedAt.IsZero() && v.ttl > 0 && v.now().Sub(v.loadedAt) < v.ttl {
		return v.categories, v.brands
	}

	categories, err := v.source.ListCategories(ctx)
	if err != nil {
		v.logger.Error("Failed to load catalog categories", zap.Error(err))
		return v.categories, v.brands
	}
	brands, err := v.source.ListBrands(ctx)
	if err != nil {
		v.logger.Error("Failed to load catalog brands", zap.Error(err))
		return v.categories, v.brands
	}

	v.categories = categories
	v.brands = brands
	v.loadedAt = v.now()
	return categories, brands
}

// Invalidate forces the next Get to reload
func (v *CatalogVocabulary) Invalidate() {
	v.mu.Lock()
	v.loadedAt = time.Time{}
	v.mu.Unlock()
}
