package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-simulator/domain"

	"go.uber.org/zap"
)

// CatalogCacheKey holds the JSON-encoded product list.
const CatalogCacheKey = "simulador:produtos"

// ProductCatalog resolves eligible products from a cached copy of the product
// table. Cache failures are logged and fall through to the repository.
type ProductCatalog struct {
	repo   ProductRepository
	cache  CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductCatalog creates a cache-aside catalog over repo.
func NewProductCatalog(repo ProductRepository, cache CacheRepository, ttl time.Duration, logger *zap.Logger) *ProductCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductCatalog{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// FindEligible returns the product covering termMonths and amount, or
// ErrProductNotFound.
func (c *ProductCatalog) FindEligible(ctx context.Context, termMonths int, amount float64) (domain.Product, error) {
	products, err := c.products(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	return FindEligible(products, termMonths, amount)
}

// Refresh reloads the products from the repository and overwrites the cache.
func (c *ProductCatalog) Refresh(ctx context.Context) error {
	products, err := c.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if err := c.store(ctx, products); err != nil {
		return err
	}

	c.logger.Debug("product catalog refreshed",
		zap.String("op", "ProductCatalog.Refresh"),
		zap.Int("products", len(products)),
	)
	return nil
}

func (c *ProductCatalog) products(ctx context.Context) ([]domain.Product, error) {
	raw, ok, err := c.cache.Get(ctx, CatalogCacheKey)
	switch {
	case err != nil:
		c.logger.Warn("product cache read failed",
			zap.String("op", "ProductCatalog.products"),
			zap.Error(err),
		)
	case ok:
		var products []domain.Product
		if err := json.Unmarshal([]byte(raw), &products); err == nil {
			return products, nil
		}
		c.logger.Warn("discarding corrupt product cache entry",
			zap.String("op", "ProductCatalog.products"),
		)
	}

	products, err := c.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := c.store(ctx, products); err != nil {
		c.logger.Warn("product cache write failed",
			zap.String("op", "ProductCatalog.products"),
			zap.Error(err),
		)
	}
	return products, nil
}

func (c *ProductCatalog) store(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}
	if err := c.cache.Set(ctx, CatalogCacheKey, string(data), c.ttl); err != nil {
		return fmt.Errorf("cache products: %w", err)
	}
	return nil
}
