package service

import (
	"context"

	"ticketshop/internal/models"
	"ticketshop/internal/redisclient"
	"ticketshop/internal/store"
	"ticketshop/internal/util"

	"go.uber.org/zap"
)

// CatalogClient reads ticket products through a Redis cache with the database
// as the source of truth. A nil cache degrades to DB-only reads.
type CatalogClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(store *store.Store, redis *redisclient.Client) *CatalogClient {
	return &CatalogClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// GetProduct retrieves a product, nil when it does not exist
func (c *CatalogClient) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient.GetProduct")
	defer span.End()

	if c.redis != nil {
		product, err := c.redis.GetProduct(ctx, productID)
		if err != nil {
			c.logger.Warn("Product cache read failed, falling back to DB",
				zap.Int64("product_id", productID),
				zap.Error(err))
		} else if product != nil {
			return product, nil
		}
	}

	product, err := c.store.GetProductByID(ctx, productID)
	if err != nil || product == nil {
		return nil, err
	}

	if c.redis != nil {
		if err := c.redis.SetProduct(ctx, product); err != nil {
			c.logger.Warn("Failed to cache product",
				zap.Int64("product_id", productID),
				zap.Error(err))
		}
	}

	return product, nil
}

// ListProducts retrieves the full catalogue from the database
func (c *CatalogClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return c.store.GetProducts(ctx)
}
