package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the product lookups the cart needs.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}
