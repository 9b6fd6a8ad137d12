package repositories

import (
	"context"

	"storefront/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateAddress(ctx context.Context, id string, address models.ShippingAddress) error
	UpdatePaymentMethod(ctx context.Context, id string, method models.PaymentMethod) error
}
