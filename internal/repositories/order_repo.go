package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access. The paid and
// delivered columns are only ever written by MarkPaid and MarkDelivered.
type OrderRepository interface {
	// PlaceFromCart stores the order and empties the cart it was built from
	// in one transaction.
	PlaceFromCart(ctx context.Context, order *models.Order, cartID string) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context, limit int) ([]models.Order, error)
	// MarkPaid moves an unpaid order to paid. It returns ErrAlreadyPaid
	// without writing anything when the order was paid before.
	MarkPaid(ctx context.Context, id string, receipt models.PaymentResult, paidAt time.Time) (*models.Order, error)
	// MarkDelivered moves a paid order to delivered. It returns ErrNotPaid or
	// ErrAlreadyDelivered without writing anything when the guard fails.
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*models.Order, error)
}
