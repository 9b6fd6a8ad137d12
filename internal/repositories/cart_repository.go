package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for cart data access. Carts are only
// mutated through these methods, each of which runs in its own transaction.
type CartRepository interface {
	FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	AddItem(ctx context.Context, owner models.CartOwner, item models.CartItem) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner models.CartOwner, productID string) (*models.Cart, error)
	// ReassignToUser deletes any cart the user already owns and moves the
	// session cart to the user, atomically.
	ReassignToUser(ctx context.Context, cartID, userID string) error
}
