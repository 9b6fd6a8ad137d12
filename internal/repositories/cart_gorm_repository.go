package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

func ownerScope(owner models.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.UserID != "" {
			return db.Where("user_id = ?", owner.UserID)
		}
		return db.Where("session_cart_id = ? AND user_id IS NULL", owner.SessionCartID)
	}
}

func findCart(tx *gorm.DB, owner models.CartOwner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("cart without owner: %w", ErrNotFound)
	}
	var cart models.Cart
	err := tx.Scopes(ownerScope(owner)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart of %+v: %w", owner, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

// FindByOwner returns the cart of a user, or of an anonymous session.
func (r *GORMCartRepository) FindByOwner(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	return findCart(r.db.WithContext(ctx), owner)
}

// AddItem adds item to the owner's cart, creating the cart on first use. An
// existing line for the same product keeps its price snapshot and grows in quantity.
func (r *GORMCartRepository) AddItem(ctx context.Context, owner models.CartOwner, item models.CartItem) (*models.Cart, error) {
	var cart *models.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findCart(tx, owner)
		switch {
		case errors.Is(err, ErrNotFound):
			existing = &models.Cart{ID: uuid.New().String()}
			if owner.UserID != "" {
				existing.UserID = &owner.UserID
			} else {
				existing.SessionCartID = &owner.SessionCartID
			}
			// a concurrent first add may have created the cart meanwhile
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(existing).Error; err != nil {
				return fmt.Errorf("failed to create cart: %w", err)
			}
			if existing, err = findCart(tx, owner); err != nil {
				return err
			}
		case err != nil:
			return err
		}

		var line models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", existing.ID, item.ProductID).First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item.ID = 0
			item.CartID = existing.ID
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add item to cart %s: %w", existing.ID, err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up cart line: %w", err)
		default:
			if err := tx.Model(&line).UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to update cart line: %w", err)
			}
		}

		if err := tx.Model(&models.Cart{}).Where("id = ?", existing.ID).UpdateColumn("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch cart %s: %w", existing.ID, err)
		}
		cart, err = findCart(tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem takes one unit of the product out of the owner's cart and drops
// the line when it reaches zero.
func (r *GORMCartRepository) RemoveItem(ctx context.Context, owner models.CartOwner, productID string) (*models.Cart, error) {
	var cart *models.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findCart(tx, owner)
		if err != nil {
			return err
		}

		var line models.CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", existing.ID, productID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %s in cart %s: %w", productID, existing.ID, ErrNotFound)
			}
			return fmt.Errorf("failed to look up cart line: %w", err)
		}
		if line.Quantity <= 1 {
			err = tx.Delete(&line).Error
		} else {
			err = tx.Model(&line).UpdateColumn("quantity", gorm.Expr("quantity - 1")).Error
		}
		if err != nil {
			return fmt.Errorf("failed to remove product %s from cart %s: %w", productID, existing.ID, err)
		}

		cart, err = findCart(tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// ReassignToUser runs the merge transaction. The user row is locked first so
// two merges for the same user cannot interleave; the session cart is then
// re-read under lock because it may have moved since the caller looked it up.
func (r *GORMCartRepository) ReassignToUser(ctx context.Context, cartID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user with ID %s: %w", userID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock user %s: %w", userID, err)
		}

		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cart, "id = ?", cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart %s vanished: %w", cartID, ErrMergeConflict)
			}
			return fmt.Errorf("failed to lock cart %s: %w", cartID, err)
		}
		if !cart.OwnedBySession() {
			return fmt.Errorf("cart %s: %w", cartID, ErrMergeConflict)
		}

		var stale []string
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", userID).Pluck("id", &stale).Error; err != nil {
			return fmt.Errorf("failed to list carts of user %s: %w", userID, err)
		}
		if len(stale) > 0 {
			if err := tx.Where("cart_id IN ?", stale).Delete(&models.CartItem{}).Error; err != nil {
				return fmt.Errorf("failed to delete items of previous cart: %w", err)
			}
			if err := tx.Where("id IN ?", stale).Delete(&models.Cart{}).Error; err != nil {
				return fmt.Errorf("failed to delete previous cart: %w", err)
			}
		}

		res := tx.Model(&models.Cart{}).
			Where("id = ? AND user_id IS NULL", cartID).
			Updates(map[string]interface{}{
				"user_id":         userID,
				"session_cart_id": nil,
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reassign cart %s: %w", cartID, res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("cart %s: %w", cartID, ErrMergeConflict)
		}
		return nil
	})
}
