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

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func itemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// PlaceFromCart creates the order with its items and deletes the cart lines.
func (r *GORMOrderRepository) PlaceFromCart(ctx context.Context, order *models.Order, cartID string) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lines []models.CartItem
		if err := tx.Where("cart_id = ?", cartID).Order("id").Find(&lines).Error; err != nil {
			return fmt.Errorf("failed to read lines of cart %s: %w", cartID, err)
		}
		if len(lines) == 0 {
			return fmt.Errorf("cart %s: %w", cartID, ErrEmptyCart)
		}
		if !sameLines(lines, order.Items) {
			return fmt.Errorf("cart %s: %w", cartID, ErrCartChanged)
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to empty cart %s: %w", cartID, err)
		}
		return nil
	})
}

func sameLines(lines []models.CartItem, items []models.OrderItem) bool {
	if len(lines) != len(items) {
		return false
	}
	for i, line := range lines {
		if line.ProductID != items[i].ProductID || line.Quantity != items[i].Quantity || !line.Price.Equal(items[i].Price) {
			return false
		}
	}
	return true
}

// GetByID retrieves an order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items", itemsByID).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser returns the orders of one user, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items", itemsByID).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of user %s: %w", userID, err)
	}
	return orders, nil
}

// List returns the newest orders of all users. A non-positive limit returns all.
func (r *GORMOrderRepository) List(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).Preload("Items", itemsByID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func lockOrder(tx *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock order %s: %w", id, err)
	}
	if err := tx.Where("order_id = ?", id).Order("id").Find(&order.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items of order %s: %w", id, err)
	}
	return &order, nil
}

// MarkPaid locks the order, checks it is unpaid, stores the receipt and takes
// the ordered quantities out of stock.
func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id string, receipt models.PaymentResult, paidAt time.Time) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, id)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return ErrAlreadyPaid
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND is_paid = ?", id, false).
			Select("IsPaid", "PaidAt", "PaymentResult").
			Updates(&models.Order{IsPaid: true, PaidAt: &paidAt, PaymentResult: &receipt})
		if res.Error != nil {
			return fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}

		for _, item := range order.Items {
			err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to update stock of product %s: %w", item.ProductID, err)
			}
		}

		order.IsPaid = true
		order.PaidAt = &paidAt
		order.PaymentResult = &receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkDelivered locks the order and moves it from paid to delivered.
func (r *GORMOrderRepository) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, id)
		if err != nil {
			return err
		}
		if !order.IsPaid {
			return ErrNotPaid
		}
		if order.IsDelivered {
			return ErrAlreadyDelivered
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND is_paid = ? AND is_delivered = ?", id, true, false).
			Updates(map[string]interface{}{
				"is_delivered": true,
				"delivered_at": deliveredAt,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark order %s delivered: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDelivered
		}

		order.IsDelivered = true
		order.DeliveredAt = &deliveredAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
