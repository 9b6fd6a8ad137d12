package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository. It
// keeps no carts or products, so PlaceFromCart only stores the order and
// MarkPaid leaves stock alone.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Put stores an order as is. Used to seed orders in any state.
func (r *MockOrderRepository) Put(order models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	r.orders[order.ID] = order
}

// PlaceFromCart adds a new order.
func (r *MockOrderRepository) PlaceFromCart(_ context.Context, order *models.Order, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(order.Items) == 0 {
		return ErrEmptyCart
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// ListByUser returns the orders of one user, newest first.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	sortNewestFirst(orderList)
	return orderList, nil
}

// List returns all orders, newest first.
func (r *MockOrderRepository) List(_ context.Context, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	sortNewestFirst(orderList)
	if limit > 0 && len(orderList) > limit {
		orderList = orderList[:limit]
	}
	return orderList, nil
}

// MarkPaid marks an unpaid order paid.
func (r *MockOrderRepository) MarkPaid(_ context.Context, id string, receipt models.PaymentResult, paidAt time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.IsPaid {
		return nil, ErrAlreadyPaid
	}
	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &receipt
	r.orders[id] = order
	return &order, nil
}

// MarkDelivered marks a paid order delivered.
func (r *MockOrderRepository) MarkDelivered(_ context.Context, id string, deliveredAt time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if !order.IsPaid {
		return nil, ErrNotPaid
	}
	if order.IsDelivered {
		return nil, ErrAlreadyDelivered
	}
	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	r.orders[id] = order
	return &order, nil
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
