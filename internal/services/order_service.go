package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// DefaultAdminOrderLimit caps the admin order listing.
const DefaultAdminOrderLimit = 100

// OrderService owns the order lifecycle: created, then paid, then delivered.
type OrderService struct {
	orderRepo repositories.OrderRepository
	cartRepo  repositories.CartRepository
	userRepo  repositories.UserRepository
	events    EventPublisher
	now       func() time.Time
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, cartRepo repositories.CartRepository, userRepo repositories.UserRepository, events EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		events:    events,
		now:       time.Now,
	}
}

// PlaceOrder turns the actor's cart into an order using the shipping address
// and payment method saved on the user. The cart is emptied in the same
// transaction.
func (s *OrderService) PlaceOrder(ctx context.Context, actor Identity) (*models.Order, Result, error) {
	if !actor.IsAuthenticated() {
		return nil, fail(ReasonAuthenticationRequired, "sign in to place an order"), nil
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fail(ReasonNotFound, "user not found"), nil
		}
		return nil, Result{}, fmt.Errorf("failed to load user %s: %w", actor.UserID, err)
	}
	if user.Address == nil {
		return nil, fail(ReasonMissingShippingAddress, "no shipping address"), nil
	}
	if !user.PaymentMethod.Valid() {
		return nil, fail(ReasonMissingPaymentMethod, "no payment method"), nil
	}

	cart, err := s.cartRepo.FindByOwner(ctx, actor.CartOwner())
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, Result{}, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, fail(ReasonEmptyCart, "your cart is empty"), nil
	}

	prices := cart.Prices()
	order := &models.Order{
		UserID:          user.ID,
		Items:           make([]models.OrderItem, 0, len(cart.Items)),
		ShippingAddress: *user.Address,
		PaymentMethod:   user.PaymentMethod,
		ItemsPrice:      prices.ItemsPrice,
		ShippingPrice:   prices.ShippingPrice,
		TaxPrice:        prices.TaxPrice,
		TotalPrice:      prices.TotalPrice,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.orderRepo.PlaceFromCart(ctx, order, cart.ID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmptyCart):
			return nil, fail(ReasonEmptyCart, "your cart is empty"), nil
		case errors.Is(err, repositories.ErrCartChanged):
			return nil, fail(ReasonCartChanged, "your cart changed, review it and place the order again"), nil
		}
		return nil, Result{}, fmt.Errorf("failed to place order: %w", err)
	}
	log.Printf("Order %s placed by user %s (%s, total %s)", order.ID, user.ID, order.PaymentMethod, order.TotalPrice.StringFixed(2))
	publishOrderEvent(s.events, EventOrderCreated, order, s.now())
	return order, succeed("Order created"), nil
}

// GetOrderForUser returns an order to its owner or to an administrator.
// Anybody else is told it does not exist.
func (s *OrderService) GetOrderForUser(ctx context.Context, actor Identity, id string) (*models.Order, Result, error) {
	if !actor.IsAuthenticated() {
		return nil, fail(ReasonAuthenticationRequired, "sign in to view orders"), nil
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fail(ReasonNotFound, "order not found"), nil
		}
		return nil, Result{}, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fail(ReasonNotFound, "order not found"), nil
	}
	return order, succeed("ok"), nil
}

// ListUserOrders returns the actor's own orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, actor Identity) ([]models.Order, Result, error) {
	if !actor.IsAuthenticated() {
		return nil, fail(ReasonAuthenticationRequired, "sign in to view orders"), nil
	}
	orders, err := s.orderRepo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to list orders of user %s: %w", actor.UserID, err)
	}
	return orders, succeed("ok"), nil
}

// ListOrders returns the most recent orders of every user. Admin only.
func (s *OrderService) ListOrders(ctx context.Context, actor Identity, limit int) ([]models.Order, Result, error) {
	if !actor.IsAdmin() {
		return nil, fail(ReasonAuthorizationDenied, "administrator role required"), nil
	}
	if limit <= 0 || limit > DefaultAdminOrderLimit {
		limit = DefaultAdminOrderLimit
	}
	orders, err := s.orderRepo.List(ctx, limit)
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, succeed("ok"), nil
}

// MarkDelivered moves a paid order to delivered. Admin only.
func (s *OrderService) MarkDelivered(ctx context.Context, actor Identity, id string) (Result, error) {
	if !actor.IsAdmin() {
		return fail(ReasonAuthorizationDenied, "only administrators can mark orders delivered"), nil
	}

	order, err := s.orderRepo.MarkDelivered(ctx, id, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fail(ReasonNotFound, "order not found"), nil
	case errors.Is(err, repositories.ErrNotPaid):
		return fail(ReasonNotPaid, "order is not paid"), nil
	case errors.Is(err, repositories.ErrAlreadyDelivered):
		return fail(ReasonAlreadyDelivered, "order is already delivered"), nil
	case err != nil:
		return Result{}, fmt.Errorf("failed to mark order %s delivered: %w", id, err)
	}

	log.Printf("Order %s marked delivered by %s", id, actor.UserID)
	publishOrderEvent(s.events, EventOrderDelivered, order, *order.DeliveredAt)
	return succeed("Order has been marked delivered"), nil
}

// markPaid is the only way an order becomes paid. The repository performs the
// check-then-set atomically, so concurrent callers see exactly one success.
func (s *OrderService) markPaid(ctx context.Context, id string, receipt models.PaymentResult, message string) (Result, error) {
	order, err := s.orderRepo.MarkPaid(ctx, id, receipt, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fail(ReasonNotFound, "order not found"), nil
	case errors.Is(err, repositories.ErrAlreadyPaid):
		return fail(ReasonAlreadyPaid, "order is already paid"), nil
	case err != nil:
		return Result{}, fmt.Errorf("failed to mark order %s paid: %w", id, err)
	}

	log.Printf("Order %s paid via %s (receipt %s)", id, receipt.Provider, receipt.ID)
	publishOrderEvent(s.events, EventOrderPaid, order, *order.PaidAt)
	return succeed(message), nil
}
