package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService manages the cart of the acting identity, anonymous or signed in.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the cart of the actor, or an empty cart when none exists yet.
func (s *CartService) GetCart(ctx context.Context, actor Identity) (*models.Cart, error) {
	owner := actor.CartOwner()
	if owner.IsZero() {
		return &models.Cart{Items: []models.CartItem{}}, nil
	}
	cart, err := s.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.Cart{Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

// AddItem puts qty units of a product into the actor's cart at the product's
// current price.
func (s *CartService) AddItem(ctx context.Context, actor Identity, productID string, qty int) (*models.Cart, Result, error) {
	owner := actor.CartOwner()
	if owner.IsZero() {
		return nil, fail(ReasonNoSession, "cart session not found"), nil
	}
	if qty <= 0 {
		return nil, fail(ReasonInvalidQuantity, "quantity must be positive"), nil
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fail(ReasonNotFound, "product not found"), nil
		}
		return nil, Result{}, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	current, err := s.GetCart(ctx, actor)
	if err != nil {
		return nil, Result{}, err
	}
	inCart := 0
	for _, item := range current.Items {
		if item.ProductID == product.ID {
			inCart = item.Quantity
		}
	}
	if inCart+qty > product.Stock {
		return nil, fail(ReasonOutOfStock, "not enough stock"), nil
	}

	cart, err := s.cartRepo.AddItem(ctx, owner, models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Quantity:  qty,
		Price:     product.Price,
	})
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to add product %s to cart: %w", productID, err)
	}
	return cart, succeed(fmt.Sprintf("%s added to cart", product.Name)), nil
}

// RemoveItem takes one unit of a product out of the actor's cart.
func (s *CartService) RemoveItem(ctx context.Context, actor Identity, productID string) (*models.Cart, Result, error) {
	owner := actor.CartOwner()
	if owner.IsZero() {
		return nil, fail(ReasonNoSession, "cart session not found"), nil
	}
	cart, err := s.cartRepo.RemoveItem(ctx, owner, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fail(ReasonNotFound, "item not in cart"), nil
		}
		return nil, Result{}, fmt.Errorf("failed to remove product %s from cart: %w", productID, err)
	}
	return cart, succeed("Item removed from cart"), nil
}
