package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// UserService stores the checkout preferences of a signed-in user.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Profile returns the acting user.
func (s *UserService) Profile(ctx context.Context, actor Identity) (*models.User, Result, error) {
	if !actor.IsAuthenticated() {
		return nil, fail(ReasonAuthenticationRequired, "sign in to view your profile"), nil
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fail(ReasonNotFound, "user not found"), nil
		}
		return nil, Result{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, succeed("ok"), nil
}

// UpdateAddress saves the shipping address used by the next order.
func (s *UserService) UpdateAddress(ctx context.Context, actor Identity, address models.ShippingAddress) (Result, error) {
	if !actor.IsAuthenticated() {
		return fail(ReasonAuthenticationRequired, "sign in to continue checkout"), nil
	}
	if err := s.userRepo.UpdateAddress(ctx, actor.UserID, address); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(ReasonNotFound, "user not found"), nil
		}
		return Result{}, fmt.Errorf("failed to update address: %w", err)
	}
	return succeed("Shipping address updated"), nil
}

// UpdatePaymentMethod saves the payment method used by the next order.
func (s *UserService) UpdatePaymentMethod(ctx context.Context, actor Identity, method models.PaymentMethod) (Result, error) {
	if !actor.IsAuthenticated() {
		return fail(ReasonAuthenticationRequired, "sign in to continue checkout"), nil
	}
	if !method.Valid() {
		return fail(ReasonInvalidPaymentMethod, fmt.Sprintf("unsupported payment method %q", method)), nil
	}
	if err := s.userRepo.UpdatePaymentMethod(ctx, actor.UserID, method); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(ReasonNotFound, "user not found"), nil
		}
		return Result{}, fmt.Errorf("failed to update payment method: %w", err)
	}
	return succeed("Payment method updated"), nil
}
