package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"
)

// Initiation is what a buyer needs to start paying for an order.
type Initiation struct {
	Result
	PaymentMethod   models.PaymentMethod `json:"paymentMethod,omitempty"`
	ProviderOrderID string               `json:"providerOrderId,omitempty"`
	ClientSecret    string               `json:"clientSecret,omitempty"`
}

// PaymentService runs the capture flow of each payment method and hands
// successful captures to the order lifecycle.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	lifecycle *OrderService
	wallet    payments.WalletProvider
	card      payments.CardProcessor
	currency  string
	timeout   time.Duration
}

// NewPaymentService creates a new PaymentService. Every provider call is
// bounded by timeout.
func NewPaymentService(orderRepo repositories.OrderRepository, lifecycle *OrderService, wallet payments.WalletProvider, card payments.CardProcessor, currency string, timeout time.Duration) *PaymentService {
	return &PaymentService{
		orderRepo: orderRepo,
		lifecycle: lifecycle,
		wallet:    wallet,
		card:      card,
		currency:  currency,
		timeout:   timeout,
	}
}

// providerFailure hides provider error details from the caller; they are logged.
func providerFailure() Result {
	return fail(ReasonProviderCommunication, "payment provider unavailable, try again")
}

// InitiateCapture prepares payment of an order with its own payment method.
func (s *PaymentService) InitiateCapture(ctx context.Context, actor Identity, orderID string) (Initiation, error) {
	order, res, err := s.lifecycle.GetOrderForUser(ctx, actor, orderID)
	if err != nil || !res.Success {
		return Initiation{Result: res}, err
	}
	if order.IsPaid {
		return Initiation{Result: fail(ReasonAlreadyPaid, "order is already paid")}, nil
	}

	out := Initiation{PaymentMethod: order.PaymentMethod}
	switch order.PaymentMethod {
	case models.PaymentMethodWallet:
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		id, err := s.wallet.CreateProviderOrder(pctx, payments.ProviderOrderRequest{
			OrderID:  order.ID,
			Amount:   order.TotalPrice,
			Currency: s.currency,
		})
		if err != nil {
			log.Printf("Wallet order for %s failed: %v", order.ID, err)
			out.Result = providerFailure()
			return out, nil
		}
		out.ProviderOrderID = id
		out.Result = succeed("Approve the payment with your wallet")
	case models.PaymentMethodCard:
		minor, err := payments.ToMinorUnits(order.TotalPrice, s.currency)
		if err != nil {
			return out, fmt.Errorf("failed to convert total of order %s: %w", order.ID, err)
		}
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		secret, err := s.card.CreatePaymentIntent(pctx, minor, s.currency, order.ID)
		if err != nil {
			log.Printf("Payment intent for %s failed: %v", order.ID, err)
			out.Result = providerFailure()
			return out, nil
		}
		out.ClientSecret = secret
		out.Result = succeed("Complete the payment with your card")
	case models.PaymentMethodOnDelivery:
		out.Result = succeed("Pay when the order is delivered")
	default:
		out.Result = fail(ReasonInvalidPaymentMethod, fmt.Sprintf("unsupported payment method %q", order.PaymentMethod))
	}
	return out, nil
}

// ConfirmWalletCapture trusts the buyer's approval only after the provider
// confirms that the approved amount, currency and reference match the order.
// Money is captured after that check and before the order is marked paid.
func (s *PaymentService) ConfirmWalletCapture(ctx context.Context, actor Identity, orderID, providerOrderID string) (Result, error) {
	order, res, err := s.lifecycle.GetOrderForUser(ctx, actor, orderID)
	if err != nil || !res.Success {
		return res, err
	}
	if order.PaymentMethod != models.PaymentMethodWallet {
		return fail(ReasonInvalidPaymentMethod, "order is not paid with a wallet"), nil
	}
	if order.IsPaid {
		return fail(ReasonAlreadyPaid, "order is already paid"), nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	approval, err := s.wallet.VerifyApproval(pctx, providerOrderID)
	if err != nil {
		log.Printf("Wallet approval %s for order %s not verified: %v", providerOrderID, order.ID, err)
		return providerFailure(), nil
	}
	if msg := s.mismatch(order, approval); msg != "" {
		log.Printf("Wallet approval %s rejected for order %s: %s", providerOrderID, order.ID, msg)
		return fail(ReasonProviderVerificationFailed, msg), nil
	}

	receipt := models.PaymentResult{
		Provider:     string(models.PaymentMethodWallet),
		ID:           approval.ProviderOrderID,
		Status:       approval.Status,
		EmailAddress: approval.PayerEmail,
		PricePaid:    order.TotalPrice.StringFixed(2),
	}
	// A COMPLETED provider order was captured by an earlier attempt whose
	// mark-paid never ran.
	if approval.Status == payments.PayPalStatusApproved {
		capture, err := s.wallet.Capture(pctx, providerOrderID)
		if err != nil {
			log.Printf("Wallet capture %s for order %s failed: %v", providerOrderID, order.ID, err)
			return providerFailure(), nil
		}
		if capture.Status != payments.PayPalStatusCompleted {
			return fail(ReasonProviderVerificationFailed, fmt.Sprintf("capture status %s", capture.Status)), nil
		}
		if !capture.Amount.Equal(order.TotalPrice) || !payments.SameCurrency(capture.Currency, s.currency) {
			log.Printf("Wallet capture %s for order %s captured %s %s", providerOrderID, order.ID, capture.Amount, capture.Currency)
			return fail(ReasonProviderVerificationFailed, "captured amount does not match the order total"), nil
		}
		receipt.ID = capture.ID
		receipt.Status = capture.Status
		if capture.PayerEmail != "" {
			receipt.EmailAddress = capture.PayerEmail
		}
	}

	return s.lifecycle.markPaid(ctx, order.ID, receipt, "Order paid successfully")
}

func (s *PaymentService) mismatch(order *models.Order, approval *payments.Approval) string {
	if approval.Status != payments.PayPalStatusApproved && approval.Status != payments.PayPalStatusCompleted {
		return fmt.Sprintf("payment not approved (status %s)", approval.Status)
	}
	// CreateProviderOrder always sets the reference; a provider order without
	// one was not created for this order.
	if approval.ReferenceID != order.ID {
		return "approval belongs to another order"
	}
	if !payments.SameCurrency(approval.Currency, s.currency) {
		return fmt.Sprintf("approved currency %s does not match %s", approval.Currency, s.currency)
	}
	if !approval.Amount.Equal(order.TotalPrice) {
		return fmt.Sprintf("approved amount %s does not match order total %s",
			approval.Amount.StringFixed(2), order.TotalPrice.StringFixed(2))
	}
	return ""
}

// ConfirmCardCapture marks an order paid from a verified card-processor event.
// Events other than a succeeded payment are acknowledged and ignored.
func (s *PaymentService) ConfirmCardCapture(ctx context.Context, event *payments.CardEvent) (Result, error) {
	if event.Type != payments.EventPaymentSucceeded {
		return succeed(fmt.Sprintf("event %s ignored", event.Type)), nil
	}
	if event.OrderID == "" {
		return fail(ReasonNotFound, "payment intent carries no order"), nil
	}

	order, err := s.orderRepo.GetByID(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(ReasonNotFound, "order not found"), nil
		}
		return Result{}, fmt.Errorf("failed to load order %s: %w", event.OrderID, err)
	}
	if order.PaymentMethod != models.PaymentMethodCard {
		return fail(ReasonInvalidPaymentMethod, "order is not paid by card"), nil
	}

	received, err := payments.FromMinorUnits(event.AmountReceived, event.Currency)
	if err != nil || !payments.SameCurrency(event.Currency, s.currency) {
		return fail(ReasonProviderVerificationFailed, fmt.Sprintf("unexpected currency %q", event.Currency)), nil
	}
	if !received.Equal(order.TotalPrice) {
		log.Printf("Payment intent %s for order %s received %s, expected %s", event.PaymentIntentID, order.ID, received, order.TotalPrice)
		return fail(ReasonProviderVerificationFailed, "received amount does not match the order total"), nil
	}

	return s.lifecycle.markPaid(ctx, order.ID, models.PaymentResult{
		Provider:     string(models.PaymentMethodCard),
		ID:           event.PaymentIntentID,
		Status:       event.Status,
		EmailAddress: event.ReceiptEmail,
		PricePaid:    received.StringFixed(2),
	}, "Order paid successfully")
}

// MarkPaidOnDelivery records cash collected on delivery. Admin only, and only
// for orders placed with PayOnDelivery.
func (s *PaymentService) MarkPaidOnDelivery(ctx context.Context, actor Identity, orderID string) (Result, error) {
	if !actor.IsAdmin() {
		return fail(ReasonAuthorizationDenied, "only administrators can mark orders paid"), nil
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(ReasonNotFound, "order not found"), nil
		}
		return Result{}, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}
	if order.PaymentMethod != models.PaymentMethodOnDelivery {
		return fail(ReasonInvalidPaymentMethod, "only pay-on-delivery orders can be marked paid"), nil
	}

	return s.lifecycle.markPaid(ctx, order.ID, models.PaymentResult{
		Provider:  string(models.PaymentMethodOnDelivery),
		ID:        order.ID,
		Status:    "COLLECTED",
		PricePaid: order.TotalPrice.StringFixed(2),
	}, "Order marked paid")
}
