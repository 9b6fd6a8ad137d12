package handlers

import (
	"log"
	"time"

	"storefront/internal/payments"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives signed events from the card processor.
type WebhookHandler struct {
	paymentService *services.PaymentService
	secret         string
	tolerance      time.Duration
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(paymentService *services.PaymentService, secret string) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		secret:         secret,
		tolerance:      payments.DefaultWebhookTolerance,
	}
}

// RegisterRoutes registers the webhook routes with the Fiber app.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/webhooks/card-processor", h.HandleCardProcessor)
}

// HandleCardProcessor verifies the signature and confirms the capture. Events
// that cannot be applied are acknowledged anyway; redelivery would not help.
func (h *WebhookHandler) HandleCardProcessor(c *fiber.Ctx) error {
	event, err := payments.ParseWebhook(c.Body(), c.Get("Stripe-Signature"), h.secret, h.tolerance)
	if err != nil {
		log.Printf("Rejected card processor webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid webhook",
		})
	}

	res, err := h.paymentService.ConfirmCardCapture(c.UserContext(), event)
	if err != nil {
		return err
	}
	if !res.Success {
		log.Printf("Card processor event %s for order %s not applied: %s (%s)", event.ID, event.OrderID, res.Message, res.Reason)
	}
	return c.JSON(fiber.Map{
		"received": true,
		"message":  res.Message,
	})
}
