package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout steps of a signed-in user.
type CheckoutHandler struct {
	userService  *services.UserService
	orderService *services.OrderService
	validate     *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(userService *services.UserService, orderService *services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		userService:  userService,
		orderService: orderService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/profile", middleware.AuthRequired(), h.HandleProfile)
	router.Put("/shipping-address", middleware.AuthRequired(), h.HandleUpdateAddress)
	router.Put("/payment-method", middleware.AuthRequired(), h.HandleUpdatePaymentMethod)
	router.Post("/place-order", middleware.AuthRequired(), h.HandlePlaceOrder)
}

type paymentMethodRequest struct {
	Type models.PaymentMethod `json:"type" validate:"required,oneof=WalletProvider CardProcessor PayOnDelivery"`
}

// HandleProfile returns the signed-in user.
func (h *CheckoutHandler) HandleProfile(c *fiber.Ctx) error {
	user, res, err := h.userService.Profile(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, user)
}

// HandleUpdateAddress stores the shipping address.
func (h *CheckoutHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var address models.ShippingAddress
	if ok, err := parseBody(c, h.validate, &address); !ok {
		return err
	}
	res, err := h.userService.UpdateAddress(c.UserContext(), middleware.IdentityFrom(c), address)
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, nil)
}

// HandleUpdatePaymentMethod stores the preferred payment method.
func (h *CheckoutHandler) HandleUpdatePaymentMethod(c *fiber.Ctx) error {
	var req paymentMethodRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	res, err := h.userService.UpdatePaymentMethod(c.UserContext(), middleware.IdentityFrom(c), req.Type)
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, nil)
}

// HandlePlaceOrder creates an order from the cart.
func (h *CheckoutHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	order, res, err := h.orderService.PlaceOrder(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	if !res.Success {
		return reply(c, res, 0, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     res.Message,
		"order":       order,
		"redirectUrl": "/order/" + order.ID,
	})
}
