package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for the orders of the signed-in user.
type OrderHandler struct {
	orderService   *services.OrderService
	paymentService *services.PaymentService
	validate       *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, paymentService *services.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/user/orders", middleware.AuthRequired(), h.HandleListMyOrders)

	router.Get("/order/:id", middleware.AuthRequired(), h.HandleGetOrder)
	router.Post("/order/:id/pay", middleware.AuthRequired(), h.HandleInitiatePayment)
	router.Post("/order/:id/wallet/confirm", middleware.AuthRequired(), h.HandleConfirmWallet)
}

type walletConfirmRequest struct {
	ProviderOrderID string `json:"providerOrderId" validate:"required"`
}

// HandleListMyOrders lists the orders of the signed-in user.
func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	orders, res, err := h.orderService.ListUserOrders(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, orders)
}

// HandleGetOrder returns one order of the signed-in user.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, res, err := h.orderService.GetOrderForUser(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, order)
}

// HandleInitiatePayment starts payment with the order's payment method.
func (h *OrderHandler) HandleInitiatePayment(c *fiber.Ctx) error {
	initiation, err := h.paymentService.InitiateCapture(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return reply(c, initiation.Result, fiber.StatusOK, initiation)
}

// HandleConfirmWallet is called after the buyer approved the payment in the wallet.
func (h *OrderHandler) HandleConfirmWallet(c *fiber.Ctx) error {
	var req walletConfirmRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	res, err := h.paymentService.ConfirmWalletCapture(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), req.ProviderOrderID)
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, nil)
}
