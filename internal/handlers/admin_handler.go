package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the administrator actions. Role checks happen in the
// services so that refusals come back as results.
type AdminHandler struct {
	orderService   *services.OrderService
	paymentService *services.PaymentService
	reportService  *services.ReportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orderService *services.OrderService, paymentService *services.PaymentService, reportService *services.ReportService) *AdminHandler {
	return &AdminHandler{
		orderService:   orderService,
		paymentService: paymentService,
		reportService:  reportService,
	}
}

// RegisterRoutes registers the admin routes with the Fiber app.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin", middleware.AuthRequired())
	adminRoutes.Get("/overview", h.HandleOverview)
	adminRoutes.Get("/orders", h.HandleListOrders)
	adminRoutes.Put("/orders/:id/pay", h.HandleMarkPaid)
	adminRoutes.Put("/orders/:id/deliver", h.HandleMarkDelivered)
}

// HandleOverview returns the sales overview.
func (h *AdminHandler) HandleOverview(c *fiber.Ctx) error {
	overview, res, err := h.reportService.Overview(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, overview)
}

// HandleListOrders lists the latest orders of all users.
func (h *AdminHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, res, err := h.orderService.ListOrders(c.UserContext(), middleware.IdentityFrom(c), c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, orders)
}

// HandleMarkPaid records payment of a pay-on-delivery order.
func (h *AdminHandler) HandleMarkPaid(c *fiber.Ctx) error {
	res, err := h.paymentService.MarkPaidOnDelivery(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, nil)
}

// HandleMarkDelivered records delivery of a paid order.
func (h *AdminHandler) HandleMarkDelivered(c *fiber.Ctx) error {
	res, err := h.orderService.MarkDelivered(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return reply(c, res, fiber.StatusOK, nil)
}
