package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart of the current browser or user.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"qty" validate:"omitempty,min=1,max=100"`
}

func cartBody(message string, cart *models.Cart) fiber.Map {
	return fiber.Map{
		"message": message,
		"cart":    cart,
		"prices":  cart.Prices(),
	}
}

// HandleGetCart returns the cart with its derived prices.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(cartBody("ok", cart))
}

// HandleAddItem adds a product to the cart. qty defaults to one.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, res, err := h.cartService.AddItem(c.UserContext(), middleware.IdentityFrom(c), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	if !res.Success {
		return reply(c, res, 0, nil)
	}
	return c.JSON(cartBody(res.Message, cart))
}

// HandleRemoveItem takes one unit of a product out of the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, res, err := h.cartService.RemoveItem(c.UserContext(), middleware.IdentityFrom(c), c.Params("productId"))
	if err != nil {
		return err
	}
	if !res.Success {
		return reply(c, res, 0, nil)
	}
	return c.JSON(cartBody(res.Message, cart))
}
