package handlers

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func statusFor(reason services.Reason) int {
	switch reason {
	case services.ReasonAuthenticationRequired:
		return fiber.StatusUnauthorized
	case services.ReasonAuthorizationDenied:
		return fiber.StatusForbidden
	case services.ReasonNotFound:
		return fiber.StatusNotFound
	case services.ReasonAlreadyPaid, services.ReasonAlreadyDelivered, services.ReasonNotPaid, services.ReasonOutOfStock, services.ReasonCartChanged:
		return fiber.StatusConflict
	case services.ReasonProviderVerificationFailed:
		return fiber.StatusPaymentRequired
	case services.ReasonProviderCommunication:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadRequest
	}
}

// reply writes body with okStatus when res succeeded, and res itself with the
// matching error status otherwise.
func reply(c *fiber.Ctx, res services.Result, okStatus int, body interface{}) error {
	if !res.Success {
		return c.Status(statusFor(res.Reason)).JSON(res)
	}
	if body == nil {
		body = res
	}
	return c.Status(okStatus).JSON(body)
}

// parseBody decodes and validates the request body. When it returns false the
// 400 response has already been written.
func parseBody(c *fiber.Ctx, validate *validator.Validate, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		log.Printf("Error parsing %s %s request body: %v", c.Method(), c.Path(), err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, err
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// ErrorHandler answers every unhandled error. Internal details are logged,
// never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
