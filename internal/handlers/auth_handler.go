package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService   *services.AuthService
	merger        *services.CartMergeCoordinator
	validate      *validator.Validate
	tokenTTL      time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, merger *services.CartMergeCoordinator, tokenTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		merger:        merger,
		validate:      validator.New(),
		tokenTTL:      tokenTTL,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/sign-up", h.HandleSignUp)
	authRoutes.Post("/sign-in", h.HandleSignIn)
	authRoutes.Post("/sign-out", h.HandleSignOut)
}

type signUpRequest struct {
	Name            string `json:"name" validate:"omitempty,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	CallbackURL     string `json:"callbackUrl"`
}

type signInRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CallbackURL string `json:"callbackUrl"`
}

// HandleSignUp registers a user and signs them in.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.authService.SignUp(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return err
	}
	return h.startSession(c, user, req.CallbackURL, fiber.StatusCreated, "User registered successfully")
}

// HandleSignIn checks credentials and starts a session.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req signInRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.authService.Authorize(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid email or password",
			})
		}
		return err
	}
	return h.startSession(c, user, req.CallbackURL, fiber.StatusOK, "Signed in successfully")
}

// startSession issues the token, merges the anonymous cart and answers. The
// merge outcome never changes the response.
func (h *AuthHandler) startSession(c *fiber.Ctx, user *services.AuthorizedUser, callbackURL string, status int, message string) error {
	token, err := h.authService.IssueToken(user)
	if err != nil {
		return err
	}

	sessionCartID := middleware.IdentityFrom(c).SessionCartID
	outcome := h.merger.MergeOnSignIn(c.UserContext(), sessionCartID, user.ID)
	if outcome == services.MergeConflict {
		log.Printf("Sign-in of %s continues without cart merge", user.ID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(status).JSON(fiber.Map{
		"message":     message,
		"user":        user,
		"token":       token,
		"callbackUrl": safeCallback(callbackURL),
	})
}

// safeCallback only forwards to local paths.
func safeCallback(callbackURL string) string {
	if !strings.HasPrefix(callbackURL, "/") || strings.HasPrefix(callbackURL, "//") || strings.Contains(callbackURL, `\`) {
		return "/"
	}
	return callbackURL
}

// HandleSignOut clears the session token cookie.
func (h *AuthHandler) HandleSignOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Signed out"})
}
