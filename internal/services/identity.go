package services

import (
	"storefront/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// Identity is who a request acts as: an anonymous browser session, or an
// authenticated user who may also still carry a session cart id.
type Identity struct {
	SessionCartID string
	UserID        string
	Name          string
	Role          models.Role
}

// IsAuthenticated reports whether a verified user is attached.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

// IsAdmin reports whether the identity is an authenticated administrator.
func (i Identity) IsAdmin() bool {
	return i.IsAuthenticated() && i.Role == models.RoleAdmin
}

// CartOwner returns the owner of the cart this identity works with.
func (i Identity) CartOwner() models.CartOwner {
	if i.IsAuthenticated() {
		return models.CartOwner{UserID: i.UserID}
	}
	return models.CartOwner{SessionCartID: i.SessionCartID}
}

// Credentials is the identity-relevant state of a request.
type Credentials struct {
	SessionCartID string
	Token         string
}

// TokenVerifier checks a signed session token.
type TokenVerifier interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// IdentityResolver turns request credentials into an Identity.
type IdentityResolver struct {
	verifier TokenVerifier
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(verifier TokenVerifier) *IdentityResolver {
	return &IdentityResolver{verifier: verifier}
}

// Resolve never fails: a missing or unverifiable token yields an anonymous identity.
func (r *IdentityResolver) Resolve(c Credentials) Identity {
	id := Identity{SessionCartID: c.SessionCartID}
	if c.Token == "" || r.verifier == nil {
		return id
	}

	claims, err := r.verifier.ValidateToken(c.Token)
	if err != nil {
		return id
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return id
	}

	id.UserID = userID
	id.Name, _ = claims["name"].(string)
	id.Role = models.RoleUser
	if role, _ := claims["role"].(string); models.Role(role) == models.RoleAdmin {
		id.Role = models.RoleAdmin
	}
	return id
}
