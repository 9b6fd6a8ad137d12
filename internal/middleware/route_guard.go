package middleware

import (
	"net/url"
	"regexp"
	"time"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCartCookie carries the anonymous cart id of a browser.
const SessionCartCookie = "sessionCartId"

const sessionCartMaxAge = 30 * 24 * time.Hour

// DecisionKind is what the guard wants done with a request.
type DecisionKind int

const (
	Allow DecisionKind = iota
	AllowWithCookie
	Redirect
)

func (k DecisionKind) String() string {
	switch k {
	case AllowWithCookie:
		return "allow_with_cookie"
	case Redirect:
		return "redirect"
	default:
		return "allow"
	}
}

// RequestInfo is the part of a request the guard looks at.
type RequestInfo struct {
	Path          string
	RawQuery      string
	SessionCartID string
}

// Decision is the outcome of Evaluate. NewSessionCartID is set whenever the
// request had no session cart id, redirects included.
type Decision struct {
	Kind             DecisionKind
	NewSessionCartID string
	RedirectTo       string
}

// Fiber matches routes case-insensitively, so the guard does too.
var defaultProtected = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(/api/v1)?/shipping-address(/|$)`),
	regexp.MustCompile(`(?i)^(/api/v1)?/payment-method(/|$)`),
	regexp.MustCompile(`(?i)^(/api/v1)?/place-order(/|$)`),
	regexp.MustCompile(`(?i)^(/api/v1)?/profile(/|$)`),
	regexp.MustCompile(`(?i)^(/api/v1)?/user/`),
	regexp.MustCompile(`(?i)^(/api/v1)?/order/`),
	regexp.MustCompile(`(?i)^(/api/v1)?/admin(/|$)`),
}

// RouteGuard decides per request whether it may proceed and makes sure every
// browser gets a session cart id.
type RouteGuard struct {
	signInPath string
	protected  []*regexp.Regexp
	newID      func() string
}

// NewRouteGuard creates a RouteGuard redirecting to signInPath.
func NewRouteGuard(signInPath string) *RouteGuard {
	return &RouteGuard{
		signInPath: signInPath,
		protected:  defaultProtected,
		newID:      func() string { return uuid.New().String() },
	}
}

// IsProtected reports whether path requires a signed-in user.
func (g *RouteGuard) IsProtected(path string) bool {
	for _, re := range g.protected {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Evaluate has no side effects and never fails.
func (g *RouteGuard) Evaluate(req RequestInfo, id services.Identity) Decision {
	var d Decision
	if req.SessionCartID == "" {
		d.Kind = AllowWithCookie
		d.NewSessionCartID = g.newID()
	}

	if !id.IsAuthenticated() && g.IsProtected(req.Path) {
		callback := req.Path
		if req.RawQuery != "" {
			callback += "?" + req.RawQuery
		}
		d.Kind = Redirect
		d.RedirectTo = g.signInPath + "?callbackUrl=" + url.QueryEscape(callback)
	}
	return d
}

// Guard resolves the identity of every request, applies the route guard and
// stores the identity for handlers. It is the only place the session cart
// cookie is written.
func Guard(guard *RouteGuard, resolver *services.IdentityResolver, secureCookies bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := credentials(c)
		id := resolver.Resolve(creds)

		d := guard.Evaluate(RequestInfo{
			Path:          c.Path(),
			RawQuery:      string(c.Request().URI().QueryString()),
			SessionCartID: creds.SessionCartID,
		}, id)

		if d.NewSessionCartID != "" {
			c.Cookie(&fiber.Cookie{
				Name:     SessionCartCookie,
				Value:    d.NewSessionCartID,
				Path:     "/",
				MaxAge:   int(sessionCartMaxAge.Seconds()),
				HTTPOnly: true,
				Secure:   secureCookies,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
			id.SessionCartID = d.NewSessionCartID
		}
		if d.Kind == Redirect {
			return c.Redirect(d.RedirectTo, fiber.StatusFound)
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}
