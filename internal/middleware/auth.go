package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/yourorg/salesdash/internal/auth"
	"github.com/yourorg/salesdash/internal/models"
)

// ClaimsKey is the fiber Locals key holding the verified *auth.Claims.
const ClaimsKey = "claims"

// TokenVerifier checks a bearer token. *auth.TokenService implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth rejects the request with 401 unless it carries a valid
// "Authorization: Bearer <token>" header. Runs before the body is read.
func RequireAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Authorization header is required")
		}

		token, ok := bearerToken(header)
		if !ok {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}

		claims, err := v.Verify(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RequireWebSocketAuth guards the websocket upgrade. Browsers cannot set
// headers on a websocket handshake, so the token comes from ?token=.
func RequireWebSocketAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{Error: "Websocket upgrade required"})
		}

		token := c.Query("token")
		if token == "" {
			if t, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
				token = t
			}
		}
		if token == "" {
			return unauthorized(c, "Token is required")
		}

		claims, err := v.Verify(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireAuth, or nil.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsKey).(*auth.Claims)
	return claims
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: msg})
}
