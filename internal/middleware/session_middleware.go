package middleware

import (
	"strings"

	"github.com/fadilmartias/persona-match/internal/auth"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "session"
	userIDKey     = "user_id"
)

// SessionAuth resolves the caller from a bearer token or the session cookie.
// When required is false an anonymous request passes through with no user id.
func SessionAuth(tokens *auth.TokenManager, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := sessionToken(c)
		if raw == "" {
			if required {
				return unauthorized(c, nil)
			}
			return c.Next()
		}
		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			if required {
				return unauthorized(c, err)
			}
			return c.Next()
		}
		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

// CurrentUserID is the authenticated user id, or "" for anonymous requests.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func sessionToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return c.Cookies(SessionCookie)
}

func unauthorized(c *fiber.Ctx, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusUnauthorized,
		Message: "Not logged in",
	}, err)
}
