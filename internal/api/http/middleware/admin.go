package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/pkg/reqctx"
)

// AdminRequired accepts a Bearer admin session token issued by Login and
// records it on the request context for handlers.
func AdminRequired(svc *admin.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		if err := svc.Authorize(c.Context(), token); err != nil {
			if errors.Is(err, admin.ErrSessionNotFound) {
				return fiber.ErrUnauthorized
			}
			return fiber.ErrServiceUnavailable
		}

		c.SetContext(reqctx.WithAdminToken(c.Context(), token))
		return c.Next()
	}
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(c fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
