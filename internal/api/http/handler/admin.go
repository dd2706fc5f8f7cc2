package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/hospintel/hospintel_backend/internal/service/admin"
	"github.com/hospintel/hospintel_backend/internal/store"
	"github.com/hospintel/hospintel_backend/pkg/reqctx"
)

type AdminHandler struct {
	svc *admin.Service
}

func NewAdminHandler(svc *admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

func (h *AdminHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.svc.Login(c.Context(), req.Passphrase)
	switch {
	case err == nil:
		return ok(c, sess)
	case errors.Is(err, admin.ErrInvalidPassphrase):
		return unauthorized(c, "Incorrect passphrase.")
	case errors.Is(err, admin.ErrAdminDisabled):
		return notFound(c, "admin access is not configured")
	default:
		slog.ErrorContext(c.Context(), "admin login failed", "error", err)
		return internalError(c)
	}
}

func (h *AdminHandler) Logout(c fiber.Ctx) error {
	token := reqctx.AdminTokenFromContext(c.Context())
	if token == "" {
		return fiber.ErrUnauthorized
	}
	if err := h.svc.Logout(c.Context(), token); err != nil {
		slog.ErrorContext(c.Context(), "admin logout failed", "error", err)
		return internalError(c)
	}
	return noContent(c)
}

// Records lists records. ?store= accepts a comma separated list.
func (h *AdminHandler) Records(c fiber.Ctx) error {
	var stores []string
	if q := c.Query("store"); q != "" {
		stores = strings.Split(q, ",")
		for i := range stores {
			stores[i] = strings.TrimSpace(stores[i])
		}
	}

	listings, err := h.svc.Records(c.Context(), stores...)
	if err != nil {
		if errors.Is(err, store.ErrUnknownStore) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return ok(c, listings)
}

func (h *AdminHandler) Delete(c fiber.Ctx) error {
	err := h.svc.Delete(c.Context(), c.Params("store"), c.Params("id"))
	switch {
	case err == nil:
		return noContent(c)
	case errors.Is(err, store.ErrUnknownStore):
		return notFound(c, "unknown store")
	default:
		slog.ErrorContext(c.Context(), "admin delete failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage unavailable"})
	}
}
