package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/hospintel/hospintel_backend/internal/api/http/handler"
)

func (r *Router) registerFormRoutes(api fiber.Router, h *handler.FormsHandler, limit fiber.Handler) {
	forms := api.Group("/forms", limit)
	forms.Post("/demo", h.SubmitDemo)
	forms.Post("/contact", h.SubmitContact)
}
