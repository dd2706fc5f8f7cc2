package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/hospintel/hospintel_backend/internal/api/http/handler"
)

func (r *Router) registerAdminRoutes(api fiber.Router, h *handler.AdminHandler, adminRequired, limit fiber.Handler) {
	group := api.Group("/admin")
	group.Post("/login", limit, h.Login)
	group.Post("/logout", adminRequired, h.Logout)
	group.Get("/records", adminRequired, h.Records)
	group.Delete("/records/:store/:id", adminRequired, h.Delete)
}
