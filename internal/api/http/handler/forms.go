package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/internal/service/submission"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type FormsHandler struct {
	gw *submission.Gateway
}

func NewFormsHandler(gw *submission.Gateway) *FormsHandler {
	return &FormsHandler{gw: gw}
}

func (h *FormsHandler) SubmitDemo(c fiber.Ctx) error {
	var req model.DemoRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.submit(c, &req)
}

func (h *FormsHandler) SubmitContact(c fiber.Ctx) error {
	var req model.ContactInquiry
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	return h.submit(c, &req)
}

func (h *FormsHandler) submit(c fiber.Ctx, p model.Payload) error {
	res, err := h.gw.Submit(c.Context(), submission.Submission{
		Payload:        p,
		Source:         strings.Clone(c.Query("source")),
		IdempotencyKey: strings.Clone(c.Get(HeaderIdempotencyKey)),
	})
	if err != nil {
		if errors.Is(err, submission.ErrInvalidPayload) {
			return badRequest(c, err.Error())
		}
		slog.ErrorContext(c.Context(), "submission failed", "error", err)
		return internalError(c)
	}
	if !res.Success {
		return unavailable(c, res)
	}
	if res.Replayed {
		return ok(c, res)
	}
	return created(c, res)
}
