package payment

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/ports"
)

// Handler handles payment HTTP requests.
type Handler struct {
	service ports.PaymentService
}

func NewHandler(service ports.PaymentService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers payment routes
func (h *Handler) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Post("/api/v1/payments", authMiddleware, h.Record)
	app.Get("/api/v1/payment-methods", h.ListMethods)
}

// RecordRequest is the payment request body.
type RecordRequest struct {
	SessionID string `json:"session_id"`
	MethodID  int    `json:"method_id"`
}

// Record handles POST /api/v1/payments
func (h *Handler) Record(c *fiber.Ctx) error {
	callerID := c.Locals("user_id").(string)

	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	payment, err := h.service.Record(c.Context(), req.SessionID, callerID, req.MethodID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// ListMethods handles GET /api/v1/payment-methods
func (h *Handler) ListMethods(c *fiber.Ctx) error {
	methods, err := h.service.ListMethods(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"methods": methods})
}
