package reservation

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/ports"
)

// Handler handles reservation HTTP requests. Domain errors propagate to the
// app-level error handler, which maps them to response codes.
type Handler struct {
	service ports.ReservationService
}

func NewHandler(service ports.ReservationService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers reservation routes
func (h *Handler) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	reservations := app.Group("/api/v1/reservations", authMiddleware)

	reservations.Post("/", h.Create)
	reservations.Get("/", h.ListMine)
	reservations.Delete("/:id", h.Cancel)
	reservations.Post("/:id/status", h.Complete)

	app.Get("/api/v1/units/:id/reservations", authMiddleware, h.ListByUnit)
}

// CreateRequest is the booking request body.
type CreateRequest struct {
	UnitID    string    `json:"unit_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Create handles POST /api/v1/reservations
func (h *Handler) Create(c *fiber.Ctx) error {
	customerID := c.Locals("user_id").(string)

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.UnitID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "unit_id is required")
	}

	resv, err := h.service.Create(c.Context(), customerID, req.UnitID, req.StartTime, req.EndTime)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resv)
}

// ListMine handles GET /api/v1/reservations
func (h *Handler) ListMine(c *fiber.Ctx) error {
	customerID := c.Locals("user_id").(string)
	limit := c.QueryInt("limit", 20)

	reservations, err := h.service.ListByCustomer(c.Context(), customerID, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"reservations": reservations,
		"limit":        limit,
	})
}

// Cancel handles DELETE /api/v1/reservations/:id
func (h *Handler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	callerID := c.Locals("user_id").(string)

	if err := h.service.Cancel(c.Context(), id, callerID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Reservation cancelled successfully",
	})
}

// Complete handles POST /api/v1/reservations/:id/status
func (h *Handler) Complete(c *fiber.Ctx) error {
	id := c.Params("id")
	callerID := c.Locals("user_id").(string)

	if err := h.service.Complete(c.Context(), id, callerID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Reservation completed",
	})
}

// ListByUnit handles GET /api/v1/units/:id/reservations
func (h *Handler) ListByUnit(c *fiber.Ctx) error {
	unitID := c.Params("id")

	reservations, err := h.service.ListByUnit(c.Context(), unitID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"unit_id":      unitID,
		"reservations": reservations,
	})
}
