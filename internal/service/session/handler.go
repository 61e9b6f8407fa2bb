package session

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/ports"
)

// Handler handles charging session HTTP requests.
type Handler struct {
	service ports.SessionService
}

func NewHandler(service ports.SessionService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers charging session routes
func (h *Handler) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	sessions := app.Group("/api/v1/charging-sessions", authMiddleware)

	sessions.Post("/", h.Start)
	sessions.Get("/", h.History)
	sessions.Get("/:id", h.Get)
	sessions.Post("/:id/stop", h.Stop)
}

// StartRequest is the session start request body.
type StartRequest struct {
	VehicleID string `json:"vehicle_id"`
	SocketID  string `json:"socket_id"`
}

// Start handles POST /api/v1/charging-sessions
func (h *Handler) Start(c *fiber.Ctx) error {
	customerID := c.Locals("user_id").(string)

	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.VehicleID == "" || req.SocketID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "vehicle_id and socket_id are required")
	}

	sess, err := h.service.Start(c.Context(), customerID, req.VehicleID, req.SocketID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(sess)
}

// StopRequest is the session stop request body.
type StopRequest struct {
	EnergyKWh float64 `json:"energy_kwh"`
}

// Stop handles POST /api/v1/charging-sessions/:id/stop
func (h *Handler) Stop(c *fiber.Ctx) error {
	id := c.Params("id")
	callerID := c.Locals("user_id").(string)

	var req StopRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cost, err := h.service.Stop(c.Context(), id, callerID, req.EnergyKWh)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"session_id": id,
		"cost":       cost,
	})
}

// Get handles GET /api/v1/charging-sessions/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	sess, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

// History handles GET /api/v1/charging-sessions
func (h *Handler) History(c *fiber.Ctx) error {
	customerID := c.Locals("user_id").(string)
	limit := c.QueryInt("limit", 20)

	sessions, err := h.service.History(c.Context(), customerID, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
		"limit":    limit,
	})
}
