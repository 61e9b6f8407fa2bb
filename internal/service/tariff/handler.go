package tariff

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/ports"
)

// Handler handles tariff HTTP requests.
type Handler struct {
	service ports.TariffService
}

func NewHandler(service ports.TariffService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers tariff routes. Writes require the admin
// middleware.
func (h *Handler) RegisterRoutes(app *fiber.App, authMiddleware, adminMiddleware fiber.Handler) {
	app.Get("/api/v1/stations/:id/tariffs", h.ListByStation)
	app.Get("/api/v1/stations/:id/tariffs/:connectorTypeId", h.Lookup)
	app.Put("/api/v1/stations/:id/tariffs/:connectorTypeId", authMiddleware, adminMiddleware, h.Upsert)
}

// Lookup handles GET /api/v1/stations/:id/tariffs/:connectorTypeId
func (h *Handler) Lookup(c *fiber.Ctx) error {
	tariff, err := h.service.Lookup(c.Context(), c.Params("id"), c.Params("connectorTypeId"))
	if err != nil {
		return err
	}
	return c.JSON(tariff)
}

// UpsertRequest is the tariff write request body.
type UpsertRequest struct {
	PricePerKWh float64 `json:"price_per_kwh"`
}

// Upsert handles PUT /api/v1/stations/:id/tariffs/:connectorTypeId
func (h *Handler) Upsert(c *fiber.Ctx) error {
	var req UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	tariff, err := h.service.Upsert(c.Context(), c.Params("id"), c.Params("connectorTypeId"), req.PricePerKWh)
	if err != nil {
		return err
	}
	return c.JSON(tariff)
}

// ListByStation handles GET /api/v1/stations/:id/tariffs
func (h *Handler) ListByStation(c *fiber.Ctx) error {
	tariffs, err := h.service.ListByStation(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"station_id": c.Params("id"),
		"tariffs":    tariffs,
	})
}
