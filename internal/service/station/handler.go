package station

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Handler handles station HTTP requests.
type Handler struct {
	service ports.StationService
}

func NewHandler(service ports.StationService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers station routes. Station creation requires the
// admin middleware.
func (h *Handler) RegisterRoutes(app *fiber.App, authMiddleware, adminMiddleware fiber.Handler) {
	app.Get("/api/v1/stations", h.List)
	app.Get("/api/v1/stations/near", h.Nearby)
	app.Get("/api/v1/stations/:id", h.Get)
	app.Get("/api/v1/stations/:id/availability", h.Availability)
	app.Post("/api/v1/stations", authMiddleware, adminMiddleware, h.Create)
}

// List handles GET /api/v1/stations
func (h *Handler) List(c *fiber.Ctx) error {
	stations, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stations": stations})
}

// Get handles GET /api/v1/stations/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	station, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(station)
}

// Nearby handles GET /api/v1/stations/near?lat=..&lng=..&radius_km=..
func (h *Handler) Nearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat is required")
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lng is required")
	}
	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km", "5"), 64)
	onlyAvailable := c.QueryBool("only_available", false)

	results, err := h.service.Nearby(c.Context(), lat, lng, radiusKm, onlyAvailable)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"stations":  results,
		"radius_km": radiusKm,
	})
}

// Availability handles GET /api/v1/stations/:id/availability
func (h *Handler) Availability(c *fiber.Ctx) error {
	av, err := h.service.Availability(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(av)
}

// Create handles POST /api/v1/stations
func (h *Handler) Create(c *fiber.Ctx) error {
	var station domain.Station
	if err := c.BodyParser(&station); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if station.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if err := h.service.Create(c.Context(), &station); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(station)
}
