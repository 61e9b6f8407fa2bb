package vehicle

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Handler handles vehicle HTTP requests.
type Handler struct {
	service ports.VehicleService
}

func NewHandler(service ports.VehicleService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers vehicle routes
func (h *Handler) RegisterRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	vehicles := app.Group("/api/v1/vehicles", authMiddleware)
	vehicles.Post("/", h.Register)
	vehicles.Get("/", h.List)
}

// RegisterRequest is the vehicle registration request body.
type RegisterRequest struct {
	Plate string `json:"plate"`
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// Register handles POST /api/v1/vehicles
func (h *Handler) Register(c *fiber.Ctx) error {
	customerID := c.Locals("user_id").(string)

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Plate == "" {
		return fiber.NewError(fiber.StatusBadRequest, "plate is required")
	}

	v := &domain.Vehicle{Plate: req.Plate, Brand: req.Brand, Model: req.Model}
	if err := h.service.Register(c.Context(), customerID, v); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// List handles GET /api/v1/vehicles
func (h *Handler) List(c *fiber.Ctx) error {
	customerID := c.Locals("user_id").(string)
	vehicles, err := h.service.List(c.Context(), customerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"vehicles": vehicles})
}
