package ports

import (
	"context"
	"time"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// ReservationService books and manages charging-unit time slots.
type ReservationService interface {
	Create(ctx context.Context, customerID, unitID string, start, end time.Time) (*domain.Reservation, error)
	Cancel(ctx context.Context, id, callerID string) error
	Complete(ctx context.Context, id, callerID string) error
	SweepExpired(ctx context.Context) (int64, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Reservation, error)
	ListByUnit(ctx context.Context, unitID string) ([]domain.Reservation, error)
}

// SessionService runs the charging-session lifecycle.
type SessionService interface {
	Start(ctx context.Context, customerID, vehicleID, socketID string) (*domain.ChargingSession, error)
	Stop(ctx context.Context, sessionID, callerID string, energyKWh float64) (float64, error)
	Get(ctx context.Context, id string) (*domain.ChargingSession, error)
	History(ctx context.Context, customerID string, limit int) ([]domain.ChargingSession, error)
}

// TariffService resolves and maintains unit prices.
type TariffService interface {
	Lookup(ctx context.Context, stationID, connectorTypeID string) (*domain.Tariff, error)
	Upsert(ctx context.Context, stationID, connectorTypeID string, pricePerKWh float64) (*domain.Tariff, error)
	ListByStation(ctx context.Context, stationID string) ([]domain.Tariff, error)
}

// NearbyStation is a search result with distance and availability summary.
type NearbyStation struct {
	Station     *domain.Station `json:"station"`
	DistanceKm  float64         `json:"distance_km"`
	TotalSocket int             `json:"total_sockets"`
	FreeSockets int             `json:"free_sockets"`
	FreeByType  map[string]int  `json:"free_by_type"`
}

// StationAvailability summarizes current occupancy of one station.
type StationAvailability struct {
	StationID   string         `json:"station_id"`
	TotalSocket int            `json:"total_sockets"`
	FreeSockets int            `json:"free_sockets"`
	FreeByType  map[string]int `json:"free_by_type"`
	AsOf        time.Time      `json:"as_of"`
}

// StationService exposes the station/unit/socket tree and availability views.
type StationService interface {
	Get(ctx context.Context, id string) (*domain.Station, error)
	List(ctx context.Context) ([]domain.Station, error)
	Nearby(ctx context.Context, lat, lng, radiusKm float64, onlyAvailable bool) ([]NearbyStation, error)
	Availability(ctx context.Context, stationID string) (*StationAvailability, error)
	Create(ctx context.Context, station *domain.Station) error
}

// VehicleService manages a customer's registered vehicles.
type VehicleService interface {
	Register(ctx context.Context, customerID string, v *domain.Vehicle) error
	List(ctx context.Context, customerID string) ([]domain.Vehicle, error)
}

// PaymentService records bookkeeping payments for completed sessions.
type PaymentService interface {
	Record(ctx context.Context, sessionID, callerID string, methodID int) (*domain.Payment, error)
	ListMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}

// AuthService is the identity collaborator: it issues and verifies caller
// credentials carrying {subjectId, role}.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, user *domain.User) error
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// EmailService delivers outbound notifications. Implementations must be
// best-effort: a failed send never fails the business operation.
type EmailService interface {
	SendReservationConfirmation(ctx context.Context, to string, r *domain.Reservation) error
	SendSessionReceipt(ctx context.Context, to string, s *domain.ChargingSession) error
}

// Cache is a shared key/value cache with TTL semantics.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
