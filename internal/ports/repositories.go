package ports

import (
	"context"
	"time"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// StationRepository persists stations with their units and sockets.
type StationRepository interface {
	Save(ctx context.Context, station *domain.Station) error
	FindByID(ctx context.Context, id string) (*domain.Station, error)
	FindAll(ctx context.Context) ([]domain.Station, error)
	// FindInBounds is the coarse bounding-box prefilter for nearby search;
	// exact distance filtering happens in the service.
	FindInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Station, error)
	FindUnit(ctx context.Context, id string) (*domain.Unit, error)
	// FindSocket loads the socket with its unit and connector type.
	FindSocket(ctx context.Context, id string) (*domain.Socket, error)
	CountOccupiedSockets(ctx context.Context, unitID string) (int64, error)
	SaveConnectorType(ctx context.Context, ct *domain.ConnectorType) error
	FindConnectorTypes(ctx context.Context) ([]domain.ConnectorType, error)
}

// ReservationRepository persists reservations. The overlap check and insert
// are one operation so the invariant can be enforced atomically.
type ReservationRepository interface {
	// CreateIfNoOverlap inserts the reservation unless another reservation on
	// the same unit with a status in activeStatusIDs overlaps its
	// [start, end) interval. Runs under serializable isolation; returns
	// domain.ErrReservationOverlap on conflict and domain.ErrTxConflict when
	// a concurrent booking wins the serialization race.
	CreateIfNoOverlap(ctx context.Context, r *domain.Reservation, activeStatusIDs []int) error
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Reservation, error)
	FindActiveByUnit(ctx context.Context, unitID string, activeStatusIDs []int) ([]domain.Reservation, error)
	// UpdateStatus transitions id to toStatusID only while its current status
	// is in fromStatusIDs; reports whether a row was changed.
	UpdateStatus(ctx context.Context, id string, fromStatusIDs []int, toStatusID int) (bool, error)
	// CompleteExpired closes every active reservation whose end time has
	// passed. Idempotent; returns the number of rows transitioned.
	CompleteExpired(ctx context.Context, activeStatusIDs []int, completedStatusID int, now time.Time) (int64, error)
}

// SessionRepository persists charging sessions together with the socket/unit
// occupancy transitions they imply.
type SessionRepository interface {
	// StartExclusive flips the socket free→occupied with a conditional update,
	// marks the owning unit occupied and inserts the in-progress session, all
	// in one transaction. Returns domain.ErrSocketNotAvailable when the
	// conditional update touches no row.
	StartExclusive(ctx context.Context, s *domain.ChargingSession) error
	// Complete finalizes an in-progress session exactly once, frees the
	// socket, and frees the unit only when no socket of the unit remains
	// occupied. Returns domain.ErrSessionNotActive if the session is not in
	// progress.
	Complete(ctx context.Context, id string, endTime time.Time, energyKWh, cost float64) error
	FindByID(ctx context.Context, id string) (*domain.ChargingSession, error)
	FindActiveBySocket(ctx context.Context, socketID string) (*domain.ChargingSession, error)
	FindByVehicles(ctx context.Context, vehicleIDs []string, limit int) ([]domain.ChargingSession, error)
}

// TariffRepository persists tariffs; (station, connector type) is unique.
type TariffRepository interface {
	Upsert(ctx context.Context, t *domain.Tariff) error
	// FindByStationAndConnector returns (nil, nil) when no tariff exists.
	FindByStationAndConnector(ctx context.Context, stationID, connectorTypeID string) (*domain.Tariff, error)
	FindByStation(ctx context.Context, stationID string) ([]domain.Tariff, error)
}

// PaymentRepository persists payment bookkeeping records.
type PaymentRepository interface {
	Save(ctx context.Context, p *domain.Payment) error
	FindBySession(ctx context.Context, sessionID string) ([]domain.Payment, error)
	ListMethods(ctx context.Context) ([]domain.PaymentMethod, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// VehicleRepository persists customer vehicles.
type VehicleRepository interface {
	Save(ctx context.Context, v *domain.Vehicle) error
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByCustomer(ctx context.Context, customerID string) ([]domain.Vehicle, error)
}

// StatusRepository reads the reservation status reference table.
type StatusRepository interface {
	ListReservationStatuses(ctx context.Context) ([]domain.ReservationStatus, error)
}
