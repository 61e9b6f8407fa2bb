package mocks

import (
	"context"
	"time"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// MockStationRepository is a mock implementation of StationRepository
type MockStationRepository struct {
	SaveFunc                func(ctx context.Context, station *domain.Station) error
	FindByIDFunc            func(ctx context.Context, id string) (*domain.Station, error)
	FindAllFunc             func(ctx context.Context) ([]domain.Station, error)
	FindInBoundsFunc        func(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Station, error)
	FindUnitFunc            func(ctx context.Context, id string) (*domain.Unit, error)
	FindSocketFunc          func(ctx context.Context, id string) (*domain.Socket, error)
	CountOccupiedFunc       func(ctx context.Context, unitID string) (int64, error)
	SaveConnectorTypeFunc   func(ctx context.Context, ct *domain.ConnectorType) error
	FindConnectorTypesFunc  func(ctx context.Context) ([]domain.ConnectorType, error)
}

func (m *MockStationRepository) Save(ctx context.Context, station *domain.Station) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, station)
	}
	return nil
}

func (m *MockStationRepository) FindByID(ctx context.Context, id string) (*domain.Station, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockStationRepository) FindInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Station, error) {
	if m.FindInBoundsFunc != nil {
		return m.FindInBoundsFunc(ctx, minLat, maxLat, minLng, maxLng)
	}
	return nil, nil
}

func (m *MockStationRepository) FindUnit(ctx context.Context, id string) (*domain.Unit, error) {
	if m.FindUnitFunc != nil {
		return m.FindUnitFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) FindSocket(ctx context.Context, id string) (*domain.Socket, error) {
	if m.FindSocketFunc != nil {
		return m.FindSocketFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStationRepository) CountOccupiedSockets(ctx context.Context, unitID string) (int64, error) {
	if m.CountOccupiedFunc != nil {
		return m.CountOccupiedFunc(ctx, unitID)
	}
	return 0, nil
}

func (m *MockStationRepository) SaveConnectorType(ctx context.Context, ct *domain.ConnectorType) error {
	if m.SaveConnectorTypeFunc != nil {
		return m.SaveConnectorTypeFunc(ctx, ct)
	}
	return nil
}

func (m *MockStationRepository) FindConnectorTypes(ctx context.Context) ([]domain.ConnectorType, error) {
	if m.FindConnectorTypesFunc != nil {
		return m.FindConnectorTypesFunc(ctx)
	}
	return nil, nil
}

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	CreateIfNoOverlapFunc func(ctx context.Context, r *domain.Reservation, activeStatusIDs []int) error
	FindByIDFunc          func(ctx context.Context, id string) (*domain.Reservation, error)
	FindByCustomerFunc    func(ctx context.Context, customerID string, limit int) ([]domain.Reservation, error)
	FindActiveByUnitFunc  func(ctx context.Context, unitID string, activeStatusIDs []int) ([]domain.Reservation, error)
	UpdateStatusFunc      func(ctx context.Context, id string, fromStatusIDs []int, toStatusID int) (bool, error)
	CompleteExpiredFunc   func(ctx context.Context, activeStatusIDs []int, completedStatusID int, now time.Time) (int64, error)
}

func (m *MockReservationRepository) CreateIfNoOverlap(ctx context.Context, r *domain.Reservation, activeStatusIDs []int) error {
	if m.CreateIfNoOverlapFunc != nil {
		return m.CreateIfNoOverlapFunc(ctx, r, activeStatusIDs)
	}
	return nil
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReservationRepository) FindByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Reservation, error) {
	if m.FindByCustomerFunc != nil {
		return m.FindByCustomerFunc(ctx, customerID, limit)
	}
	return nil, nil
}

func (m *MockReservationRepository) FindActiveByUnit(ctx context.Context, unitID string, activeStatusIDs []int) ([]domain.Reservation, error) {
	if m.FindActiveByUnitFunc != nil {
		return m.FindActiveByUnitFunc(ctx, unitID, activeStatusIDs)
	}
	return nil, nil
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id string, fromStatusIDs []int, toStatusID int) (bool, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, fromStatusIDs, toStatusID)
	}
	return false, nil
}

func (m *MockReservationRepository) CompleteExpired(ctx context.Context, activeStatusIDs []int, completedStatusID int, now time.Time) (int64, error) {
	if m.CompleteExpiredFunc != nil {
		return m.CompleteExpiredFunc(ctx, activeStatusIDs, completedStatusID, now)
	}
	return 0, nil
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	StartExclusiveFunc     func(ctx context.Context, s *domain.ChargingSession) error
	CompleteFunc           func(ctx context.Context, id string, endTime time.Time, energyKWh, cost float64) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.ChargingSession, error)
	FindActiveBySocketFunc func(ctx context.Context, socketID string) (*domain.ChargingSession, error)
	FindByVehiclesFunc     func(ctx context.Context, vehicleIDs []string, limit int) ([]domain.ChargingSession, error)
}

func (m *MockSessionRepository) StartExclusive(ctx context.Context, s *domain.ChargingSession) error {
	if m.StartExclusiveFunc != nil {
		return m.StartExclusiveFunc(ctx, s)
	}
	return nil
}

func (m *MockSessionRepository) Complete(ctx context.Context, id string, endTime time.Time, energyKWh, cost float64) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, endTime, energyKWh, cost)
	}
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*domain.ChargingSession, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSessionRepository) FindActiveBySocket(ctx context.Context, socketID string) (*domain.ChargingSession, error) {
	if m.FindActiveBySocketFunc != nil {
		return m.FindActiveBySocketFunc(ctx, socketID)
	}
	return nil, nil
}

func (m *MockSessionRepository) FindByVehicles(ctx context.Context, vehicleIDs []string, limit int) ([]domain.ChargingSession, error) {
	if m.FindByVehiclesFunc != nil {
		return m.FindByVehiclesFunc(ctx, vehicleIDs, limit)
	}
	return nil, nil
}

// MockTariffRepository is a mock implementation of TariffRepository
type MockTariffRepository struct {
	UpsertFunc                    func(ctx context.Context, t *domain.Tariff) error
	FindByStationAndConnectorFunc func(ctx context.Context, stationID, connectorTypeID string) (*domain.Tariff, error)
	FindByStationFunc             func(ctx context.Context, stationID string) ([]domain.Tariff, error)
}

func (m *MockTariffRepository) Upsert(ctx context.Context, t *domain.Tariff) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, t)
	}
	return nil
}

func (m *MockTariffRepository) FindByStationAndConnector(ctx context.Context, stationID, connectorTypeID string) (*domain.Tariff, error) {
	if m.FindByStationAndConnectorFunc != nil {
		return m.FindByStationAndConnectorFunc(ctx, stationID, connectorTypeID)
	}
	return nil, nil
}

func (m *MockTariffRepository) FindByStation(ctx context.Context, stationID string) ([]domain.Tariff, error) {
	if m.FindByStationFunc != nil {
		return m.FindByStationFunc(ctx, stationID)
	}
	return nil, nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	SaveFunc          func(ctx context.Context, p *domain.Payment) error
	FindBySessionFunc func(ctx context.Context, sessionID string) ([]domain.Payment, error)
	ListMethodsFunc   func(ctx context.Context) ([]domain.PaymentMethod, error)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return nil
}

func (m *MockPaymentRepository) FindBySession(ctx context.Context, sessionID string) ([]domain.Payment, error) {
	if m.FindBySessionFunc != nil {
		return m.FindBySessionFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	if m.ListMethodsFunc != nil {
		return m.ListMethodsFunc(ctx)
	}
	return nil, nil
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	SaveFunc           func(ctx context.Context, v *domain.Vehicle) error
	FindByIDFunc       func(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByCustomerFunc func(ctx context.Context, customerID string) ([]domain.Vehicle, error)
}

func (m *MockVehicleRepository) Save(ctx context.Context, v *domain.Vehicle) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, v)
	}
	return nil
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVehicleRepository) FindByCustomer(ctx context.Context, customerID string) ([]domain.Vehicle, error) {
	if m.FindByCustomerFunc != nil {
		return m.FindByCustomerFunc(ctx, customerID)
	}
	return nil, nil
}

// MockStatusRepository is a mock implementation of StatusRepository
type MockStatusRepository struct {
	ListReservationStatusesFunc func(ctx context.Context) ([]domain.ReservationStatus, error)
}

func (m *MockStatusRepository) ListReservationStatuses(ctx context.Context) ([]domain.ReservationStatus, error) {
	if m.ListReservationStatusesFunc != nil {
		return m.ListReservationStatusesFunc(ctx)
	}
	return nil, nil
}
