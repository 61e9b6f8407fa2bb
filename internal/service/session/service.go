// Package session runs the charging session lifecycle: exclusive socket
// acquisition on start, cost settlement and occupancy release on stop.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/queue"
	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/observability/telemetry"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Service implements ports.SessionService.
type Service struct {
	repo        ports.SessionRepository
	stationRepo ports.StationRepository
	tariffRepo  ports.TariffRepository
	vehicleRepo ports.VehicleRepository
	userRepo    ports.UserRepository
	email       ports.EmailService
	events      *queue.EventPublisher
	log         *zap.Logger
}

func NewService(
	repo ports.SessionRepository,
	stationRepo ports.StationRepository,
	tariffRepo ports.TariffRepository,
	vehicleRepo ports.VehicleRepository,
	userRepo ports.UserRepository,
	email ports.EmailService,
	events *queue.EventPublisher,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		stationRepo: stationRepo,
		tariffRepo:  tariffRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		email:       email,
		events:      events,
		log:         log,
	}
}

// Start opens a session on the socket. The tariff for the socket's station
// and connector type must exist; its price is captured on the session so a
// later tariff change cannot alter what this session is billed at. Socket
// acquisition is delegated to the repository's conditional update, so two
// concurrent starts on the same socket cannot both succeed.
func (s *Service) Start(ctx context.Context, customerID, vehicleID, socketID string) (*domain.ChargingSession, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, fmt.Errorf("vehicle %s: %w", vehicleID, domain.ErrNotFound)
	}
	if vehicle.CustomerID != customerID {
		return nil, domain.ErrForbidden
	}

	socket, err := s.stationRepo.FindSocket(ctx, socketID)
	if err != nil {
		return nil, fmt.Errorf("failed to find socket: %w", err)
	}
	if socket == nil {
		return nil, fmt.Errorf("socket %s: %w", socketID, domain.ErrNotFound)
	}
	if socket.Unit == nil {
		return nil, fmt.Errorf("socket %s has no unit loaded", socketID)
	}

	tariff, err := s.tariffRepo.FindByStationAndConnector(ctx, socket.Unit.StationID, socket.ConnectorTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tariff: %w", err)
	}
	if tariff == nil {
		return nil, domain.ErrTariffMissing
	}

	sess := &domain.ChargingSession{
		ID:           uuid.New().String(),
		VehicleID:    vehicleID,
		SocketID:     socketID,
		TariffID:     tariff.ID,
		PriceAtStart: tariff.PricePerKWh,
		StartTime:    time.Now(),
		Status:       domain.SessionStatusInProgress,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.StartExclusive(ctx, sess); err != nil {
		if errors.Is(err, domain.ErrSocketNotAvailable) {
			telemetry.SessionConflictsTotal.Inc()
		}
		return nil, err
	}

	telemetry.ActiveChargingSessions.Inc()
	s.log.Info("Charging session started",
		zap.String("session_id", sess.ID),
		zap.String("socket_id", socketID),
		zap.Float64("price_at_start", sess.PriceAtStart),
	)
	s.events.SessionStarted(sess)

	return sess, nil
}

// Stop finalizes the session: cost is energy times the captured start price,
// rounded to cents. The repository releases the socket and recounts the unit
// in the same transaction; a second stop fails with ErrSessionNotActive.
func (s *Service) Stop(ctx context.Context, sessionID, callerID string, energyKWh float64) (float64, error) {
	if energyKWh <= 0 {
		return 0, domain.ErrInvalidEnergy
	}

	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to find session: %w", err)
	}
	if sess == nil {
		return 0, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err := s.authorize(ctx, sess, callerID); err != nil {
		return 0, err
	}

	endTime := time.Now()
	cost := domain.SessionCost(energyKWh, sess.PriceAtStart)
	if err := s.repo.Complete(ctx, sessionID, endTime, energyKWh, cost); err != nil {
		return 0, err
	}

	telemetry.ActiveChargingSessions.Dec()
	telemetry.EnergyDeliveredTotal.Add(energyKWh)
	s.log.Info("Charging session stopped",
		zap.String("session_id", sessionID),
		zap.Float64("energy_kwh", energyKWh),
		zap.Float64("cost", cost),
	)

	sess.EndTime = &endTime
	sess.EnergyKWh = &energyKWh
	sess.Cost = &cost
	sess.Status = domain.SessionStatusCompleted
	s.events.SessionStopped(sess)
	s.notifyReceipt(ctx, sess)

	return cost, nil
}

func (s *Service) authorize(ctx context.Context, sess *domain.ChargingSession, callerID string) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, sess.VehicleID)
	if err != nil {
		return fmt.Errorf("failed to find vehicle: %w", err)
	}
	if vehicle != nil && vehicle.CustomerID == callerID {
		return nil
	}
	caller, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("failed to find caller: %w", err)
	}
	if caller == nil || caller.Role != domain.UserRoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ChargingSession, error) {
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

// History returns the customer's sessions across all their vehicles, newest
// first.
func (s *Service) History(ctx context.Context, customerID string, limit int) ([]domain.ChargingSession, error) {
	vehicles, err := s.vehicleRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	if len(vehicles) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}
	return s.repo.FindByVehicles(ctx, ids, limit)
}

func (s *Service) notifyReceipt(ctx context.Context, sess *domain.ChargingSession) {
	if s.email == nil {
		return
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, sess.VehicleID)
	if err != nil || vehicle == nil {
		return
	}
	owner, err := s.userRepo.FindByID(ctx, vehicle.CustomerID)
	if err != nil || owner == nil {
		return
	}
	if err := s.email.SendSessionReceipt(ctx, owner.Email, sess); err != nil {
		s.log.Warn("failed to send session receipt",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
}
