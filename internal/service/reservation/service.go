// Package reservation books and manages time slots on charging units.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/queue"
	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/observability/telemetry"
	"github.com/chargegrid/chargegrid/internal/ports"
	"github.com/chargegrid/chargegrid/internal/service/status"
	"github.com/chargegrid/chargegrid/pkg/config"
)

// Service implements ports.ReservationService.
type Service struct {
	repo        ports.ReservationRepository
	stationRepo ports.StationRepository
	userRepo    ports.UserRepository
	registry    *status.Registry
	email       ports.EmailService
	events      *queue.EventPublisher
	cfg         config.ReservationConfig
	log         *zap.Logger
}

func NewService(
	repo ports.ReservationRepository,
	stationRepo ports.StationRepository,
	userRepo ports.UserRepository,
	registry *status.Registry,
	email ports.EmailService,
	events *queue.EventPublisher,
	cfg config.ReservationConfig,
	log *zap.Logger,
) *Service {
	if cfg.Window <= 0 {
		cfg.Window = 6 * time.Hour
	}
	if len(cfg.AllowedDurations) == 0 {
		cfg.AllowedDurations = []time.Duration{15 * time.Minute, 30 * time.Minute, 60 * time.Minute}
	}
	return &Service{
		repo:        repo,
		stationRepo: stationRepo,
		userRepo:    userRepo,
		registry:    registry,
		email:       email,
		events:      events,
		cfg:         cfg,
		log:         log,
	}
}

// Create books [start, end) on the unit. Validation runs in a fixed order
// (duration, then past start, then window) so clients see stable error codes,
// and expired reservations are swept first so a stale row never blocks a slot
// it no longer occupies.
func (s *Service) Create(ctx context.Context, customerID, unitID string, start, end time.Time) (*domain.Reservation, error) {
	if err := s.validateSlot(start, end); err != nil {
		return nil, err
	}

	unit, err := s.stationRepo.FindUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	if unit == nil {
		return nil, fmt.Errorf("unit %s: %w", unitID, domain.ErrNotFound)
	}

	if _, err := s.SweepExpired(ctx); err != nil {
		// Booking still proceeds; the overlap check only considers active rows.
		s.log.Warn("pre-booking sweep failed", zap.Error(err))
	}

	resv := &domain.Reservation{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		UnitID:     unitID,
		StartTime:  start,
		EndTime:    &end,
		StatusID:   s.registry.DefaultID(ctx),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.repo.CreateIfNoOverlap(ctx, resv, s.registry.ActiveIDs(ctx)); err != nil {
		telemetry.ReservationsTotal.WithLabelValues("create", "rejected").Inc()
		return nil, err
	}

	telemetry.ReservationsTotal.WithLabelValues("create", "ok").Inc()
	s.log.Info("Reservation created",
		zap.String("reservation_id", resv.ID),
		zap.String("customer_id", customerID),
		zap.String("unit_id", unitID),
		zap.Time("start_time", start),
	)

	s.events.ReservationCreated(resv)
	s.notifyConfirmation(ctx, resv)

	return resv, nil
}

func (s *Service) validateSlot(start, end time.Time) error {
	duration := end.Sub(start)
	allowed := false
	for _, d := range s.cfg.AllowedDurations {
		if duration == d {
			allowed = true
			break
		}
	}
	if !allowed {
		return domain.ErrInvalidDuration
	}

	now := time.Now()
	if !start.After(now) {
		return domain.ErrStartInPast
	}
	if end.After(now.Add(s.cfg.Window)) {
		return domain.ErrStartBeyondWindow
	}
	return nil
}

// Cancel transitions an active reservation to cancelled. Only the owner may
// cancel; an already cancelled or completed reservation is not cancellable.
func (s *Service) Cancel(ctx context.Context, id, callerID string) error {
	resv, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return err
	}

	ok, err := s.repo.UpdateStatus(ctx, id, s.registry.ActiveIDs(ctx), s.registry.CancelledID(ctx))
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if !ok {
		return domain.ErrNotCancellable
	}

	s.log.Info("Reservation cancelled", zap.String("reservation_id", id))
	resv.StatusID = s.registry.CancelledID(ctx)
	s.events.ReservationCancelled(resv)
	return nil
}

// Complete marks a reservation completed once its end time has passed. An
// open-ended or still-running reservation is not finished yet; a reservation
// already out of the active statuses is already closed.
func (s *Service) Complete(ctx context.Context, id, callerID string) error {
	resv, err := s.authorize(ctx, id, callerID)
	if err != nil {
		return err
	}

	if !resv.Expired(time.Now()) {
		return domain.ErrNotFinishedYet
	}

	ok, err := s.repo.UpdateStatus(ctx, id, s.registry.ActiveIDs(ctx), s.registry.CompletedID(ctx))
	if err != nil {
		return fmt.Errorf("failed to complete reservation: %w", err)
	}
	if !ok {
		return domain.ErrAlreadyClosed
	}

	s.log.Info("Reservation completed", zap.String("reservation_id", id))
	resv.StatusID = s.registry.CompletedID(ctx)
	s.events.ReservationCompleted(resv)
	return nil
}

func (s *Service) authorize(ctx context.Context, id, callerID string) (*domain.Reservation, error) {
	resv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}
	if resv == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	if resv.CustomerID != callerID {
		caller, err := s.userRepo.FindByID(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to find caller: %w", err)
		}
		if caller == nil || caller.Role != domain.UserRoleAdmin {
			return nil, domain.ErrForbidden
		}
	}
	return resv, nil
}

// SweepExpired closes every active reservation whose end time has passed.
// Idempotent; runs before each booking and on a background ticker.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.CompleteExpired(ctx, s.registry.ActiveIDs(ctx), s.registry.CompletedID(ctx), time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired reservations: %w", err)
	}
	if n > 0 {
		telemetry.ReservationsSweptTotal.Add(float64(n))
		s.log.Info("Expired reservations closed", zap.Int64("count", n))
	}
	return n, nil
}

// ListByCustomer sweeps first so the caller never sees a reservation that
// is active only because nobody closed it yet.
func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Reservation, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		s.log.Warn("pre-read sweep failed", zap.Error(err))
	}
	return s.repo.FindByCustomer(ctx, customerID, limit)
}

func (s *Service) ListByUnit(ctx context.Context, unitID string) ([]domain.Reservation, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		s.log.Warn("pre-read sweep failed", zap.Error(err))
	}
	return s.repo.FindActiveByUnit(ctx, unitID, s.registry.ActiveIDs(ctx))
}

func (s *Service) notifyConfirmation(ctx context.Context, resv *domain.Reservation) {
	if s.email == nil {
		return
	}
	customer, err := s.userRepo.FindByID(ctx, resv.CustomerID)
	if err != nil || customer == nil {
		s.log.Warn("skipping confirmation email, customer lookup failed",
			zap.String("customer_id", resv.CustomerID), zap.Error(err))
		return
	}
	if err := s.email.SendReservationConfirmation(ctx, customer.Email, resv); err != nil {
		s.log.Warn("failed to send confirmation email",
			zap.String("reservation_id", resv.ID), zap.Error(err))
	}
}
