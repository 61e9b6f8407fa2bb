// Package payment records bookkeeping payments for settled charging
// sessions. There is no gateway integration; the amount is the session's
// finalized cost.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Service implements ports.PaymentService.
type Service struct {
	repo        ports.PaymentRepository
	sessionRepo ports.SessionRepository
	vehicleRepo ports.VehicleRepository
	userRepo    ports.UserRepository
	log         *zap.Logger
}

func NewService(
	repo ports.PaymentRepository,
	sessionRepo ports.SessionRepository,
	vehicleRepo ports.VehicleRepository,
	userRepo ports.UserRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		sessionRepo: sessionRepo,
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		log:         log,
	}
}

// Record books a payment against a finished session. A session without a
// finalized cost (still in progress) cannot be paid.
func (s *Service) Record(ctx context.Context, sessionID, callerID string, methodID int) (*domain.Payment, error) {
	sess, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err := s.authorize(ctx, sess, callerID); err != nil {
		return nil, err
	}
	if sess.Cost == nil {
		return nil, domain.ErrChargeNotFinalized
	}

	if err := s.validateMethod(ctx, methodID); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		MethodID:  methodID,
		Amount:    *sess.Cost,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.log.Info("Payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("session_id", sessionID),
		zap.Float64("amount", payment.Amount),
	)
	return payment, nil
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

func (s *Service) validateMethod(ctx context.Context, methodID int) error {
	methods, err := s.repo.ListMethods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payment methods: %w", err)
	}
	for _, m := range methods {
		if m.ID == methodID {
			return nil
		}
	}
	return fmt.Errorf("payment method %d: %w", methodID, domain.ErrNotFound)
}

func (s *Service) ListMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repo.ListMethods(ctx)
}
