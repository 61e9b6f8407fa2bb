// Package vehicle manages the vehicles a customer can charge with.
package vehicle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Service implements ports.VehicleService.
type Service struct {
	repo ports.VehicleRepository
	log  *zap.Logger
}

func NewService(repo ports.VehicleRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register adds a vehicle to the customer's account.
func (s *Service) Register(ctx context.Context, customerID string, v *domain.Vehicle) error {
	v.ID = uuid.New().String()
	v.CustomerID = customerID
	v.CreatedAt = time.Now()

	if err := s.repo.Save(ctx, v); err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	s.log.Info("vehicle registered",
		zap.String("vehicle_id", v.ID),
		zap.String("customer_id", customerID),
	)
	return nil
}

// List returns the customer's vehicles.
func (s *Service) List(ctx context.Context, customerID string) ([]domain.Vehicle, error) {
	return s.repo.FindByCustomer(ctx, customerID)
}
