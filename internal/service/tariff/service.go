// Package tariff maintains per-station, per-connector unit prices.
package tariff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

// Service implements ports.TariffService.
type Service struct {
	repo        ports.TariffRepository
	stationRepo ports.StationRepository
	log         *zap.Logger
}

func NewService(repo ports.TariffRepository, stationRepo ports.StationRepository, log *zap.Logger) *Service {
	return &Service{repo: repo, stationRepo: stationRepo, log: log}
}

// Lookup resolves the unique tariff for the pair. An unpriced pair is an
// error the caller must surface; sessions cannot start without a price.
func (s *Service) Lookup(ctx context.Context, stationID, connectorTypeID string) (*domain.Tariff, error) {
	tariff, err := s.repo.FindByStationAndConnector(ctx, stationID, connectorTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tariff: %w", err)
	}
	if tariff == nil {
		return nil, domain.ErrTariffMissing
	}
	return tariff, nil
}

// Upsert sets the price for the pair, creating or replacing as needed. The
// change affects only sessions started afterwards; running sessions keep
// their captured price.
func (s *Service) Upsert(ctx context.Context, stationID, connectorTypeID string, pricePerKWh float64) (*domain.Tariff, error) {
	if pricePerKWh <= 0 {
		return nil, fmt.Errorf("price per kWh must be positive")
	}
	station, err := s.stationRepo.FindByID(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find station: %w", err)
	}
	if station == nil {
		return nil, fmt.Errorf("station %s: %w", stationID, domain.ErrNotFound)
	}

	tariff := &domain.Tariff{
		ID:              uuid.New().String(),
		StationID:       stationID,
		ConnectorTypeID: connectorTypeID,
		PricePerKWh:     pricePerKWh,
		UpdatedAt:       time.Now(),
	}
	if err := s.repo.Upsert(ctx, tariff); err != nil {
		return nil, fmt.Errorf("failed to upsert tariff: %w", err)
	}

	s.log.Info("Tariff updated",
		zap.String("station_id", stationID),
		zap.String("connector_type_id", connectorTypeID),
		zap.Float64("price_per_kwh", pricePerKWh),
	)
	return tariff, nil
}

func (s *Service) ListByStation(ctx context.Context, stationID string) ([]domain.Tariff, error) {
	return s.repo.FindByStation(ctx, stationID)
}
