package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

type TariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) ports.TariffRepository {
	return &TariffRepository{db: db}
}

// Upsert relies on the unique (station_id, connector_type_id) index: a second
// tariff for the same pair updates the price instead of inserting a duplicate.
func (r *TariffRepository) Upsert(ctx context.Context, t *domain.Tariff) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "station_id"}, {Name: "connector_type_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"price_per_kwh": t.PricePerKWh,
			"updated_at":    time.Now().UTC(),
		}),
	}).Create(t).Error
}

func (r *TariffRepository) FindByStationAndConnector(ctx context.Context, stationID, connectorTypeID string) (*domain.Tariff, error) {
	var tariff domain.Tariff
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND connector_type_id = ?", stationID, connectorTypeID).
		First(&tariff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tariff, nil
}

func (r *TariffRepository) FindByStation(ctx context.Context, stationID string) ([]domain.Tariff, error) {
	var tariffs []domain.Tariff
	err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		Find(&tariffs).Error
	return tariffs, err
}
