package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

type StationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) ports.StationRepository {
	return &StationRepository{db: db, log: log}
}

func (r *StationRepository) Save(ctx context.Context, station *domain.Station) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(station).Error
}

func (r *StationRepository) FindByID(ctx context.Context, id string) (*domain.Station, error) {
	var station domain.Station
	err := r.db.WithContext(ctx).
		Preload("Units.Sockets.ConnectorType").
		First(&station, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

func (r *StationRepository) FindAll(ctx context.Context) ([]domain.Station, error) {
	var stations []domain.Station
	err := r.db.WithContext(ctx).
		Preload("Units.Sockets.ConnectorType").
		Order("name ASC").
		Find(&stations).Error
	return stations, err
}

func (r *StationRepository) FindInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]domain.Station, error) {
	var stations []domain.Station
	err := r.db.WithContext(ctx).
		Preload("Units.Sockets.ConnectorType").
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Where("status = ?", domain.StationStatusActive).
		Find(&stations).Error
	return stations, err
}

func (r *StationRepository) FindUnit(ctx context.Context, id string) (*domain.Unit, error) {
	var unit domain.Unit
	err := r.db.WithContext(ctx).
		Preload("Sockets.ConnectorType").
		First(&unit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

func (r *StationRepository) FindSocket(ctx context.Context, id string) (*domain.Socket, error) {
	var socket domain.Socket
	err := r.db.WithContext(ctx).
		Preload("ConnectorType").
		Preload("Unit").
		First(&socket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &socket, nil
}

func (r *StationRepository) CountOccupiedSockets(ctx context.Context, unitID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Socket{}).
		Where("unit_id = ? AND status = ?", unitID, domain.SocketStatusOccupied).
		Count(&count).Error
	return count, err
}

func (r *StationRepository) SaveConnectorType(ctx context.Context, ct *domain.ConnectorType) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(ct).Error
}

func (r *StationRepository) FindConnectorTypes(ctx context.Context) ([]domain.ConnectorType, error) {
	var types []domain.ConnectorType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}
