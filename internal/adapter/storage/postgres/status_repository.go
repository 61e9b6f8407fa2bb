package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) ports.StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) ListReservationStatuses(ctx context.Context) ([]domain.ReservationStatus, error) {
	var statuses []domain.ReservationStatus
	err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error
	return statuses, err
}
