package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

type ReservationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReservationRepository(db *gorm.DB, log *zap.Logger) ports.ReservationRepository {
	return &ReservationRepository{db: db, log: log}
}

// CreateIfNoOverlap runs the overlap check and the insert in one serializable
// transaction. Serializable isolation is required: under snapshot or
// read-committed, two concurrent bookings of the same unit can each observe
// "no overlap" before either commits.
func (r *ReservationRepository) CreateIfNoOverlap(ctx context.Context, resv *domain.Reservation, activeStatusIDs []int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Reservation
		err := tx.Select("id").
			Where("unit_id = ? AND status_id IN ?", resv.UnitID, activeStatusIDs).
			Where("start_time < ?", resv.EndTime).
			Where("end_time IS NULL OR end_time > ?", resv.StartTime).
			Take(&existing).Error
		if err == nil {
			return domain.ErrReservationOverlap
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(resv).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	err = mapTxError(err)
	if errors.Is(err, domain.ErrTxConflict) {
		r.log.Debug("reservation insert lost serialization race",
			zap.String("unit_id", resv.UnitID))
	}
	return err
}

// mapTxError translates PostgreSQL SQLSTATE 40001 (serialization_failure),
// raised when a concurrent serializable transaction commits a conflicting
// write first, into domain.ErrTxConflict. Any other error passes through.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return domain.ErrTxConflict
	}
	return err
}

func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var resv domain.Reservation
	err := r.db.WithContext(ctx).First(&resv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resv, nil
}

func (r *ReservationRepository) FindByCustomer(ctx context.Context, customerID string, limit int) ([]domain.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	var resvs []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("start_time DESC").
		Limit(limit).
		Find(&resvs).Error
	return resvs, err
}

func (r *ReservationRepository) FindActiveByUnit(ctx context.Context, unitID string, activeStatusIDs []int) ([]domain.Reservation, error) {
	var resvs []domain.Reservation
	err := r.db.WithContext(ctx).
		Where("unit_id = ? AND status_id IN ?", unitID, activeStatusIDs).
		Order("start_time ASC").
		Find(&resvs).Error
	return resvs, err
}

// UpdateStatus is a conditional transition: the row changes only while its
// current status is still in fromStatusIDs, so two concurrent cancels cannot
// both report success.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, fromStatusIDs []int, toStatusID int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("id = ? AND status_id IN ?", id, fromStatusIDs).
		Updates(map[string]interface{}{
			"status_id":  toStatusID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ReservationRepository) CompleteExpired(ctx context.Context, activeStatusIDs []int, completedStatusID int, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Reservation{}).
		Where("status_id IN ? AND end_time IS NOT NULL AND end_time <= ?", activeStatusIDs, now).
		Updates(map[string]interface{}{
			"status_id":  completedStatusID,
			"updated_at": now.UTC(),
		})
	return res.RowsAffected, res.Error
}
