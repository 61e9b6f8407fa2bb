package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/ports"
)

type SessionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSessionRepository(db *gorm.DB, log *zap.Logger) ports.SessionRepository {
	return &SessionRepository{db: db, log: log}
}

// StartExclusive occupies the socket and inserts the session in one
// transaction. The socket flip is a conditional update checked by affected
// rows, so a concurrent start on the same socket loses cleanly instead of
// double-booking.
func (r *SessionRepository) StartExclusive(ctx context.Context, s *domain.ChargingSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var socket domain.Socket
		if err := tx.First(&socket, "id = ?", s.SocketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		res := tx.Model(&domain.Socket{}).
			Where("id = ? AND status = ?", s.SocketID, domain.SocketStatusFree).
			Updates(map[string]interface{}{
				"status":     domain.SocketStatusOccupied,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrSocketNotAvailable
		}

		if err := tx.Model(&domain.Unit{}).
			Where("id = ?", socket.UnitID).
			Updates(map[string]interface{}{
				"status":     domain.UnitStatusOccupied,
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}

		return tx.Create(s).Error
	})
}

// Complete finalizes the session, frees its socket and recounts the unit.
// The session update is conditional on the in-progress status so a second
// stop finds zero affected rows. The unit becomes free only when no socket
// of the unit remains occupied after this one is freed.
func (r *SessionRepository) Complete(ctx context.Context, id string, endTime time.Time, energyKWh, cost float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess domain.ChargingSession
		if err := tx.First(&sess, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		res := tx.Model(&domain.ChargingSession{}).
			Where("id = ? AND status = ?", id, domain.SessionStatusInProgress).
			Updates(map[string]interface{}{
				"end_time":   endTime,
				"energy_kwh": energyKWh,
				"cost":       cost,
				"status":     domain.SessionStatusCompleted,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrSessionNotActive
		}

		var socket domain.Socket
		if err := tx.First(&socket, "id = ?", sess.SocketID).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Socket{}).
			Where("id = ?", sess.SocketID).
			Updates(map[string]interface{}{
				"status":     domain.SocketStatusFree,
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}

		var occupied int64
		if err := tx.Model(&domain.Socket{}).
			Where("unit_id = ? AND status = ?", socket.UnitID, domain.SocketStatusOccupied).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied == 0 {
			if err := tx.Model(&domain.Unit{}).
				Where("id = ?", socket.UnitID).
				Updates(map[string]interface{}{
					"status":     domain.UnitStatusFree,
					"updated_at": time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.ChargingSession, error) {
	var sess domain.ChargingSession
	err := r.db.WithContext(ctx).First(&sess, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepository) FindActiveBySocket(ctx context.Context, socketID string) (*domain.ChargingSession, error) {
	var sess domain.ChargingSession
	err := r.db.WithContext(ctx).
		Where("socket_id = ? AND status = ?", socketID, domain.SessionStatusInProgress).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepository) FindByVehicles(ctx context.Context, vehicleIDs []string, limit int) ([]domain.ChargingSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []domain.ChargingSession
	err := r.db.WithContext(ctx).
		Where("vehicle_id IN ?", vehicleIDs).
		Order("start_time DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
