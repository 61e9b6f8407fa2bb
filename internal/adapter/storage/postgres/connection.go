package postgres

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chargegrid/chargegrid/internal/domain"
)

// NewConnection opens a PostgreSQL connection pool via GORM.
func NewConnection(url string, maxOpen, maxIdle int, connMaxLifetime time.Duration, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if maxOpen <= 0 {
		maxOpen = 25
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = time.Hour
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	log.Info("connected to PostgreSQL")
	return db, nil
}

// RunMigrations creates or updates the schema for every domain model and
// seeds the reference tables that the application expects at runtime.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Station{},
		&domain.Unit{},
		&domain.Socket{},
		&domain.ConnectorType{},
		&domain.Tariff{},
		&domain.ReservationStatus{},
		&domain.Reservation{},
		&domain.ChargingSession{},
		&domain.PaymentMethod{},
		&domain.Payment{},
		&domain.User{},
		&domain.Vehicle{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return seedReferenceData(db)
}

// seedReferenceData inserts the status and payment-method rows when the
// tables are empty. Status IDs follow the conventional order the fallback
// constants assume.
func seedReferenceData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.ReservationStatus{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		statuses := []domain.ReservationStatus{
			{ID: domain.FallbackStatusPending, Name: "Pending"},
			{ID: domain.FallbackStatusApproved, Name: "Approved"},
			{ID: domain.FallbackStatusCancelled, Name: "Cancelled"},
			{ID: domain.FallbackStatusCompleted, Name: "Completed"},
		}
		if err := db.Create(&statuses).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&domain.PaymentMethod{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		methods := []domain.PaymentMethod{
			{ID: 1, Name: "Credit Card"},
			{ID: 2, Name: "Cash"},
			{ID: 3, Name: "Bank Transfer"},
		}
		if err := db.Create(&methods).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
