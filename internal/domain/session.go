package domain

import (
	"math"
	"time"
)

// SessionStatus is the lifecycle state of a charging session.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// ChargingSession is a live or finished charge on a socket. PriceAtStart is
// captured from the tariff when the session starts and never recomputed, so
// mid-session tariff changes do not affect billing. EndTime, EnergyKWh and
// Cost stay nil while the session is in progress.
type ChargingSession struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	VehicleID    string        `json:"vehicle_id" gorm:"index"`
	SocketID     string        `json:"socket_id" gorm:"index"`
	TariffID     string        `json:"tariff_id"`
	PriceAtStart float64       `json:"price_at_start"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      *time.Time    `json:"end_time,omitempty"`
	EnergyKWh    *float64      `json:"energy_kwh,omitempty"`
	Cost         *float64      `json:"cost,omitempty"`
	Status       SessionStatus `json:"status" gorm:"index"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// SessionCost computes the billed amount for a finished session, rounded to
// two decimal places.
func SessionCost(energyKWh, pricePerKWh float64) float64 {
	return math.Round(energyKWh*pricePerKWh*100) / 100
}
