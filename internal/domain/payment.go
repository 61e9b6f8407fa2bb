package domain

import (
	"time"
)

// PaymentMethod is reference data (e.g. credit card, cash, bank transfer).
type PaymentMethod struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// Payment is a bookkeeping record for a completed charging session. The
// amount is copied from the session's cost; there is no gateway integration.
type Payment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"index"`
	MethodID  int       `json:"method_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
