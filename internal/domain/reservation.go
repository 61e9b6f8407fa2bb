package domain

import (
	"time"
)

// ReservationStatus is a status-name reference row. Reservations carry the
// integer code; the names are configuration data resolved at runtime by the
// status registry.
type ReservationStatus struct {
	ID   int    `json:"id" gorm:"primaryKey"`
	Name string `json:"name"`
}

// TableName keeps the reference table separate from the reservations table.
func (ReservationStatus) TableName() string { return "reservation_statuses" }

// StatusSet holds the resolved status codes. A nil slot means no reference
// row matched the keyword; callers fall back to the documented constants.
type StatusSet struct {
	Pending   *int
	Approved  *int
	Cancelled *int
	Completed *int
}

// Fallback status codes used when the reference table cannot be resolved.
// They match the conventional seed order of the status table.
const (
	FallbackStatusPending   = 1
	FallbackStatusApproved  = 2
	FallbackStatusCancelled = 3
	FallbackStatusCompleted = 4
)

// ActiveIDs returns the codes counted as "active" for overlap and
// cancellation checks: pending and approved.
func (s StatusSet) ActiveIDs() []int {
	ids := make([]int, 0, 2)
	if s.Pending != nil {
		ids = append(ids, *s.Pending)
	}
	if s.Approved != nil {
		ids = append(ids, *s.Approved)
	}
	return ids
}

// DefaultID is the status assigned to a newly created reservation:
// pending, falling back to approved, then completed, then a hardcoded 1.
func (s StatusSet) DefaultID() int {
	switch {
	case s.Pending != nil:
		return *s.Pending
	case s.Approved != nil:
		return *s.Approved
	case s.Completed != nil:
		return *s.Completed
	default:
		return FallbackStatusPending
	}
}

// Missing lists the slots that did not resolve to any reference row.
func (s StatusSet) Missing() []string {
	var missing []string
	if s.Pending == nil {
		missing = append(missing, "pending")
	}
	if s.Approved == nil {
		missing = append(missing, "approved")
	}
	if s.Cancelled == nil {
		missing = append(missing, "cancelled")
	}
	if s.Completed == nil {
		missing = append(missing, "completed")
	}
	return missing
}

// Reservation books a future time slot on a charging unit. For any unit, no
// two reservations in an active status may have overlapping [start, end)
// intervals.
type Reservation struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	CustomerID string     `json:"customer_id" gorm:"index"`
	UnitID     string     `json:"unit_id" gorm:"index"`
	StartTime  time.Time  `json:"start_time" gorm:"index"`
	EndTime    *time.Time `json:"end_time"`
	StatusID   int        `json:"status_id" gorm:"index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Overlaps reports whether the reservation's interval intersects
// [start, end) using half-open semantics: a reservation ending exactly at
// start does not conflict. A nil EndTime is treated as open-ended and
// conflicts with anything starting after StartTime.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	if !r.StartTime.Before(end) {
		return false
	}
	if r.EndTime == nil {
		return true
	}
	return r.EndTime.After(start)
}

// Expired reports whether the reservation's end time has passed.
func (r *Reservation) Expired(now time.Time) bool {
	return r.EndTime != nil && !r.EndTime.After(now)
}
