package domain

import "errors"

// Sentinel errors returned by the core services. The HTTP layer maps them to
// response codes in one place; services and repositories wrap them with
// context via fmt.Errorf("...: %w", err).
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email is already registered")

	// Reservation validation, rejected before any transaction opens.
	ErrInvalidDuration   = errors.New("duration must be exactly 15, 30 or 60 minutes")
	ErrStartInPast       = errors.New("start time must be in the future")
	ErrStartBeyondWindow = errors.New("reservation must fall within the booking window")

	// Reservation state.
	ErrReservationOverlap = errors.New("an active reservation already covers this slot")
	ErrNotCancellable     = errors.New("reservation is not in a cancellable status")
	ErrNotFinishedYet     = errors.New("reservation end time has not passed yet")
	ErrAlreadyClosed      = errors.New("reservation is already cancelled or completed")

	// Charging sessions.
	ErrSocketNotAvailable = errors.New("socket is not available")
	ErrTariffMissing      = errors.New("no tariff configured for this station and connector type")
	ErrInvalidEnergy      = errors.New("energy delivered must be positive")
	ErrSessionNotActive   = errors.New("charging session is not in progress")

	// Payments.
	ErrChargeNotFinalized = errors.New("session cost has not been finalized")

	// ErrTxConflict signals a lost serializable-transaction race. The operation
	// left no partial state behind; the caller may safely retry with the same
	// inputs.
	ErrTxConflict = errors.New("transaction conflict, retry may succeed")
)

// IsConflict reports whether err is one of the contention errors that a caller
// may resolve by retrying or picking another resource.
func IsConflict(err error) bool {
	return errors.Is(err, ErrReservationOverlap) ||
		errors.Is(err, ErrSocketNotAvailable) ||
		errors.Is(err, ErrTxConflict)
}
