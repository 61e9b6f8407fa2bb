package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chargegrid/chargegrid/internal/domain"
)

func TestMapTxError_SerializationFailure(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access due to concurrent update"}

	t.Run("sqlstate 40001 becomes tx conflict", func(t *testing.T) {
		if err := mapTxError(serialization); !errors.Is(err, domain.ErrTxConflict) {
			t.Fatalf("expected ErrTxConflict, got %v", err)
		}
	})

	t.Run("wrapped 40001 still detected", func(t *testing.T) {
		wrapped := fmt.Errorf("create reservation: %w", serialization)
		if err := mapTxError(wrapped); !errors.Is(err, domain.ErrTxConflict) {
			t.Fatalf("expected ErrTxConflict for wrapped error, got %v", err)
		}
	})

	t.Run("conflict is retryable", func(t *testing.T) {
		if !domain.IsConflict(mapTxError(serialization)) {
			t.Fatal("a lost serialization race should count as a conflict")
		}
	})

	t.Run("other sqlstate passes through", func(t *testing.T) {
		unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
		if err := mapTxError(unique); !errors.Is(err, unique) {
			t.Fatalf("non-serialization errors must pass through unchanged, got %v", err)
		}
	})

	t.Run("domain sentinels pass through", func(t *testing.T) {
		if err := mapTxError(domain.ErrReservationOverlap); !errors.Is(err, domain.ErrReservationOverlap) {
			t.Fatalf("expected ErrReservationOverlap unchanged, got %v", err)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := mapTxError(nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})
}
