package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/mocks"
)

func statusRows(names map[int]string) []domain.ReservationStatus {
	rows := make([]domain.ReservationStatus, 0, len(names))
	for id, name := range names {
		rows = append(rows, domain.ReservationStatus{ID: id, Name: name})
	}
	return rows
}

func TestResolve_KeywordMatching(t *testing.T) {
	repo := &mocks.MockStatusRepository{
		ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
			// Deployment-specific names with nonstandard IDs.
			return statusRows(map[int]string{
				10: "Waiting for approval",
				20: "Confirmed",
				30: "Cancelled by customer",
				40: "Finished",
			}), nil
		},
	}
	registry := NewRegistry(repo, time.Minute, zap.NewNop())
	ctx := context.Background()

	set := registry.Resolve(ctx)
	if set.Pending == nil || *set.Pending != 10 {
		t.Fatalf("pending should resolve to 10, got %v", set.Pending)
	}
	if set.Approved == nil || *set.Approved != 20 {
		t.Fatalf("approved should resolve to 20, got %v", set.Approved)
	}
	if set.Cancelled == nil || *set.Cancelled != 30 {
		t.Fatalf("cancelled should resolve to 30, got %v", set.Cancelled)
	}
	if set.Completed == nil || *set.Completed != 40 {
		t.Fatalf("completed should resolve to 40, got %v", set.Completed)
	}

	active := registry.ActiveIDs(ctx)
	if len(active) != 2 || active[0] != 10 || active[1] != 20 {
		t.Fatalf("active IDs should be [10 20], got %v", active)
	}
	if registry.DefaultID(ctx) != 10 {
		t.Fatalf("default should be pending (10), got %d", registry.DefaultID(ctx))
	}
}

func TestResolve_CachesWithinTTL(t *testing.T) {
	loads := 0
	repo := &mocks.MockStatusRepository{
		ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
			loads++
			return statusRows(map[int]string{1: "Pending", 2: "Approved", 3: "Cancelled", 4: "Completed"}), nil
		},
	}
	registry := NewRegistry(repo, time.Hour, zap.NewNop())
	ctx := context.Background()

	registry.Resolve(ctx)
	registry.Resolve(ctx)
	registry.ActiveIDs(ctx)
	if loads != 1 {
		t.Fatalf("table should load once within the TTL, got %d loads", loads)
	}

	registry.Invalidate()
	registry.Resolve(ctx)
	if loads != 2 {
		t.Fatalf("invalidate should force a reload, got %d loads", loads)
	}
}

func TestResolve_FallbacksWhenUnresolved(t *testing.T) {
	repo := &mocks.MockStatusRepository{
		ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
			return statusRows(map[int]string{7: "Unrecognized"}), nil
		},
	}
	registry := NewRegistry(repo, time.Minute, zap.NewNop())
	ctx := context.Background()

	active := registry.ActiveIDs(ctx)
	if len(active) != 2 || active[0] != domain.FallbackStatusPending || active[1] != domain.FallbackStatusApproved {
		t.Fatalf("unresolved table should fall back to [1 2], got %v", active)
	}
	if got := registry.DefaultID(ctx); got != domain.FallbackStatusPending {
		t.Fatalf("default fallback should be 1, got %d", got)
	}
	if got := registry.CancelledID(ctx); got != domain.FallbackStatusCancelled {
		t.Fatalf("cancelled fallback should be 3, got %d", got)
	}
	if got := registry.CompletedID(ctx); got != domain.FallbackStatusCompleted {
		t.Fatalf("completed fallback should be 4, got %d", got)
	}
}

func TestResolve_DefaultChain(t *testing.T) {
	// No pending row: default falls back to approved.
	repo := &mocks.MockStatusRepository{
		ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
			return statusRows(map[int]string{5: "Approved", 6: "Completed"}), nil
		},
	}
	registry := NewRegistry(repo, time.Minute, zap.NewNop())
	if got := registry.DefaultID(context.Background()); got != 5 {
		t.Fatalf("default should fall back to approved (5), got %d", got)
	}
}

func TestResolve_LoadFailureUsesLastCached(t *testing.T) {
	fail := false
	repo := &mocks.MockStatusRepository{
		ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
			if fail {
				return nil, errors.New("connection refused")
			}
			return statusRows(map[int]string{11: "Pending", 12: "Approved", 13: "Cancelled", 14: "Completed"}), nil
		},
	}
	registry := NewRegistry(repo, time.Nanosecond, zap.NewNop())
	ctx := context.Background()

	registry.Resolve(ctx)
	fail = true
	time.Sleep(time.Millisecond)

	set := registry.Resolve(ctx)
	if set.Pending == nil || *set.Pending != 11 {
		t.Fatalf("load failure should serve the stale cached set, got %v", set.Pending)
	}
}

func TestValidate(t *testing.T) {
	t.Run("complete table passes", func(t *testing.T) {
		repo := &mocks.MockStatusRepository{
			ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
				return statusRows(map[int]string{1: "Pending", 2: "Approved", 3: "Cancelled", 4: "Completed"}), nil
			},
		}
		if err := NewRegistry(repo, time.Minute, zap.NewNop()).Validate(context.Background()); err != nil {
			t.Fatalf("expected validation to pass: %v", err)
		}
	})

	t.Run("incomplete table fails naming missing slots", func(t *testing.T) {
		repo := &mocks.MockStatusRepository{
			ListReservationStatusesFunc: func(ctx context.Context) ([]domain.ReservationStatus, error) {
				return statusRows(map[int]string{1: "Pending"}), nil
			},
		}
		err := NewRegistry(repo, time.Minute, zap.NewNop()).Validate(context.Background())
		if err == nil {
			t.Fatal("expected validation to fail")
		}
	})
}
