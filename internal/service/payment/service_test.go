package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
)

func newFixture(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	for _, u := range []*domain.User{
		{ID: "cust-1", Email: "cust1@example.com", Role: domain.UserRoleCustomer},
		{ID: "cust-2", Email: "cust2@example.com", Role: domain.UserRoleCustomer},
	} {
		if err := store.Users().Save(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	if err := store.Vehicles().Save(ctx, &domain.Vehicle{ID: "veh-1", CustomerID: "cust-1"}); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}

	svc := NewService(store.Payments(), store.Sessions(), store.Vehicles(), store.Users(), zap.NewNop())
	return svc, store
}

func seedSession(t *testing.T, store *memory.Store, id string, cost *float64) {
	t.Helper()
	status := domain.SessionStatusCompleted
	if cost == nil {
		status = domain.SessionStatusInProgress
	}
	sess := &domain.ChargingSession{
		ID: id, VehicleID: "veh-1", SocketID: "sock-1",
		PriceAtStart: 4.5, StartTime: time.Now().Add(-time.Hour),
		Cost: cost, Status: status,
	}
	// Insert directly; socket occupancy is irrelevant here.
	store.SeedSession(sess)
}

func TestRecord(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	cost := 58.64
	seedSession(t, store, "sess-done", &cost)
	seedSession(t, store, "sess-open", nil)

	t.Run("unknown session", func(t *testing.T) {
		if _, err := svc.Record(ctx, "missing", "cust-1", 1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		if _, err := svc.Record(ctx, "sess-done", "cust-2", 1); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unfinalized session rejected", func(t *testing.T) {
		if _, err := svc.Record(ctx, "sess-open", "cust-1", 1); !errors.Is(err, domain.ErrChargeNotFinalized) {
			t.Fatalf("expected ErrChargeNotFinalized, got %v", err)
		}
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		if _, err := svc.Record(ctx, "sess-done", "cust-1", 99); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("records session cost", func(t *testing.T) {
		payment, err := svc.Record(ctx, "sess-done", "cust-1", 1)
		if err != nil {
			t.Fatalf("record: %v", err)
		}
		if payment.Amount != 58.64 {
			t.Fatalf("amount must copy the session cost, got %v", payment.Amount)
		}
		saved, _ := store.Payments().FindBySession(ctx, "sess-done")
		if len(saved) != 1 {
			t.Fatalf("expected one saved payment, got %d", len(saved))
		}
	})
}

func TestListMethods(t *testing.T) {
	svc, _ := newFixture(t)

	methods, err := svc.ListMethods(context.Background())
	if err != nil {
		t.Fatalf("list methods: %v", err)
	}
	if len(methods) != 3 {
		t.Fatalf("expected 3 seeded methods, got %d", len(methods))
	}
}
