package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/queue"
	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/mocks"
	"github.com/chargegrid/chargegrid/internal/service/status"
	"github.com/chargegrid/chargegrid/pkg/config"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	email *mocks.MockEmailService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	station := &domain.Station{
		ID: "st-1", Name: "Central", Status: domain.StationStatusActive,
		Units: []domain.Unit{
			{ID: "unit-1", Number: 1, Status: domain.UnitStatusFree},
		},
	}
	if err := store.Stations().Save(ctx, station); err != nil {
		t.Fatalf("seed station: %v", err)
	}
	users := []*domain.User{
		{ID: "cust-1", Email: "cust1@example.com", Role: domain.UserRoleCustomer},
		{ID: "cust-2", Email: "cust2@example.com", Role: domain.UserRoleCustomer},
		{ID: "admin-1", Email: "admin@example.com", Role: domain.UserRoleAdmin},
	}
	for _, u := range users {
		if err := store.Users().Save(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	log := zap.NewNop()
	registry := status.NewRegistry(store.Statuses(), time.Minute, log)
	email := &mocks.MockEmailService{}
	svc := NewService(
		store.Reservations(), store.Stations(), store.Users(),
		registry, email, queue.NewEventPublisher(nil, log),
		config.ReservationConfig{}, log,
	)
	return &fixture{svc: svc, store: store, email: email}
}

func futureSlot(offset, duration time.Duration) (time.Time, time.Time) {
	start := time.Now().Add(offset).Truncate(time.Second)
	return start, start.Add(duration)
}

func TestCreate_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("duration checked first", func(t *testing.T) {
		// Start in the past AND 45-minute duration: duration error wins.
		start := time.Now().Add(-time.Hour)
		_, err := f.svc.Create(ctx, "cust-1", "unit-1", start, start.Add(45*time.Minute))
		if !errors.Is(err, domain.ErrInvalidDuration) {
			t.Fatalf("expected ErrInvalidDuration, got %v", err)
		}
	})

	t.Run("start in the past", func(t *testing.T) {
		start := time.Now().Add(-time.Hour)
		_, err := f.svc.Create(ctx, "cust-1", "unit-1", start, start.Add(30*time.Minute))
		if !errors.Is(err, domain.ErrStartInPast) {
			t.Fatalf("expected ErrStartInPast, got %v", err)
		}
	})

	t.Run("beyond booking window", func(t *testing.T) {
		start, end := futureSlot(7*time.Hour, 30*time.Minute)
		_, err := f.svc.Create(ctx, "cust-1", "unit-1", start, end)
		if !errors.Is(err, domain.ErrStartBeyondWindow) {
			t.Fatalf("expected ErrStartBeyondWindow, got %v", err)
		}
	})

	t.Run("end straddling window edge rejected", func(t *testing.T) {
		// Start inside the window but end past it.
		start, end := futureSlot(5*time.Hour+45*time.Minute, time.Hour)
		_, err := f.svc.Create(ctx, "cust-1", "unit-1", start, end)
		if !errors.Is(err, domain.ErrStartBeyondWindow) {
			t.Fatalf("expected ErrStartBeyondWindow, got %v", err)
		}
	})

	t.Run("unknown unit", func(t *testing.T) {
		start, end := futureSlot(time.Hour, 30*time.Minute)
		_, err := f.svc.Create(ctx, "cust-1", "unit-404", start, end)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCreate_BooksSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, end := futureSlot(time.Hour, 30*time.Minute)
	resv, err := f.svc.Create(ctx, "cust-1", "unit-1", start, end)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resv.StatusID != domain.FallbackStatusPending {
		t.Fatalf("new reservation should be pending, got status %d", resv.StatusID)
	}
	if len(f.email.ConfirmationsSent) != 1 || f.email.ConfirmationsSent[0] != "cust1@example.com" {
		t.Fatalf("confirmation email expected for cust1, got %v", f.email.ConfirmationsSent)
	}

	t.Run("overlapping booking rejected", func(t *testing.T) {
		s := start.Add(15 * time.Minute)
		_, err := f.svc.Create(ctx, "cust-2", "unit-1", s, s.Add(30*time.Minute))
		if !errors.Is(err, domain.ErrReservationOverlap) {
			t.Fatalf("expected ErrReservationOverlap, got %v", err)
		}
	})

	t.Run("back to back booking allowed", func(t *testing.T) {
		if _, err := f.svc.Create(ctx, "cust-2", "unit-1", end, end.Add(15*time.Minute)); err != nil {
			t.Fatalf("adjacent slot must not conflict: %v", err)
		}
	})
}

func TestCreate_SweepsExpiredFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed an expired reservation still in an active status, bypassing
	// validation.
	pastStart := time.Now().Add(-time.Hour)
	pastEnd := pastStart.Add(30 * time.Minute)
	stale := &domain.Reservation{
		ID: "stale", CustomerID: "cust-2", UnitID: "unit-1",
		StartTime: pastStart, EndTime: &pastEnd, StatusID: domain.FallbackStatusApproved,
	}
	if err := f.store.Reservations().CreateIfNoOverlap(ctx, stale, nil); err != nil {
		t.Fatalf("seed stale reservation: %v", err)
	}

	start, end := futureSlot(time.Hour, 15*time.Minute)
	if _, err := f.svc.Create(ctx, "cust-1", "unit-1", start, end); err != nil {
		t.Fatalf("create: %v", err)
	}

	swept, _ := f.store.Reservations().FindByID(ctx, "stale")
	if swept.StatusID != domain.FallbackStatusCompleted {
		t.Fatalf("booking should sweep expired reservations, got status %d", swept.StatusID)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, end := futureSlot(time.Hour, 30*time.Minute)
	resv, err := f.svc.Create(ctx, "cust-1", "unit-1", start, end)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("non-owner forbidden", func(t *testing.T) {
		if err := f.svc.Cancel(ctx, resv.ID, "cust-2"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("owner cancels", func(t *testing.T) {
		if err := f.svc.Cancel(ctx, resv.ID, "cust-1"); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		got, _ := f.store.Reservations().FindByID(ctx, resv.ID)
		if got.StatusID != domain.FallbackStatusCancelled {
			t.Fatalf("expected cancelled status, got %d", got.StatusID)
		}
	})

	t.Run("second cancel not cancellable", func(t *testing.T) {
		if err := f.svc.Cancel(ctx, resv.ID, "cust-1"); !errors.Is(err, domain.ErrNotCancellable) {
			t.Fatalf("expected ErrNotCancellable, got %v", err)
		}
	})

	t.Run("admin may cancel another customer's reservation", func(t *testing.T) {
		s, e := futureSlot(2*time.Hour, 30*time.Minute)
		other, err := f.svc.Create(ctx, "cust-2", "unit-1", s, e)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := f.svc.Cancel(ctx, other.ID, "admin-1"); err != nil {
			t.Fatalf("admin cancel: %v", err)
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		if err := f.svc.Cancel(ctx, "missing", "cust-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("still running reservation not finished yet", func(t *testing.T) {
		start, end := futureSlot(time.Hour, 30*time.Minute)
		resv, err := f.svc.Create(ctx, "cust-1", "unit-1", start, end)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := f.svc.Complete(ctx, resv.ID, "cust-1"); !errors.Is(err, domain.ErrNotFinishedYet) {
			t.Fatalf("expected ErrNotFinishedYet, got %v", err)
		}
	})

	t.Run("finished reservation completes once", func(t *testing.T) {
		pastStart := time.Now().Add(-time.Hour)
		pastEnd := pastStart.Add(30 * time.Minute)
		resv := &domain.Reservation{
			ID: "done", CustomerID: "cust-1", UnitID: "unit-1",
			StartTime: pastStart, EndTime: &pastEnd, StatusID: domain.FallbackStatusApproved,
		}
		if err := f.store.Reservations().CreateIfNoOverlap(ctx, resv, nil); err != nil {
			t.Fatalf("seed: %v", err)
		}

		if err := f.svc.Complete(ctx, "done", "cust-1"); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if err := f.svc.Complete(ctx, "done", "cust-1"); !errors.Is(err, domain.ErrAlreadyClosed) {
			t.Fatalf("expected ErrAlreadyClosed, got %v", err)
		}
	})
}

func TestSweepExpired_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pastStart := time.Now().Add(-2 * time.Hour)
	pastEnd := pastStart.Add(time.Hour)
	for _, id := range []string{"a", "b"} {
		resv := &domain.Reservation{
			ID: id, CustomerID: "cust-1", UnitID: "unit-1",
			StartTime: pastStart, EndTime: &pastEnd, StatusID: domain.FallbackStatusPending,
		}
		if err := f.store.Reservations().CreateIfNoOverlap(ctx, resv, nil); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	n, err := f.svc.SweepExpired(ctx)
	if err != nil || n != 2 {
		t.Fatalf("first sweep: n=%d err=%v", n, err)
	}
	n, err = f.svc.SweepExpired(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second sweep must be a no-op: n=%d err=%v", n, err)
	}
}
