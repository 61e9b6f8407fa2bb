package session

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/queue"
	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/mocks"
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
			{
				ID: "unit-1", Number: 1, Status: domain.UnitStatusFree,
				Sockets: []domain.Socket{
					{ID: "sock-1", Status: domain.SocketStatusFree, ConnectorTypeID: "type2"},
					{ID: "sock-2", Status: domain.SocketStatusFree, ConnectorTypeID: "ccs"},
				},
			},
		},
	}
	if err := store.Stations().Save(ctx, station); err != nil {
		t.Fatalf("seed station: %v", err)
	}
	// Tariff only for type2; ccs stays unpriced on purpose.
	tariff := &domain.Tariff{ID: "t-1", StationID: "st-1", ConnectorTypeID: "type2", PricePerKWh: 4.75}
	if err := store.Tariffs().Upsert(ctx, tariff); err != nil {
		t.Fatalf("seed tariff: %v", err)
	}
	for _, u := range []*domain.User{
		{ID: "cust-1", Email: "cust1@example.com", Role: domain.UserRoleCustomer},
		{ID: "cust-2", Email: "cust2@example.com", Role: domain.UserRoleCustomer},
		{ID: "admin-1", Email: "admin@example.com", Role: domain.UserRoleAdmin},
	} {
		if err := store.Users().Save(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	for _, v := range []*domain.Vehicle{
		{ID: "veh-1", CustomerID: "cust-1", Plate: "34ABC123"},
		{ID: "veh-2", CustomerID: "cust-2", Plate: "06XYZ789"},
	} {
		if err := store.Vehicles().Save(ctx, v); err != nil {
			t.Fatalf("seed vehicle: %v", err)
		}
	}

	log := zap.NewNop()
	email := &mocks.MockEmailService{}
	svc := NewService(
		store.Sessions(), store.Stations(), store.Tariffs(),
		store.Vehicles(), store.Users(),
		email, queue.NewEventPublisher(nil, log), log,
	)
	return &fixture{svc: svc, store: store, email: email}
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown vehicle", func(t *testing.T) {
		if _, err := f.svc.Start(ctx, "cust-1", "veh-404", "sock-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("someone else's vehicle forbidden", func(t *testing.T) {
		if _, err := f.svc.Start(ctx, "cust-1", "veh-2", "sock-1"); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown socket", func(t *testing.T) {
		if _, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-404"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("missing tariff blocks start", func(t *testing.T) {
		if _, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-2"); !errors.Is(err, domain.ErrTariffMissing) {
			t.Fatalf("expected ErrTariffMissing, got %v", err)
		}
		// A rejected start must not occupy the socket.
		socket, _ := f.store.Stations().FindSocket(ctx, "sock-2")
		if socket.Status != domain.SocketStatusFree {
			t.Fatalf("socket must stay free after rejected start, got %s", socket.Status)
		}
	})

	t.Run("successful start captures price and occupies socket", func(t *testing.T) {
		sess, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-1")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if sess.PriceAtStart != 4.75 {
			t.Fatalf("price at start should be 4.75, got %v", sess.PriceAtStart)
		}
		if sess.Status != domain.SessionStatusInProgress {
			t.Fatalf("expected in_progress, got %s", sess.Status)
		}
		socket, _ := f.store.Stations().FindSocket(ctx, "sock-1")
		if socket.Status != domain.SocketStatusOccupied {
			t.Fatalf("socket should be occupied, got %s", socket.Status)
		}
		unit, _ := f.store.Stations().FindUnit(ctx, "unit-1")
		if unit.Status != domain.UnitStatusOccupied {
			t.Fatalf("unit should be occupied, got %s", unit.Status)
		}
	})

	t.Run("busy socket rejected", func(t *testing.T) {
		if _, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-1"); !errors.Is(err, domain.ErrSocketNotAvailable) {
			t.Fatalf("expected ErrSocketNotAvailable, got %v", err)
		}
	})
}

func TestStop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	t.Run("invalid energy rejected before lookup", func(t *testing.T) {
		if _, err := f.svc.Stop(ctx, sess.ID, "cust-1", 0); !errors.Is(err, domain.ErrInvalidEnergy) {
			t.Fatalf("expected ErrInvalidEnergy for 0, got %v", err)
		}
		if _, err := f.svc.Stop(ctx, sess.ID, "cust-1", -2); !errors.Is(err, domain.ErrInvalidEnergy) {
			t.Fatalf("expected ErrInvalidEnergy for negative, got %v", err)
		}
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		if _, err := f.svc.Stop(ctx, sess.ID, "cust-2", 10); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("stop settles at captured price despite tariff change", func(t *testing.T) {
		// Raise the tariff mid-session; the session keeps its start price.
		updated := &domain.Tariff{ID: "t-1", StationID: "st-1", ConnectorTypeID: "type2", PricePerKWh: 9.99}
		if err := f.store.Tariffs().Upsert(ctx, updated); err != nil {
			t.Fatalf("update tariff: %v", err)
		}

		cost, err := f.svc.Stop(ctx, sess.ID, "cust-1", 12.345)
		if err != nil {
			t.Fatalf("stop: %v", err)
		}
		// 12.345 * 4.75 = 58.63875, rounded to cents.
		if cost != 58.64 {
			t.Fatalf("expected cost 58.64, got %v", cost)
		}

		socket, _ := f.store.Stations().FindSocket(ctx, "sock-1")
		if socket.Status != domain.SocketStatusFree {
			t.Fatalf("socket should be freed, got %s", socket.Status)
		}
		unit, _ := f.store.Stations().FindUnit(ctx, "unit-1")
		if unit.Status != domain.UnitStatusFree {
			t.Fatalf("unit should be freed, got %s", unit.Status)
		}
		if len(f.email.ReceiptsSent) != 1 || f.email.ReceiptsSent[0] != "cust1@example.com" {
			t.Fatalf("receipt expected for cust1, got %v", f.email.ReceiptsSent)
		}
	})

	t.Run("double stop rejected", func(t *testing.T) {
		if _, err := f.svc.Stop(ctx, sess.ID, "cust-1", 5); !errors.Is(err, domain.ErrSessionNotActive) {
			t.Fatalf("expected ErrSessionNotActive, got %v", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := f.svc.Stop(ctx, "missing", "cust-1", 5); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStop_UnitStaysOccupiedWhileSiblingBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Price the ccs socket so both sessions can run.
	if err := f.store.Tariffs().Upsert(ctx, &domain.Tariff{
		ID: "t-2", StationID: "st-1", ConnectorTypeID: "ccs", PricePerKWh: 6.0,
	}); err != nil {
		t.Fatalf("seed ccs tariff: %v", err)
	}

	first, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-1")
	if err != nil {
		t.Fatalf("start first: %v", err)
	}
	if _, err := f.svc.Start(ctx, "cust-2", "veh-2", "sock-2"); err != nil {
		t.Fatalf("start second: %v", err)
	}

	if _, err := f.svc.Stop(ctx, first.ID, "cust-1", 8); err != nil {
		t.Fatalf("stop first: %v", err)
	}

	unit, _ := f.store.Stations().FindUnit(ctx, "unit-1")
	if unit.Status != domain.UnitStatusOccupied {
		t.Fatalf("unit must stay occupied while the sibling socket is busy, got %s", unit.Status)
	}
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, "cust-1", "veh-1", "sock-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.Stop(ctx, sess.ID, "cust-1", 3); err != nil {
		t.Fatalf("stop: %v", err)
	}

	history, err := f.svc.History(ctx, "cust-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].ID != sess.ID {
		t.Fatalf("expected one session in history, got %d", len(history))
	}

	other, err := f.svc.History(ctx, "cust-2", 10)
	if err != nil {
		t.Fatalf("history cust-2: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("cust-2 has no sessions, got %d", len(other))
	}

	// 3 kWh at 4.75 settles to 14.25.
	if history[0].Cost == nil || *history[0].Cost != 14.25 {
		t.Fatalf("expected settled cost 14.25, got %v", history[0].Cost)
	}
}
