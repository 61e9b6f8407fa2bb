package tariff

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	station := &domain.Station{ID: "st-1", Name: "Central", Status: domain.StationStatusActive}
	if err := store.Stations().Save(context.Background(), station); err != nil {
		t.Fatalf("seed station: %v", err)
	}
	return NewService(store.Tariffs(), store.Stations(), zap.NewNop()), store
}

func TestLookup(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	if err := store.Tariffs().Upsert(ctx, &domain.Tariff{
		ID: "t-1", StationID: "st-1", ConnectorTypeID: "type2", PricePerKWh: 4.5,
	}); err != nil {
		t.Fatalf("seed tariff: %v", err)
	}

	got, err := svc.Lookup(ctx, "st-1", "type2")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.PricePerKWh != 4.5 {
		t.Fatalf("expected 4.5, got %v", got.PricePerKWh)
	}

	if _, err := svc.Lookup(ctx, "st-1", "chademo"); !errors.Is(err, domain.ErrTariffMissing) {
		t.Fatalf("expected ErrTariffMissing, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	t.Run("rejects non-positive price", func(t *testing.T) {
		if _, err := svc.Upsert(ctx, "st-1", "type2", 0); err == nil {
			t.Fatal("expected error for zero price")
		}
	})

	t.Run("rejects unknown station", func(t *testing.T) {
		if _, err := svc.Upsert(ctx, "st-404", "type2", 5); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("second upsert replaces the price", func(t *testing.T) {
		if _, err := svc.Upsert(ctx, "st-1", "type2", 5); err != nil {
			t.Fatalf("first upsert: %v", err)
		}
		if _, err := svc.Upsert(ctx, "st-1", "type2", 6.5); err != nil {
			t.Fatalf("second upsert: %v", err)
		}
		got, err := svc.Lookup(ctx, "st-1", "type2")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if got.PricePerKWh != 6.5 {
			t.Fatalf("expected replaced price 6.5, got %v", got.PricePerKWh)
		}
		tariffs, _ := svc.ListByStation(ctx, "st-1")
		if len(tariffs) != 1 {
			t.Fatalf("pair must stay unique, got %d tariffs", len(tariffs))
		}
	})
}
