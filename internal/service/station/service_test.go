package station

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/mocks"
)

func seed(t *testing.T, store *memory.Store, id, name string, lat, lng float64, socketStatus domain.SocketStatus) {
	t.Helper()
	station := &domain.Station{
		ID: id, Name: name, Status: domain.StationStatusActive,
		Latitude: &lat, Longitude: &lng,
		Units: []domain.Unit{
			{
				ID: id + "-u1", Number: 1, Status: domain.UnitStatusFree,
				Sockets: []domain.Socket{
					{ID: id + "-s1", Status: socketStatus, ConnectorTypeID: "type2"},
				},
			},
		},
	}
	if err := store.Stations().Save(context.Background(), station); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestNearby(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Stations(), nil, zap.NewNop())
	ctx := context.Background()

	// Around central Istanbul; far one is ~40 km east.
	seed(t, store, "near-1", "Close A", 41.01, 28.97, domain.SocketStatusFree)
	seed(t, store, "near-2", "Close B", 41.03, 28.99, domain.SocketStatusOccupied)
	seed(t, store, "far-1", "Far", 41.01, 29.45, domain.SocketStatusFree)

	results, err := svc.Nearby(ctx, 41.015, 28.975, 5, false)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 stations within 5 km, got %d", len(results))
	}
	if results[0].Station.ID != "near-1" {
		t.Fatalf("results should be sorted by distance, first was %s", results[0].Station.ID)
	}
	if results[0].DistanceKm >= results[1].DistanceKm {
		t.Fatalf("distances out of order: %v then %v", results[0].DistanceKm, results[1].DistanceKm)
	}

	t.Run("only available filters fully occupied stations", func(t *testing.T) {
		available, err := svc.Nearby(ctx, 41.015, 28.975, 5, true)
		if err != nil {
			t.Fatalf("nearby: %v", err)
		}
		if len(available) != 1 || available[0].Station.ID != "near-1" {
			t.Fatalf("expected only near-1, got %d results", len(available))
		}
	})
}

func TestAvailability(t *testing.T) {
	store := memory.NewStore()
	cache := mocks.NewMockCache()
	svc := NewService(store.Stations(), cache, zap.NewNop())
	ctx := context.Background()

	station := &domain.Station{
		ID: "st-1", Name: "Central", Status: domain.StationStatusActive,
		Units: []domain.Unit{
			{
				ID: "u1", Number: 1,
				Sockets: []domain.Socket{
					{ID: "s1", Status: domain.SocketStatusFree, ConnectorTypeID: "type2"},
					{ID: "s2", Status: domain.SocketStatusOccupied, ConnectorTypeID: "type2"},
					{ID: "s3", Status: domain.SocketStatusFree, ConnectorTypeID: "ccs"},
				},
			},
		},
	}
	if err := store.Stations().Save(ctx, station); err != nil {
		t.Fatalf("seed: %v", err)
	}

	av, err := svc.Availability(ctx, "st-1")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if av.TotalSocket != 3 || av.FreeSockets != 2 {
		t.Fatalf("expected 2/3 free, got %d/%d", av.FreeSockets, av.TotalSocket)
	}
	if av.FreeByType["type2"] != 1 || av.FreeByType["ccs"] != 1 {
		t.Fatalf("unexpected per-type counts: %v", av.FreeByType)
	}

	t.Run("second read served from cache", func(t *testing.T) {
		before := len(cache.Calls)
		cached, err := svc.Availability(ctx, "st-1")
		if err != nil {
			t.Fatalf("availability: %v", err)
		}
		if cached.FreeSockets != av.FreeSockets {
			t.Fatalf("cached summary differs: %d vs %d", cached.FreeSockets, av.FreeSockets)
		}
		if len(cache.Calls) != before+1 || cache.Calls[before] != "get:availability:st-1" {
			t.Fatalf("expected a single cache get, calls: %v", cache.Calls[before:])
		}
	})

	t.Run("unknown station", func(t *testing.T) {
		if _, err := svc.Availability(ctx, "st-404"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCreate_FillsDefaults(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Stations(), nil, zap.NewNop())
	ctx := context.Background()

	station := &domain.Station{
		Name: "New Site",
		Units: []domain.Unit{
			{Number: 1, Sockets: []domain.Socket{{ConnectorTypeID: "type2"}}},
		},
	}
	if err := svc.Create(ctx, station); err != nil {
		t.Fatalf("create: %v", err)
	}
	if station.ID == "" || station.Units[0].ID == "" || station.Units[0].Sockets[0].ID == "" {
		t.Fatal("create should assign IDs through the whole tree")
	}
	if station.Status != domain.StationStatusActive {
		t.Fatalf("new station should default to active, got %s", station.Status)
	}

	got, err := svc.Get(ctx, station.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Units) != 1 || len(got.Units[0].Sockets) != 1 {
		t.Fatalf("persisted tree incomplete: %+v", got)
	}
	if got.Units[0].Sockets[0].Status != domain.SocketStatusFree {
		t.Fatalf("new socket should default to free, got %s", got.Units[0].Sockets[0].Status)
	}
}
