package vehicle

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
)

func TestRegisterAndList(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Vehicles(), zap.NewNop())
	ctx := context.Background()

	v := &domain.Vehicle{Plate: "34 ABC 123", Brand: "Renault", Model: "Zoe"}
	if err := svc.Register(ctx, "cust-1", v); err != nil {
		t.Fatalf("register: %v", err)
	}
	if v.ID == "" {
		t.Fatal("register should assign an id")
	}
	if v.CustomerID != "cust-1" {
		t.Fatalf("vehicle should belong to the caller, got %s", v.CustomerID)
	}

	other := &domain.Vehicle{Plate: "06 XYZ 99"}
	if err := svc.Register(ctx, "cust-2", other); err != nil {
		t.Fatalf("register: %v", err)
	}

	mine, err := svc.List(ctx, "cust-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Plate != "34 ABC 123" {
		t.Fatalf("expected only the caller's vehicle, got %+v", mine)
	}
}
