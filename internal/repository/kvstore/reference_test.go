package kvstore

import (
	"context"
	"testing"

	"fleet/internal/domain"
	"fleet/internal/kv"
	"fleet/internal/seed"
)

func TestReferenceRepository_EmptyStore(t *testing.T) {
	t.Parallel()

	repo := NewReferenceRepository(kv.NewMemory())
	drivers, err := repo.ListDrivers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 0 {
		t.Errorf("expected no drivers, got %d", len(drivers))
	}
}

func TestReferenceRepository_SeedIfEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewReferenceRepository(kv.NewMemory())
	catalog := &seed.Catalog{
		Drivers:  []*domain.Driver{{ID: "D1", Name: "Rajesh Kumar", Status: domain.ResourceStatusAvailable}},
		Vehicles: []*domain.Vehicle{{ID: "V1", Number: "MH-12-AB-1234", Status: domain.ResourceStatusMaintenance}},
		Routes:   []*domain.Route{{Name: "Mumbai-Pune", Distance: "150 km"}},
	}

	seeded, err := repo.SeedIfEmpty(ctx, catalog)
	if err != nil || !seeded {
		t.Fatalf("expected first seed to write, got seeded=%v err=%v", seeded, err)
	}

	seeded, err = repo.SeedIfEmpty(ctx, &seed.Catalog{Routes: []*domain.Route{{Name: "Other"}}})
	if err != nil || seeded {
		t.Fatalf("expected second seed to be skipped, got seeded=%v err=%v", seeded, err)
	}

	routes, _ := repo.ListRoutes(ctx)
	if len(routes) != 1 || routes[0].Name != "Mumbai-Pune" {
		t.Fatalf("unexpected routes: %+v", routes)
	}
	vehicles, _ := repo.ListVehicles(ctx)
	if len(vehicles) != 1 || vehicles[0].Status != domain.ResourceStatusMaintenance {
		t.Fatalf("unexpected vehicles: %+v", vehicles)
	}
	drivers, _ := repo.ListDrivers(ctx)
	if len(drivers) != 1 || drivers[0].Name != "Rajesh Kumar" {
		t.Fatalf("unexpected drivers: %+v", drivers)
	}
}
