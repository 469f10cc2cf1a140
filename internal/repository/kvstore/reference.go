package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"fleet/internal/domain"
	"fleet/internal/kv"
	"fleet/internal/metrics"
	"fleet/internal/repository"
	"fleet/internal/seed"
)

const (
	driversKey  = "fleet:drivers"
	vehiclesKey = "fleet:vehicles"
	routesKey   = "fleet:routes"
)

// ReferenceRepository is a repository.ReferenceRepository over a kv.Store.
type ReferenceRepository struct {
	store kv.Store
}

// NewReferenceRepository creates a KV reference repository.
func NewReferenceRepository(store kv.Store) *ReferenceRepository {
	return &ReferenceRepository{store: store}
}

// ListDrivers retrieves all drivers.
func (r *ReferenceRepository) ListDrivers(ctx context.Context) (_ []*domain.Driver, err error) {
	defer metrics.ObserveStore("kv", "drivers.list")(&err)

	var drivers []*domain.Driver
	if err := r.read(ctx, driversKey, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// ListVehicles retrieves all vehicles.
func (r *ReferenceRepository) ListVehicles(ctx context.Context) (_ []*domain.Vehicle, err error) {
	defer metrics.ObserveStore("kv", "vehicles.list")(&err)

	var vehicles []*domain.Vehicle
	if err := r.read(ctx, vehiclesKey, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ListRoutes retrieves all routes.
func (r *ReferenceRepository) ListRoutes(ctx context.Context) (_ []*domain.Route, err error) {
	defer metrics.ObserveStore("kv", "routes.list")(&err)

	var routes []*domain.Route
	if err := r.read(ctx, routesKey, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Seed writes the catalog, replacing any existing reference data.
func (r *ReferenceRepository) Seed(ctx context.Context, c *seed.Catalog) error {
	if err := r.write(ctx, driversKey, c.Drivers); err != nil {
		return err
	}
	if err := r.write(ctx, vehiclesKey, c.Vehicles); err != nil {
		return err
	}
	return r.write(ctx, routesKey, c.Routes)
}

// SeedIfEmpty seeds the catalog only when no routes are stored yet.
// Returns true if the catalog was written.
func (r *ReferenceRepository) SeedIfEmpty(ctx context.Context, c *seed.Catalog) (bool, error) {
	_, ok, err := r.store.Get(ctx, routesKey)
	if err != nil {
		return false, fmt.Errorf("read routes: %w: %w", repository.ErrStoreUnavailable, err)
	}
	if ok {
		return false, nil
	}
	if err := r.Seed(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

func (r *ReferenceRepository) read(ctx context.Context, key string, out any) error {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w: %w", key, repository.ErrStoreUnavailable, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", key, repository.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *ReferenceRepository) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w: %w", key, repository.ErrStoreUnavailable, err)
	}
	return nil
}

// Ensure ReferenceRepository implements repository.ReferenceRepository.
var _ repository.ReferenceRepository = (*ReferenceRepository)(nil)
