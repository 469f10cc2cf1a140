package repository

import (
	"context"

	"fleet/internal/domain"
)

// ReferenceRepository supplies the catalogs used for trip assignment.
type ReferenceRepository interface {
	// ListDrivers retrieves all drivers.
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)

	// ListVehicles retrieves all vehicles.
	ListVehicles(ctx context.Context) ([]*domain.Vehicle, error)

	// ListRoutes retrieves all routes.
	ListRoutes(ctx context.Context) ([]*domain.Route, error)
}
