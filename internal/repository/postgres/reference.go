package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/repository"
)

// ReferenceRepository is a PostgreSQL implementation of repository.ReferenceRepository.
type ReferenceRepository struct {
	q Querier
}

// NewReferenceRepository creates a new PostgreSQL reference repository.
func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{q: db}
}

// ListDrivers retrieves all drivers.
func (r *ReferenceRepository) ListDrivers(ctx context.Context) (_ []*domain.Driver, err error) {
	defer metrics.ObserveStore("postgres", "drivers.list")(&err)

	rows, err := r.q.QueryContext(ctx, `SELECT id, name, phone, license, status FROM drivers ORDER BY id`)
	if err != nil {
		return nil, storeErr("list drivers", err)
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.License, &d.Status); err != nil {
			return nil, storeErr("scan driver", err)
		}
		drivers = append(drivers, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list drivers", err)
	}
	return drivers, nil
}

// ListVehicles retrieves all vehicles.
func (r *ReferenceRepository) ListVehicles(ctx context.Context) (_ []*domain.Vehicle, err error) {
	defer metrics.ObserveStore("postgres", "vehicles.list")(&err)

	rows, err := r.q.QueryContext(ctx, `SELECT id, number, type, capacity, status FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, storeErr("list vehicles", err)
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Number, &v.Type, &v.Capacity, &v.Status); err != nil {
			return nil, storeErr("scan vehicle", err)
		}
		vehicles = append(vehicles, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list vehicles", err)
	}
	return vehicles, nil
}

// ListRoutes retrieves all routes.
func (r *ReferenceRepository) ListRoutes(ctx context.Context) (_ []*domain.Route, err error) {
	defer metrics.ObserveStore("postgres", "routes.list")(&err)

	rows, err := r.q.QueryContext(ctx, `SELECT name, distance, estimated_time FROM routes ORDER BY name`)
	if err != nil {
		return nil, storeErr("list routes", err)
	}
	defer rows.Close()

	var routes []*domain.Route
	for rows.Next() {
		var route domain.Route
		if err := rows.Scan(&route.Name, &route.Distance, &route.EstimatedTime); err != nil {
			return nil, storeErr("scan route", err)
		}
		routes = append(routes, &route)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list routes", err)
	}
	return routes, nil
}

// Ensure ReferenceRepository implements repository.ReferenceRepository.
var _ repository.ReferenceRepository = (*ReferenceRepository)(nil)
