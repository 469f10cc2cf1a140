package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet/internal/seed"
)

// InitSchema creates the trip and reference tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: db is nil")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id                   BIGSERIAL PRIMARY KEY,
			trip_id              TEXT NOT NULL UNIQUE,
			customer_name        TEXT NOT NULL,
			customer_phone       TEXT NOT NULL,
			route                TEXT NOT NULL DEFAULT '',
			start_point          TEXT NOT NULL DEFAULT '',
			end_point            TEXT NOT NULL DEFAULT '',
			assigned_driver      TEXT NOT NULL DEFAULT '',
			assigned_vehicle     TEXT NOT NULL DEFAULT '',
			scheduled_date       TEXT NOT NULL DEFAULT '',
			scheduled_time       TEXT NOT NULL DEFAULT '',
			cargo_type           TEXT NOT NULL DEFAULT '',
			cargo_weight         TEXT NOT NULL DEFAULT '',
			special_instructions TEXT NOT NULL DEFAULT '',
			documents            TEXT[] NOT NULL DEFAULT '{}',
			trip_status          TEXT NOT NULL CHECK (trip_status IN ('pending', 'scheduled', 'in_progress', 'completed', 'cancelled')),
			payment_status       TEXT NOT NULL CHECK (payment_status IN ('pending', 'advance_paid', 'paid')),
			currency             TEXT NOT NULL,
			trip_value           NUMERIC(18, 2) NOT NULL,
			advance_payment      NUMERIC(18, 2) NOT NULL,
			balance_payment      NUMERIC(18, 2) NOT NULL,
			current_location     TEXT NOT NULL DEFAULT '',
			last_update          TIMESTAMPTZ NOT NULL,
			progress             INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
			created_by           TEXT NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ NOT NULL,
			updated_at           TIMESTAMPTZ NOT NULL,
			version              BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_status ON trips (trip_status)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_scheduled_date ON trips (scheduled_date)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id      TEXT PRIMARY KEY,
			name    TEXT NOT NULL,
			phone   TEXT NOT NULL DEFAULT '',
			license TEXT NOT NULL DEFAULT '',
			status  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id       TEXT PRIMARY KEY,
			number   TEXT NOT NULL,
			type     TEXT NOT NULL DEFAULT '',
			capacity TEXT NOT NULL DEFAULT '',
			status   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS routes (
			name           TEXT PRIMARY KEY,
			distance       TEXT NOT NULL DEFAULT '',
			estimated_time TEXT NOT NULL DEFAULT ''
		)`,
	}

	return inTx(ctx, db, "init schema", func(tx Querier) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
			}
		}
		return nil
	})
}

// SeedCatalog inserts the catalog's reference data, leaving existing rows untouched.
func SeedCatalog(ctx context.Context, db *sql.DB, c *seed.Catalog) error {
	return inTx(ctx, db, "seed catalog", func(tx Querier) error {
		for _, d := range c.Drivers {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO drivers (id, name, phone, license, status) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
				d.ID, d.Name, d.Phone, d.License, d.Status)
			if err != nil {
				return fmt.Errorf("seed catalog: insert driver %s: %w", d.ID, err)
			}
		}

		for _, v := range c.Vehicles {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO vehicles (id, number, type, capacity, status) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
				v.ID, v.Number, v.Type, v.Capacity, v.Status)
			if err != nil {
				return fmt.Errorf("seed catalog: insert vehicle %s: %w", v.ID, err)
			}
		}

		for _, r := range c.Routes {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO routes (name, distance, estimated_time) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`,
				r.Name, r.Distance, r.EstimatedTime)
			if err != nil {
				return fmt.Errorf("seed catalog: insert route %s: %w", r.Name, err)
			}
		}
		return nil
	})
}
