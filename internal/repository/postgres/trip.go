package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/repository"
)

const tripColumns = `id, trip_id, customer_name, customer_phone, route, start_point, end_point,
	assigned_driver, assigned_vehicle, scheduled_date, scheduled_time, cargo_type, cargo_weight,
	special_instructions, documents, trip_status, payment_status, currency, trip_value,
	advance_payment, balance_payment, current_location, last_update, progress, created_by,
	created_at, updated_at, version`

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q   Querier
	now func() time.Time
}

// NewTripRepository creates a trip repository over a *sql.DB or *sql.Tx.
func NewTripRepository(q Querier) *TripRepository {
	return &TripRepository{q: q, now: time.Now}
}

// List retrieves all trips ordered by id.
func (r *TripRepository) List(ctx context.Context) (_ []*domain.Trip, err error) {
	defer metrics.ObserveStore("postgres", "trips.list")(&err)

	rows, err := r.q.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY id`)
	if err != nil {
		return nil, storeErr("list trips", err)
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, storeErr("scan trip", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list trips", err)
	}

	return trips, nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id int64) (_ *domain.Trip, err error) {
	defer metrics.ObserveStore("postgres", "trips.get")(&err)

	trip, err := scanTrip(r.q.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("get trip", err)
	}

	return trip, nil
}

// Create persists a new trip. The id comes from the table's sequence, so
// it is never reused even after deletes.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (err error) {
	defer metrics.ObserveStore("postgres", "trips.create")(&err)

	var id int64
	if err := r.q.QueryRowContext(ctx, `SELECT nextval(pg_get_serial_sequence('trips', 'id'))`).Scan(&id); err != nil {
		return storeErr("allocate trip id", err)
	}

	now := r.now()
	created := trip.Clone()
	created.ID = id
	created.TripID = domain.FormatTripID(now.Year(), id)
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Version = 1
	created.Tracking = domain.Tracking{
		CurrentLocation: created.StartPoint,
		LastUpdate:      now,
		Progress:        0,
	}

	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`

	_, err = r.q.ExecContext(ctx, query,
		created.ID,
		created.TripID,
		created.CustomerName,
		created.CustomerPhone,
		created.Route,
		created.StartPoint,
		created.EndPoint,
		created.AssignedDriver,
		created.AssignedVehicle,
		created.ScheduledDate,
		created.ScheduledTime,
		created.CargoType,
		created.CargoWeight,
		created.SpecialInstructions,
		pq.Array(documentsOrEmpty(created.Documents)),
		created.TripStatus,
		created.PaymentStatus,
		created.Currency,
		created.TripValue,
		created.AdvancePayment,
		created.BalancePayment,
		created.Tracking.CurrentLocation,
		created.Tracking.LastUpdate,
		created.Tracking.Progress,
		created.CreatedBy,
		created.CreatedAt,
		created.UpdatedAt,
		created.Version,
	)
	if err != nil {
		return storeErr("insert trip", err)
	}

	*trip = *created
	return nil
}

// Update replaces an existing trip if its version is current.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) (err error) {
	defer metrics.ObserveStore("postgres", "trips.update")(&err)

	query := `
		UPDATE trips
		SET customer_name = $1, customer_phone = $2, route = $3, start_point = $4, end_point = $5,
			assigned_driver = $6, assigned_vehicle = $7, scheduled_date = $8, scheduled_time = $9,
			cargo_type = $10, cargo_weight = $11, special_instructions = $12, documents = $13,
			trip_status = $14, payment_status = $15, currency = $16, trip_value = $17,
			advance_payment = $18, balance_payment = $19, current_location = $20, last_update = $21,
			progress = $22, updated_at = $23, version = version + 1
		WHERE id = $24 AND version = $25
	`

	now := r.now()
	result, err := r.q.ExecContext(ctx, query,
		trip.CustomerName,
		trip.CustomerPhone,
		trip.Route,
		trip.StartPoint,
		trip.EndPoint,
		trip.AssignedDriver,
		trip.AssignedVehicle,
		trip.ScheduledDate,
		trip.ScheduledTime,
		trip.CargoType,
		trip.CargoWeight,
		trip.SpecialInstructions,
		pq.Array(documentsOrEmpty(trip.Documents)),
		trip.TripStatus,
		trip.PaymentStatus,
		trip.Currency,
		trip.TripValue,
		trip.AdvancePayment,
		trip.BalancePayment,
		trip.Tracking.CurrentLocation,
		trip.Tracking.LastUpdate,
		trip.Tracking.Progress,
		now,
		trip.ID,
		trip.Version,
	)
	if err != nil {
		return storeErr("update trip", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("update trip", err)
	}

	if rowsAffected == 0 {
		var version int64
		err := r.q.QueryRowContext(ctx, `SELECT version FROM trips WHERE id = $1`, trip.ID).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return storeErr("update trip", err)
		}
		return repository.ErrConflict
	}

	trip.UpdatedAt = now
	trip.Version++
	return nil
}

// Delete removes a trip. Missing ids are ignored.
func (r *TripRepository) Delete(ctx context.Context, id int64) (err error) {
	defer metrics.ObserveStore("postgres", "trips.delete")(&err)

	if _, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id); err != nil {
		return storeErr("delete trip", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var documents []string

	err := row.Scan(
		&trip.ID,
		&trip.TripID,
		&trip.CustomerName,
		&trip.CustomerPhone,
		&trip.Route,
		&trip.StartPoint,
		&trip.EndPoint,
		&trip.AssignedDriver,
		&trip.AssignedVehicle,
		&trip.ScheduledDate,
		&trip.ScheduledTime,
		&trip.CargoType,
		&trip.CargoWeight,
		&trip.SpecialInstructions,
		pq.Array(&documents),
		&trip.TripStatus,
		&trip.PaymentStatus,
		&trip.Currency,
		&trip.TripValue,
		&trip.AdvancePayment,
		&trip.BalancePayment,
		&trip.Tracking.CurrentLocation,
		&trip.Tracking.LastUpdate,
		&trip.Tracking.Progress,
		&trip.CreatedBy,
		&trip.CreatedAt,
		&trip.UpdatedAt,
		&trip.Version,
	)
	if err != nil {
		return nil, err
	}

	trip.Documents = documents
	return &trip, nil
}

func documentsOrEmpty(docs []string) []string {
	if docs == nil {
		return []string{}
	}
	return docs
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repository.ErrStoreUnavailable, err)
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
