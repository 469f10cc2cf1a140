package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"fleet/internal/domain"
	"fleet/internal/kv"
	"fleet/internal/metrics"
	"fleet/internal/repository"
)

const (
	tripsKey  = "fleet:trips"
	tripsLock = "fleet:trips"

	lockTTL        = 5 * time.Second
	lockAttempts   = 40
	lockRetryDelay = 25 * time.Millisecond
)

// TripRepository is a repository.TripRepository over a kv.Store. The whole
// collection lives under one key so every write is a single Set.
type TripRepository struct {
	store  kv.Store
	locker kv.Locker
	mu     sync.Mutex
	now    func() time.Time
}

// NewTripRepository creates a KV trip repository. locker may be nil, in which
// case writes are only serialised within this process.
func NewTripRepository(store kv.Store, locker kv.Locker) *TripRepository {
	return &TripRepository{store: store, locker: locker, now: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (r *TripRepository) WithClock(now func() time.Time) *TripRepository {
	r.now = now
	return r
}

// List retrieves all trips ordered by id.
func (r *TripRepository) List(ctx context.Context) (_ []*domain.Trip, err error) {
	defer metrics.ObserveStore("kv", "trips.list")(&err)

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	trips := make([]*domain.Trip, 0, len(doc.Trips))
	for _, rec := range doc.Trips {
		trips = append(trips, rec.toDomain())
	}
	return trips, nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id int64) (_ *domain.Trip, err error) {
	defer metrics.ObserveStore("kv", "trips.get")(&err)

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if i := doc.index(id); i >= 0 {
		return doc.Trips[i].toDomain(), nil
	}
	return nil, repository.ErrNotFound
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (err error) {
	defer metrics.ObserveStore("kv", "trips.create")(&err)

	return r.withLock(ctx, func() error {
		doc, err := r.load(ctx)
		if err != nil {
			return err
		}

		id := doc.Seq
		for _, rec := range doc.Trips {
			if rec.ID > id {
				id = rec.ID
			}
		}
		id++

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

		doc.Seq = id
		doc.Trips = append(doc.Trips, toRecord(created))
		if err := r.save(ctx, doc); err != nil {
			return err
		}

		*trip = *created
		return nil
	})
}

// Update replaces an existing trip if its version is current.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) (err error) {
	defer metrics.ObserveStore("kv", "trips.update")(&err)

	return r.withLock(ctx, func() error {
		doc, err := r.load(ctx)
		if err != nil {
			return err
		}

		i := doc.index(trip.ID)
		if i < 0 {
			return repository.ErrNotFound
		}
		stored := doc.Trips[i]
		if stored.Version != trip.Version {
			return repository.ErrConflict
		}

		updated := trip.Clone()
		updated.TripID = stored.TripID
		updated.CreatedAt = stored.CreatedAt
		updated.CreatedBy = stored.CreatedBy
		updated.UpdatedAt = r.now()
		updated.Version = stored.Version + 1

		doc.Trips[i] = toRecord(updated)
		if err := r.save(ctx, doc); err != nil {
			return err
		}

		*trip = *updated
		return nil
	})
}

// Delete removes a trip. Missing ids are ignored.
func (r *TripRepository) Delete(ctx context.Context, id int64) (err error) {
	defer metrics.ObserveStore("kv", "trips.delete")(&err)

	return r.withLock(ctx, func() error {
		doc, err := r.load(ctx)
		if err != nil {
			return err
		}

		i := doc.index(id)
		if i < 0 {
			return nil
		}
		doc.Trips = append(doc.Trips[:i], doc.Trips[i+1:]...)
		return r.save(ctx, doc)
	})
}

func (r *TripRepository) load(ctx context.Context) (*tripDocument, error) {
	raw, ok, err := r.store.Get(ctx, tripsKey)
	if err != nil {
		return nil, fmt.Errorf("read trips: %w: %w", repository.ErrStoreUnavailable, err)
	}

	doc := &tripDocument{}
	if !ok || raw == "" {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("decode trips: %w: %w", repository.ErrStoreUnavailable, err)
	}
	return doc, nil
}

func (r *TripRepository) save(ctx context.Context, doc *tripDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode trips: %w", err)
	}
	if err := r.store.Set(ctx, tripsKey, string(data)); err != nil {
		return fmt.Errorf("write trips: %w: %w", repository.ErrStoreUnavailable, err)
	}
	return nil
}

// withLock runs fn with the in-process mutex held and, if configured, the
// distributed lock too.
func (r *TripRepository) withLock(ctx context.Context, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locker == nil {
		return fn()
	}

	for attempt := 0; ; attempt++ {
		ok, err := r.locker.Acquire(ctx, tripsLock, lockTTL)
		if err != nil {
			return fmt.Errorf("lock trips: %w: %w", repository.ErrStoreUnavailable, err)
		}
		if ok {
			break
		}
		if attempt+1 >= lockAttempts {
			return fmt.Errorf("lock trips: %w: lock held", repository.ErrStoreUnavailable)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	defer func() {
		if err := r.locker.Release(context.WithoutCancel(ctx), tripsLock); err != nil {
			log.Printf("[STORE] release %s lock: %v", tripsLock, err)
		}
	}()

	return fn()
}

func (d *tripDocument) index(id int64) int {
	for i := range d.Trips {
		if d.Trips[i].ID == id {
			return i
		}
	}
	return -1
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
