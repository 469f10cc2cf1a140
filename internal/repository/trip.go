package repository

import (
	"context"

	"fleet/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// List retrieves all trips ordered by id.
	List(ctx context.Context) ([]*domain.Trip, error)

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)

	// Create assigns the next id, derives the display trip id, initialises
	// tracking and persists the trip. The trip is updated in place.
	Create(ctx context.Context, trip *domain.Trip) error

	// Update replaces an existing trip. The trip's Version must match the
	// stored one; on success Version and UpdatedAt are advanced in place.
	Update(ctx context.Context, trip *domain.Trip) error

	// Delete removes a trip. Deleting a missing trip is not an error.
	Delete(ctx context.Context, id int64) error
}
