package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// 4. LISTING AND STATISTICS
// ──────────────────────────────────────────────

func TestListTrips_FilterConjunction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	seed := []struct {
		customer string
		driver   string
		status   domain.TripStatus
		date     string
	}{
		{"Kumar Traders", domain.NotAssigned, domain.TripStatusScheduled, "2025-03-20"},
		{"ABC Industries", "Rajesh Kumar", domain.TripStatusScheduled, "2025-03-21"},
		{"ABC Industries", "Rajesh Kumar", domain.TripStatusInProgress, "2025-03-20"},
		{"XYZ Logistics", "Amit Singh", domain.TripStatusScheduled, "2025-03-20"},
	}
	for i, s := range seed {
		trip := env.seedTrip(int64(i+1), s.status)
		trip.CustomerName = s.customer
		trip.AssignedDriver = s.driver
		trip.ScheduledDate = s.date
		env.tripRepo.AddTrip(trip)
	}

	trips, err := env.service.ListTrips(ctx, service.TripFilter{Search: "kumar", Status: domain.TripStatusScheduled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 2 || trips[0].ID != 1 || trips[1].ID != 2 {
		t.Fatalf("expected trips 1 and 2, got %v", tripIDs(trips))
	}

	trips, err = env.service.ListTrips(ctx, service.TripFilter{Search: "KUMAR", Status: domain.TripStatusScheduled, Date: "2025-03-20"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != 1 {
		t.Fatalf("expected trip 1, got %v", tripIDs(trips))
	}

	trips, err = env.service.ListTrips(ctx, service.TripFilter{Search: "trip-2025-004"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != 4 {
		t.Fatalf("expected trip 4 by trip id, got %v", tripIDs(trips))
	}

	trips, err = env.service.ListTrips(ctx, service.TripFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 4 {
		t.Fatalf("expected all 4 trips, got %d", len(trips))
	}
}

func TestListTrips_SearchSkipsUnassignedPlaceholder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	env.seedTrip(1, domain.TripStatusScheduled)
	assigned := env.seedTrip(2, domain.TripStatusScheduled)
	assigned.AssignedDriver = "Rajesh Kumar"
	env.tripRepo.AddTrip(assigned)

	for _, search := range []string{"assigned", "Not", domain.NotAssigned} {
		trips, err := env.service.ListTrips(ctx, service.TripFilter{Search: search})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(trips) != 0 {
			t.Errorf("search %q: expected no trips, got %v", search, tripIDs(trips))
		}
	}

	trips, err := env.service.ListTrips(ctx, service.TripFilter{Search: "rajesh"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != 2 {
		t.Fatalf("expected trip 2 by driver, got %v", tripIDs(trips))
	}
}

func TestComputeStats_Scenario(t *testing.T) {
	t.Parallel()

	trips := []*domain.Trip{
		{TripStatus: domain.TripStatusScheduled, TripValue: decimal.NewFromInt(10000)},
		{TripStatus: domain.TripStatusInProgress, TripValue: decimal.NewFromInt(20000)},
		{TripStatus: domain.TripStatusCompleted, TripValue: decimal.NewFromInt(30000)},
	}

	stats := service.ComputeStats(trips)

	if stats.Scheduled != 1 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.Pending != 0 || stats.Cancelled != 0 || stats.Total != 3 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if !stats.TotalRevenue.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("expected revenue 60000, got %s", stats.TotalRevenue)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	t.Parallel()

	stats := service.ComputeStats(nil)
	if stats.Total != 0 || !stats.TotalRevenue.IsZero() {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

// ──────────────────────────────────────────────
// 5. UPDATE AND DELETE
// ──────────────────────────────────────────────

func TestUpdateTrip_RecomputesSettlement(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value := "100000"
	advance := "0"
	result, err := env.service.UpdateTrip(ctx, created.Trip.ID, service.UpdateTripRequest{
		TripValue:      &value,
		AdvancePayment: &advance,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip := result.Trip
	if !trip.BalancePayment.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected balance 100000, got %s", trip.BalancePayment)
	}
	if trip.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("expected pending, got %s", trip.PaymentStatus)
	}
	if trip.TripID != created.Trip.TripID || trip.CustomerName != created.Trip.CustomerName {
		t.Error("unchanged fields must be kept")
	}
	if trip.Version != 2 {
		t.Errorf("expected version 2, got %d", trip.Version)
	}
}

func TestUpdateTrip_RouteChangeRederivesPoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	route := "Delhi-Jaipur"
	result, err := env.service.UpdateTrip(ctx, created.Trip.ID, service.UpdateTripRequest{Route: &route})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Trip.StartPoint != "Delhi, Delhi" || result.Trip.EndPoint != "Jaipur, Rajasthan" {
		t.Errorf("expected Delhi/Jaipur points, got %q / %q", result.Trip.StartPoint, result.Trip.EndPoint)
	}
}

func TestUpdateTrip_ValidatesMergedValues(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	empty := ""
	advance := "99999999"
	_, err = env.service.UpdateTrip(ctx, created.Trip.ID, service.UpdateTripRequest{
		CustomerName:   &empty,
		AdvancePayment: &advance,
	})

	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(validationErr.Fields) != 2 || validationErr.Fields[0] != "customerName" || validationErr.Fields[1] != "advancePayment" {
		t.Errorf("expected [customerName advancePayment], got %v", validationErr.Fields)
	}
	if env.tripRepo.UpdateCallCount != 0 {
		t.Error("expected no write on validation failure")
	}
}

func TestUpdateTrip_StaleVersionConflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "First Editor"
	version := created.Trip.Version
	if _, err := env.service.UpdateTrip(ctx, created.Trip.ID, service.UpdateTripRequest{CustomerName: &name, ExpectedVersion: &version}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	name = "Second Editor"
	_, err = env.service.UpdateTrip(ctx, created.Trip.ID, service.UpdateTripRequest{CustomerName: &name, ExpectedVersion: &version})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got := env.tripRepo.GetTrip(created.Trip.ID).CustomerName; got != "First Editor" {
		t.Errorf("expected first edit to survive, got %q", got)
	}
}

func TestUpdateTrip_StatusEdits(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()
	env.seedTrip(1, domain.TripStatusScheduled)
	env.seedTrip(2, domain.TripStatusInProgress)

	value := "5000"
	pending := domain.TripStatusPending
	result, err := env.service.UpdateTrip(ctx, 1, service.UpdateTripRequest{TripStatus: &pending, TripValue: &value})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Trip.TripStatus != domain.TripStatusPending {
		t.Errorf("expected pending, got %s", result.Trip.TripStatus)
	}

	completed := domain.TripStatusCompleted
	_, err = env.service.UpdateTrip(ctx, 1, service.UpdateTripRequest{TripStatus: &completed, TripValue: &value})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition editing to completed, got %v", err)
	}

	scheduled := domain.TripStatusScheduled
	_, err = env.service.UpdateTrip(ctx, 2, service.UpdateTripRequest{TripStatus: &scheduled, TripValue: &value})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition editing an in-progress trip, got %v", err)
	}
}

func TestUpdateTrip_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})

	name := "Nobody"
	_, err := env.service.UpdateTrip(context.Background(), 99, service.UpdateTripRequest{CustomerName: &name})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTrip_Idempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		created, err := env.service.CreateTrip(ctx, validRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, created.Trip.ID)
	}

	if err := env.service.DeleteTrip(ctx, ids[1]); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := env.service.DeleteTrip(ctx, ids[1]); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	trips, err := env.service.ListTrips(ctx, service.TripFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 2 || trips[0].ID != ids[0] || trips[1].ID != ids[2] {
		t.Errorf("expected remaining trips %d and %d, got %v", ids[0], ids[2], tripIDs(trips))
	}

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Trip.ID != ids[2]+1 {
		t.Errorf("expected next id %d, got %d", ids[2]+1, created.Trip.ID)
	}
}

func tripIDs(trips []*domain.Trip) []int64 {
	ids := make([]int64, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}
	return ids
}
