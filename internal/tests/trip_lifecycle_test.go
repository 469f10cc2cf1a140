package tests

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// ──────────────────────────────────────────────
// 2. LIFECYCLE TRANSITIONS
// ──────────────────────────────────────────────

func TestChangeStatus_StartOnlyFromScheduled(t *testing.T) {
	t.Parallel()

	statuses := []domain.TripStatus{
		domain.TripStatusPending,
		domain.TripStatusScheduled,
		domain.TripStatusInProgress,
		domain.TripStatusCompleted,
		domain.TripStatusCancelled,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(service.TripOptions{})
			before := env.seedTrip(1, status)

			trip, err := env.service.ChangeStatus(context.Background(), 1, service.ActionStart)

			if status == domain.TripStatusScheduled {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if trip.TripStatus != domain.TripStatusInProgress {
					t.Errorf("expected in_progress, got %s", trip.TripStatus)
				}
				return
			}

			if !errors.Is(err, service.ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			if env.tripRepo.UpdateCallCount != 0 {
				t.Error("expected no write on rejected transition")
			}
			if after := env.tripRepo.GetTrip(1); !reflect.DeepEqual(before, after) {
				t.Errorf("record changed:\nbefore %+v\nafter  %+v", before, after)
			}
		})
	}
}

func TestChangeStatus_StartTwiceScenario(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip, err := env.service.ChangeStatus(ctx, created.Trip.ID, service.ActionStart)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	if trip.TripStatus != domain.TripStatusInProgress {
		t.Errorf("expected in_progress, got %s", trip.TripStatus)
	}

	_, err = env.service.ChangeStatus(ctx, created.Trip.ID, service.ActionStart)
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second start, got %v", err)
	}
}

func TestChangeStatus_TransitionTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    domain.TripStatus
		action  service.Action
		want    domain.TripStatus
		allowed bool
	}{
		{domain.TripStatusInProgress, service.ActionPause, domain.TripStatusScheduled, true},
		{domain.TripStatusScheduled, service.ActionPause, "", false},
		{domain.TripStatusInProgress, service.ActionComplete, domain.TripStatusCompleted, true},
		{domain.TripStatusScheduled, service.ActionComplete, "", false},
		{domain.TripStatusPending, service.ActionCancel, domain.TripStatusCancelled, true},
		{domain.TripStatusScheduled, service.ActionCancel, domain.TripStatusCancelled, true},
		{domain.TripStatusInProgress, service.ActionCancel, "", false},
		{domain.TripStatusCompleted, service.ActionCancel, "", false},
		{domain.TripStatusPending, service.ActionSchedule, domain.TripStatusScheduled, true},
		{domain.TripStatusCancelled, service.ActionSchedule, "", false},
		{domain.TripStatusCompleted, service.ActionPause, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"_from_"+string(tt.from), func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(service.TripOptions{})
			env.seedTrip(1, tt.from)

			trip, err := env.service.ChangeStatus(context.Background(), 1, tt.action)
			if !tt.allowed {
				if !errors.Is(err, service.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if got := env.tripRepo.GetTrip(1).TripStatus; got != tt.from {
					t.Errorf("expected status to stay %s, got %s", tt.from, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if trip.TripStatus != tt.want {
				t.Errorf("expected %s, got %s", tt.want, trip.TripStatus)
			}
			if stored := env.tripRepo.GetTrip(1); stored.TripStatus != tt.want {
				t.Errorf("expected stored status %s, got %s", tt.want, stored.TripStatus)
			}
		})
	}
}

func TestChangeStatus_PauseResetsProgress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()
	env.seedTrip(1, domain.TripStatusInProgress)

	if _, err := env.service.UpdateProgress(ctx, 1, service.UpdateProgressRequest{Location: "Lonavala", Progress: 55}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trip, err := env.service.ChangeStatus(ctx, 1, service.ActionPause)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.TripStatus != domain.TripStatusScheduled {
		t.Errorf("expected scheduled, got %s", trip.TripStatus)
	}
	if trip.Tracking.Progress != 0 {
		t.Errorf("expected progress reset to 0, got %d", trip.Tracking.Progress)
	}
}

func TestChangeStatus_CompleteForcesFullProgress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	env.seedTrip(1, domain.TripStatusInProgress)

	trip, err := env.service.ChangeStatus(context.Background(), 1, service.ActionComplete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Tracking.Progress != 100 {
		t.Errorf("expected progress 100, got %d", trip.Tracking.Progress)
	}
	if trip.Tracking.CurrentLocation != trip.EndPoint {
		t.Errorf("expected location %q, got %q", trip.EndPoint, trip.Tracking.CurrentLocation)
	}

	types := env.publisher.Types()
	if len(types) != 1 || types[0] != service.NotificationTripCompleted {
		t.Errorf("expected TRIP_COMPLETED event, got %v", types)
	}
}

func TestChangeStatus_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})

	_, err := env.service.ChangeStatus(context.Background(), 42, service.ActionStart)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChangeStatus_InvalidID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})

	_, err := env.service.ChangeStatus(context.Background(), 0, service.ActionStart)
	if !errors.Is(err, service.ErrInvalidTripID) {
		t.Fatalf("expected ErrInvalidTripID, got %v", err)
	}
}

func TestChangeStatus_UnknownAction(t *testing.T) {
	t.Parallel()

	if _, err := service.ParseAction("teleport"); !errors.Is(err, service.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	env := newTestEnv(service.TripOptions{})
	env.seedTrip(1, domain.TripStatusScheduled)

	_, err := env.service.ChangeStatus(context.Background(), 1, service.Action("teleport"))
	if !errors.Is(err, service.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. TRACKING AND SETTLEMENT
// ──────────────────────────────────────────────

func TestUpdateProgress_ClampsAndRequiresInProgress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()
	env.seedTrip(1, domain.TripStatusInProgress)
	env.seedTrip(2, domain.TripStatusScheduled)

	trip, err := env.service.UpdateProgress(ctx, 1, service.UpdateProgressRequest{Location: "Khopoli", Progress: 140})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Tracking.Progress != 100 {
		t.Errorf("expected clamp to 100, got %d", trip.Tracking.Progress)
	}
	if trip.Tracking.CurrentLocation != "Khopoli" {
		t.Errorf("expected Khopoli, got %q", trip.Tracking.CurrentLocation)
	}

	trip, err = env.service.UpdateProgress(ctx, 1, service.UpdateProgressRequest{Progress: -5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Tracking.Progress != 0 || trip.Tracking.CurrentLocation != "Khopoli" {
		t.Errorf("expected progress 0 at Khopoli, got %d at %q", trip.Tracking.Progress, trip.Tracking.CurrentLocation)
	}

	if _, err := env.service.UpdateProgress(ctx, 2, service.UpdateProgressRequest{Progress: 10}); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for scheduled trip, got %v", err)
	}
}

func TestSettlePayment(t *testing.T) {
	t.Parallel()

	env := newTestEnv(service.TripOptions{})
	ctx := context.Background()

	created, err := env.service.CreateTrip(ctx, validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id := created.Trip.ID

	if _, err := env.service.SettlePayment(ctx, id); !errors.Is(err, service.ErrTripNotCompleted) {
		t.Fatalf("expected ErrTripNotCompleted, got %v", err)
	}

	for _, action := range []service.Action{service.ActionStart, service.ActionComplete} {
		if _, err := env.service.ChangeStatus(ctx, id, action); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}

	// Completion alone never promotes the payment status.
	if got := env.tripRepo.GetTrip(id).PaymentStatus; got != domain.PaymentStatusAdvancePaid {
		t.Errorf("expected advance_paid after completion, got %s", got)
	}

	trip, err := env.service.SettlePayment(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected paid, got %s", trip.PaymentStatus)
	}
	if !trip.BalancePayment.IsZero() || !trip.AdvancePayment.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("expected advance 85000 and balance 0, got %s / %s", trip.AdvancePayment, trip.BalancePayment)
	}

	updates := env.tripRepo.UpdateCallCount
	if _, err := env.service.SettlePayment(ctx, id); err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if env.tripRepo.UpdateCallCount != updates {
		t.Error("settling a paid trip should not write")
	}

	// Edits that leave the amounts alone keep the trip settled.
	renamed := "ABC Industries Pvt Ltd"
	updated, err := env.service.UpdateTrip(ctx, id, service.UpdateTripRequest{CustomerName: &renamed})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Trip.PaymentStatus != domain.PaymentStatusPaid || !updated.Trip.BalancePayment.IsZero() {
		t.Errorf("expected paid with zero balance after rename, got %s / %s", updated.Trip.PaymentStatus, updated.Trip.BalancePayment)
	}

	// Changing an amount reopens the balance.
	advance := "50000"
	updated, err = env.service.UpdateTrip(ctx, id, service.UpdateTripRequest{AdvancePayment: &advance})
	if err != nil {
		t.Fatalf("amount edit: %v", err)
	}
	if updated.Trip.PaymentStatus != domain.PaymentStatusAdvancePaid {
		t.Errorf("expected advance_paid after amount edit, got %s", updated.Trip.PaymentStatus)
	}
	if !updated.Trip.BalancePayment.Equal(decimal.NewFromInt(35000)) {
		t.Errorf("expected balance 35000, got %s", updated.Trip.BalancePayment)
	}
}
