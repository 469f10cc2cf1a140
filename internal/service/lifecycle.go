package service

import (
	"context"
	"fmt"
	"time"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/repository"
)

// Action is a lifecycle operation requested on a trip.
type Action string

const (
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionSchedule Action = "schedule"
)

type transition struct {
	from []domain.TripStatus
	to   domain.TripStatus
}

var transitions = map[Action]transition{
	ActionStart:    {from: []domain.TripStatus{domain.TripStatusScheduled}, to: domain.TripStatusInProgress},
	ActionPause:    {from: []domain.TripStatus{domain.TripStatusInProgress}, to: domain.TripStatusScheduled},
	ActionComplete: {from: []domain.TripStatus{domain.TripStatusInProgress}, to: domain.TripStatusCompleted},
	ActionCancel:   {from: []domain.TripStatus{domain.TripStatusPending, domain.TripStatusScheduled}, to: domain.TripStatusCancelled},
	ActionSchedule: {from: []domain.TripStatus{domain.TripStatusPending}, to: domain.TripStatusScheduled},
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

// ApplyTransition moves trip through action at time now. On error the trip
// is left untouched.
func ApplyTransition(trip *domain.Trip, action Action, now time.Time) error {
	t, ok := transitions[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if !allowedFrom(t.from, trip.TripStatus) {
		return fmt.Errorf("%w: cannot %s a %s trip", ErrInvalidTransition, action, trip.TripStatus)
	}

	trip.TripStatus = t.to

	switch action {
	case ActionStart:
		if trip.Tracking.CurrentLocation == "" {
			trip.Tracking.CurrentLocation = trip.StartPoint
		}
		trip.Tracking.LastUpdate = now
	case ActionPause:
		trip.Tracking.Progress = 0
		trip.Tracking.LastUpdate = now
	case ActionComplete:
		trip.Tracking.Progress = 100
		trip.Tracking.CurrentLocation = trip.EndPoint
		trip.Tracking.LastUpdate = now
	}

	return nil
}

func allowedFrom(from []domain.TripStatus, status domain.TripStatus) bool {
	for _, s := range from {
		if s == status {
			return true
		}
	}
	return false
}

// LifecycleController owns the trip status state machine.
type LifecycleController struct {
	tripRepo repository.TripRepository
	now      func() time.Time
}

// NewLifecycleController creates a new LifecycleController.
func NewLifecycleController(tripRepo repository.TripRepository) *LifecycleController {
	return &LifecycleController{tripRepo: tripRepo, now: time.Now}
}

// Start moves a scheduled trip to in progress.
func (c *LifecycleController) Start(ctx context.Context, id int64) (*domain.Trip, error) {
	return c.Apply(ctx, id, ActionStart)
}

// PauseOrRevert moves an in-progress trip back to scheduled and resets its progress.
func (c *LifecycleController) PauseOrRevert(ctx context.Context, id int64) (*domain.Trip, error) {
	return c.Apply(ctx, id, ActionPause)
}

// Complete finishes an in-progress trip.
func (c *LifecycleController) Complete(ctx context.Context, id int64) (*domain.Trip, error) {
	return c.Apply(ctx, id, ActionComplete)
}

// Cancel cancels a trip that has not started.
func (c *LifecycleController) Cancel(ctx context.Context, id int64) (*domain.Trip, error) {
	return c.Apply(ctx, id, ActionCancel)
}

// Schedule confirms a pending trip.
func (c *LifecycleController) Schedule(ctx context.Context, id int64) (*domain.Trip, error) {
	return c.Apply(ctx, id, ActionSchedule)
}

// Apply loads the trip, applies action and persists the result. Nothing is
// written when the transition is not allowed.
func (c *LifecycleController) Apply(ctx context.Context, id int64, action Action) (*domain.Trip, error) {
	if id <= 0 {
		return nil, ErrInvalidTripID
	}

	trip, err := c.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := trip.Clone()
	if err := ApplyTransition(next, action, c.now()); err != nil {
		metrics.TripTransitions.WithLabelValues(string(action), "rejected").Inc()
		return nil, err
	}

	if err := c.tripRepo.Update(ctx, next); err != nil {
		metrics.TripTransitions.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}

	metrics.TripTransitions.WithLabelValues(string(action), "ok").Inc()
	return next, nil
}

// UpdateProgressRequest contains the parameters for reporting trip progress.
type UpdateProgressRequest struct {
	Location string
	Progress int
}

// UpdateProgress records the location and progress of an in-progress trip.
// Progress is clamped to 0..100.
func (c *LifecycleController) UpdateProgress(ctx context.Context, id int64, req UpdateProgressRequest) (*domain.Trip, error) {
	if id <= 0 {
		return nil, ErrInvalidTripID
	}

	trip, err := c.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if trip.TripStatus != domain.TripStatusInProgress {
		return nil, fmt.Errorf("%w: cannot track a %s trip", ErrInvalidTransition, trip.TripStatus)
	}

	next := trip.Clone()
	next.Tracking.Progress = clampProgress(req.Progress)
	if req.Location != "" {
		next.Tracking.CurrentLocation = req.Location
	}
	next.Tracking.LastUpdate = c.now()

	if err := c.tripRepo.Update(ctx, next); err != nil {
		return nil, err
	}

	return next, nil
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
