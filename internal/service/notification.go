package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTripCreated   NotificationType = "TRIP_CREATED"
	NotificationTripUpdated   NotificationType = "TRIP_UPDATED"
	NotificationTripDeleted   NotificationType = "TRIP_DELETED"
	NotificationTripScheduled NotificationType = "TRIP_SCHEDULED"
	NotificationTripStarted   NotificationType = "TRIP_STARTED"
	NotificationTripPaused    NotificationType = "TRIP_PAUSED"
	NotificationTripCompleted NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled NotificationType = "TRIP_CANCELLED"
	NotificationTripSettled   NotificationType = "TRIP_SETTLED"
	NotificationAssignment    NotificationType = "ASSIGNMENT_WARNING"
)

var actionNotifications = map[Action]NotificationType{
	ActionStart:    NotificationTripStarted,
	ActionPause:    NotificationTripPaused,
	ActionComplete: NotificationTripCompleted,
	ActionCancel:   NotificationTripCancelled,
	ActionSchedule: NotificationTripScheduled,
}

// Notification represents a trip event.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	TripID    string           `json:"tripId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// EventPublisher fans trip events out to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, v any) error
}

// NotificationService handles notification delivery.
type NotificationService struct {
	publisher EventPublisher
}

// NewNotificationService creates a new NotificationService. publisher may be nil.
func NewNotificationService(publisher EventPublisher) *NotificationService {
	return &NotificationService{publisher: publisher}
}

// NotifyTripCreated announces a new trip.
func (s *NotificationService) NotifyTripCreated(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:    NotificationTripCreated,
		TripID:  trip.TripID,
		Title:   "Trip Created",
		Message: fmt.Sprintf("Trip %s for %s on %s %s", trip.TripID, trip.CustomerName, trip.ScheduledDate, trip.ScheduledTime),
		Data: map[string]any{
			"route":  trip.Route,
			"driver": trip.AssignedDriver,
			"status": trip.TripStatus,
		},
	})
}

// NotifyTripUpdated announces an edited trip.
func (s *NotificationService) NotifyTripUpdated(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:    NotificationTripUpdated,
		TripID:  trip.TripID,
		Title:   "Trip Updated",
		Message: fmt.Sprintf("Trip %s was updated (version %d)", trip.TripID, trip.Version),
	})
}

// NotifyTripDeleted announces a removed trip.
func (s *NotificationService) NotifyTripDeleted(ctx context.Context, id int64) error {
	return s.send(ctx, Notification{
		Type:    NotificationTripDeleted,
		Title:   "Trip Deleted",
		Message: fmt.Sprintf("Trip %d was deleted", id),
		Data:    map[string]any{"id": id},
	})
}

// NotifyStatusChanged announces a lifecycle transition.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, trip *domain.Trip, action Action) error {
	notificationType, ok := actionNotifications[action]
	if !ok {
		return nil
	}
	return s.send(ctx, Notification{
		Type:    notificationType,
		TripID:  trip.TripID,
		Title:   "Trip Status Changed",
		Message: fmt.Sprintf("Trip %s is now %s", trip.TripID, trip.TripStatus),
		Data: map[string]any{
			"status":   trip.TripStatus,
			"progress": trip.Tracking.Progress,
		},
	})
}

// NotifyTripSettled announces a fully paid trip.
func (s *NotificationService) NotifyTripSettled(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:    NotificationTripSettled,
		TripID:  trip.TripID,
		Title:   "Payment Settled",
		Message: fmt.Sprintf("Trip %s settled: %s %s", trip.TripID, trip.Currency, trip.TripValue.StringFixed(2)),
	})
}

// NotifyAssignmentWarning reports an advisory assignment problem.
func (s *NotificationService) NotifyAssignmentWarning(ctx context.Context, trip *domain.Trip, check AssignmentCheck) error {
	if check.OK() {
		return nil
	}
	return s.send(ctx, Notification{
		Type:    NotificationAssignment,
		TripID:  trip.TripID,
		Title:   "Assignment Warning",
		Message: fmt.Sprintf("Trip %s has an unavailable assignment", trip.TripID),
		Data:    map[string]any{"warnings": check.Warnings},
	})
}

// send logs the notification and publishes it when a publisher is configured.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	notification.ID = uuid.New().String()
	notification.CreatedAt = time.Now()

	log.Printf("[NOTIFICATION] Type=%s, Trip=%s, Title=%s, Message=%s",
		notification.Type, notification.TripID, notification.Title, notification.Message)

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, notification); err != nil {
		return fmt.Errorf("publish %s: %w", notification.Type, err)
	}
	return nil
}
