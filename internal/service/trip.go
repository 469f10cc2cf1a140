package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TripOptions configures the trip façade.
type TripOptions struct {
	// StrictAssignment turns an unavailable driver or vehicle into a validation failure.
	StrictAssignment bool
	Currency         string
	CreatedBy        string
}

// TripService is the entry point for trip scheduling use cases.
type TripService struct {
	tripRepo            repository.TripRepository
	referenceRepo       repository.ReferenceRepository
	lifecycle           *LifecycleController
	resolver            *AssignmentResolver
	notificationService *NotificationService
	opts                TripOptions
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	referenceRepo repository.ReferenceRepository,
	lifecycle *LifecycleController,
	resolver *AssignmentResolver,
	notificationService *NotificationService,
	opts TripOptions,
) *TripService {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &TripService{
		tripRepo:            tripRepo,
		referenceRepo:       referenceRepo,
		lifecycle:           lifecycle,
		resolver:            resolver,
		notificationService: notificationService,
		opts:                opts,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
// Amounts are display strings parsed with ParseAmount.
type CreateTripRequest struct {
	CustomerName        string
	CustomerPhone       string
	Route               string
	StartPoint          string
	EndPoint            string
	AssignedDriver      string
	AssignedVehicle     string
	ScheduledDate       string
	ScheduledTime       string
	CargoType           string
	CargoWeight         string
	SpecialInstructions string
	Documents           []string
	TripStatus          domain.TripStatus
	TripValue           string
	AdvancePayment      string
	Currency            string
	CreatedBy           string
}

// CreateTripResponse contains the created trip and its assignment check.
type CreateTripResponse struct {
	Trip       *domain.Trip
	Assignment AssignmentCheck
}

// CreateTrip validates the request and stores a new trip.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*CreateTripResponse, error) {
	trip := &domain.Trip{
		CustomerName:        strings.TrimSpace(req.CustomerName),
		CustomerPhone:       strings.TrimSpace(req.CustomerPhone),
		Route:               strings.TrimSpace(req.Route),
		StartPoint:          strings.TrimSpace(req.StartPoint),
		EndPoint:            strings.TrimSpace(req.EndPoint),
		AssignedDriver:      orNotAssigned(req.AssignedDriver),
		AssignedVehicle:     orNotAssigned(req.AssignedVehicle),
		ScheduledDate:       strings.TrimSpace(req.ScheduledDate),
		ScheduledTime:       strings.TrimSpace(req.ScheduledTime),
		CargoType:           strings.TrimSpace(req.CargoType),
		CargoWeight:         strings.TrimSpace(req.CargoWeight),
		SpecialInstructions: req.SpecialInstructions,
		Documents:           req.Documents,
		TripStatus:          req.TripStatus,
		Currency:            firstNonEmpty(req.Currency, s.opts.Currency),
		CreatedBy:           firstNonEmpty(req.CreatedBy, s.opts.CreatedBy),
	}
	if trip.TripStatus == "" {
		trip.TripStatus = domain.TripStatusScheduled
	}

	s.prefillPoints(trip)

	var fe fieldErrors
	if trip.TripStatus != domain.TripStatusPending && trip.TripStatus != domain.TripStatusScheduled {
		fe.add("tripStatus")
	}

	check, err := s.validate(ctx, trip, req.TripValue, req.AdvancePayment, &fe)
	if err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	log.Printf("[TRIP] Created %s id=%d status=%s value=%s", trip.TripID, trip.ID, trip.TripStatus, trip.TripValue)

	if s.notificationService != nil {
		s.notify(s.notificationService.NotifyTripCreated(ctx, trip))
		s.notify(s.notificationService.NotifyAssignmentWarning(ctx, trip, check))
	}

	return &CreateTripResponse{Trip: trip, Assignment: check}, nil
}

// UpdateTripRequest contains the fields to change on a trip. Nil fields are
// left as stored. ExpectedVersion, when set, must match the stored version.
type UpdateTripRequest struct {
	CustomerName        *string
	CustomerPhone       *string
	Route               *string
	StartPoint          *string
	EndPoint            *string
	AssignedDriver      *string
	AssignedVehicle     *string
	ScheduledDate       *string
	ScheduledTime       *string
	CargoType           *string
	CargoWeight         *string
	SpecialInstructions *string
	Documents           []string
	TripStatus          *domain.TripStatus
	TripValue           *string
	AdvancePayment      *string
	ExpectedVersion     *int64
}

// UpdateTripResponse contains the updated trip and its assignment check.
type UpdateTripResponse struct {
	Trip       *domain.Trip
	Assignment AssignmentCheck
}

// UpdateTrip merges the request onto the stored trip, validates the result
// and stores it. Status may only move between pending and scheduled here.
func (s *TripService) UpdateTrip(ctx context.Context, id int64, req UpdateTripRequest) (*UpdateTripResponse, error) {
	if id <= 0 {
		return nil, ErrInvalidTripID
	}

	existing, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	trip := existing.Clone()
	mergeString(&trip.CustomerName, req.CustomerName)
	mergeString(&trip.CustomerPhone, req.CustomerPhone)
	mergeString(&trip.ScheduledDate, req.ScheduledDate)
	mergeString(&trip.ScheduledTime, req.ScheduledTime)
	mergeString(&trip.CargoType, req.CargoType)
	mergeString(&trip.CargoWeight, req.CargoWeight)
	if req.SpecialInstructions != nil {
		trip.SpecialInstructions = *req.SpecialInstructions
	}
	if req.Documents != nil {
		trip.Documents = append([]string(nil), req.Documents...)
	}
	if req.AssignedDriver != nil {
		trip.AssignedDriver = orNotAssigned(*req.AssignedDriver)
	}
	if req.AssignedVehicle != nil {
		trip.AssignedVehicle = orNotAssigned(*req.AssignedVehicle)
	}

	if req.Route != nil && strings.TrimSpace(*req.Route) != existing.Route {
		trip.Route = strings.TrimSpace(*req.Route)
		// Points follow the new route unless given explicitly.
		if req.StartPoint == nil {
			trip.StartPoint = ""
		}
		if req.EndPoint == nil {
			trip.EndPoint = ""
		}
	}
	mergeString(&trip.StartPoint, req.StartPoint)
	mergeString(&trip.EndPoint, req.EndPoint)
	s.prefillPoints(trip)

	if req.TripStatus != nil && *req.TripStatus != existing.TripStatus {
		if !editableStatus(existing.TripStatus) || !editableStatus(*req.TripStatus) {
			return nil, fmt.Errorf("%w: cannot edit status from %s to %s", ErrInvalidTransition, existing.TripStatus, *req.TripStatus)
		}
		trip.TripStatus = *req.TripStatus
		trip.Tracking.Progress = 0
	}

	valueInput := existing.TripValue.String()
	if req.TripValue != nil {
		valueInput = *req.TripValue
	}
	advanceInput := existing.AdvancePayment.String()
	if req.AdvancePayment != nil {
		advanceInput = *req.AdvancePayment
	}

	var fe fieldErrors
	check, err := s.validate(ctx, trip, valueInput, advanceInput, &fe)
	if err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	// A settled trip stays paid while its amounts are unchanged.
	if existing.PaymentStatus == domain.PaymentStatusPaid &&
		trip.TripValue.Equal(existing.TripValue) && trip.AdvancePayment.Equal(existing.AdvancePayment) {
		trip.PaymentStatus = domain.PaymentStatusPaid
	}

	if req.ExpectedVersion != nil {
		trip.Version = *req.ExpectedVersion
	}

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		s.notify(s.notificationService.NotifyTripUpdated(ctx, trip))
		s.notify(s.notificationService.NotifyAssignmentWarning(ctx, trip, check))
	}

	return &UpdateTripResponse{Trip: trip, Assignment: check}, nil
}

// DeleteTrip removes a trip. Deleting a missing trip succeeds.
func (s *TripService) DeleteTrip(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidTripID
	}

	if err := s.tripRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.notificationService != nil {
		s.notify(s.notificationService.NotifyTripDeleted(ctx, id))
	}

	return nil
}

// ChangeStatus applies a lifecycle action to a trip.
func (s *TripService) ChangeStatus(ctx context.Context, id int64, action Action) (*domain.Trip, error) {
	trip, err := s.lifecycle.Apply(ctx, id, action)
	if err != nil {
		return nil, err
	}

	log.Printf("[TRIP] %s %s -> %s", action, trip.TripID, trip.TripStatus)

	if s.notificationService != nil {
		s.notify(s.notificationService.NotifyStatusChanged(ctx, trip, action))
	}

	return trip, nil
}

// UpdateProgress records tracking for an in-progress trip.
func (s *TripService) UpdateProgress(ctx context.Context, id int64, req UpdateProgressRequest) (*domain.Trip, error) {
	return s.lifecycle.UpdateProgress(ctx, id, req)
}

// SettlePayment marks a completed trip as fully paid.
func (s *TripService) SettlePayment(ctx context.Context, id int64) (*domain.Trip, error) {
	if id <= 0 {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if trip.TripStatus != domain.TripStatusCompleted {
		return nil, ErrTripNotCompleted
	}
	if trip.PaymentStatus == domain.PaymentStatusPaid {
		return trip, nil
	}

	next := trip.Clone()
	next.AdvancePayment = next.TripValue
	next.BalancePayment = decimal.Zero
	next.PaymentStatus = domain.PaymentStatusPaid

	if err := s.tripRepo.Update(ctx, next); err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		s.notify(s.notificationService.NotifyTripSettled(ctx, next))
	}

	return next, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, id int64) (*domain.Trip, error) {
	if id <= 0 {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, id)
}

// TripFilter narrows ListTrips. Empty fields match everything; all set
// fields must match.
type TripFilter struct {
	// Search is matched case-insensitively against customer name, trip id and driver.
	Search string
	Status domain.TripStatus
	Date   string
}

// ListTrips retrieves the trips matching filter.
func (s *TripService) ListTrips(ctx context.Context, filter TripFilter) ([]*domain.Trip, error) {
	trips, err := s.tripRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]*domain.Trip, 0, len(trips))
	for _, trip := range trips {
		if search != "" && !matchesSearch(trip, search) {
			continue
		}
		if filter.Status != "" && trip.TripStatus != filter.Status {
			continue
		}
		if filter.Date != "" && trip.ScheduledDate != filter.Date {
			continue
		}
		matched = append(matched, trip)
	}

	return matched, nil
}

// matchesSearch reports whether the lowercased search text occurs in the
// customer name, trip id or assigned driver. The NotAssigned placeholder is
// not a driver name and never matches.
func matchesSearch(trip *domain.Trip, search string) bool {
	if strings.Contains(strings.ToLower(trip.CustomerName), search) ||
		strings.Contains(strings.ToLower(trip.TripID), search) {
		return true
	}
	return trip.AssignedDriver != domain.NotAssigned &&
		strings.Contains(strings.ToLower(trip.AssignedDriver), search)
}

// TripStats summarises a set of trips.
type TripStats struct {
	Scheduled    int             `json:"scheduled"`
	InProgress   int             `json:"inProgress"`
	Completed    int             `json:"completed"`
	Pending      int             `json:"pending"`
	Cancelled    int             `json:"cancelled"`
	Total        int             `json:"total"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// ComputeStats counts trips per status and sums their values.
func ComputeStats(trips []*domain.Trip) TripStats {
	stats := TripStats{Total: len(trips), TotalRevenue: decimal.Zero}
	for _, trip := range trips {
		switch trip.TripStatus {
		case domain.TripStatusScheduled:
			stats.Scheduled++
		case domain.TripStatusInProgress:
			stats.InProgress++
		case domain.TripStatusCompleted:
			stats.Completed++
		case domain.TripStatusPending:
			stats.Pending++
		case domain.TripStatusCancelled:
			stats.Cancelled++
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(trip.TripValue)
	}
	return stats
}

// ComputeStats counts trips per status and sums their values.
func (s *TripService) ComputeStats(trips []*domain.Trip) TripStats {
	return ComputeStats(trips)
}

// prefillPoints derives missing start and end points from the route.
func (s *TripService) prefillPoints(trip *domain.Trip) {
	if trip.StartPoint != "" && trip.EndPoint != "" {
		return
	}
	points := s.resolver.ResolveRoute(trip.Route)
	if trip.StartPoint == "" {
		trip.StartPoint = points.StartPoint
	}
	if trip.EndPoint == "" {
		trip.EndPoint = points.EndPoint
	}
}

// validate checks the merged trip, parses and settles its amounts and
// checks the assignment. Field failures are collected in fe; the returned
// error is reserved for collaborator failures.
func (s *TripService) validate(ctx context.Context, trip *domain.Trip, valueInput, advanceInput string, fe *fieldErrors) (AssignmentCheck, error) {
	required := []struct {
		field string
		value string
	}{
		{"customerName", trip.CustomerName},
		{"customerPhone", trip.CustomerPhone},
		{"route", trip.Route},
		{"startPoint", trip.StartPoint},
		{"endPoint", trip.EndPoint},
		{"scheduledDate", trip.ScheduledDate},
		{"scheduledTime", trip.ScheduledTime},
		{"cargoType", trip.CargoType},
		{"cargoWeight", trip.CargoWeight},
		{"tripValue", strings.TrimSpace(valueInput)},
	}
	for _, r := range required {
		if r.value == "" {
			fe.add(r.field)
		}
	}

	if trip.ScheduledDate != "" {
		if _, err := time.Parse(dateLayout, trip.ScheduledDate); err != nil {
			fe.add("scheduledDate")
		}
	}
	if trip.ScheduledTime != "" {
		if _, err := time.Parse(timeLayout, trip.ScheduledTime); err != nil {
			fe.add("scheduledTime")
		}
	}

	value, err := ParseAmount(valueInput)
	valueOK := err == nil && value.IsPositive()
	if !valueOK && strings.TrimSpace(valueInput) != "" {
		fe.add("tripValue")
	}
	advance, err := ParseAmount(advanceInput)
	if err != nil || advance.IsNegative() || (valueOK && advance.GreaterThan(value)) {
		fe.add("advancePayment")
	}

	trip.TripValue = value
	trip.AdvancePayment = advance
	settlement := ComputeSettlement(value, advance)
	trip.BalancePayment = settlement.BalancePayment
	trip.PaymentStatus = settlement.PaymentStatus

	routes, err := s.referenceRepo.ListRoutes(ctx)
	if err != nil {
		return AssignmentCheck{}, err
	}
	if trip.Route != "" && !hasRoute(routes, trip.Route) {
		fe.add("route")
	}

	drivers, err := s.referenceRepo.ListDrivers(ctx)
	if err != nil {
		return AssignmentCheck{}, err
	}
	vehicles, err := s.referenceRepo.ListVehicles(ctx)
	if err != nil {
		return AssignmentCheck{}, err
	}

	check := s.resolver.ValidateAssignment(trip.AssignedDriver, trip.AssignedVehicle, drivers, vehicles)
	if s.opts.StrictAssignment {
		if !check.DriverOK {
			fe.add("assignedDriver")
		}
		if !check.VehicleOK {
			fe.add("assignedVehicle")
		}
	}

	return check, nil
}

func (s *TripService) notify(err error) {
	if err != nil {
		log.Printf("[NOTIFICATION] delivery failed: %v", err)
	}
}

func hasRoute(routes []*domain.Route, name string) bool {
	for _, r := range routes {
		if r.Name == name {
			return true
		}
	}
	return false
}

func editableStatus(status domain.TripStatus) bool {
	return status == domain.TripStatusPending || status == domain.TripStatusScheduled
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func orNotAssigned(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NotAssigned
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
