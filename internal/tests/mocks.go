package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

// fixedNow is the clock used by the mock trip repository.
var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[int64]*domain.Trip
	seq   int64

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32
	DeleteCallCount int32

	// Error injection
	ListError   error
	GetError    error
	CreateError error
	UpdateError error
	DeleteError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[int64]*domain.Trip),
	}
}

// AddTrip stores a trip as-is, bypassing id assignment.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trip.Version == 0 {
		trip.Version = 1
	}
	if trip.TripID == "" {
		trip.TripID = domain.FormatTripID(fixedNow.Year(), trip.ID)
	}
	m.trips[trip.ID] = trip.Clone()
	if trip.ID > m.seq {
		m.seq = trip.ID
	}
}

func (m *MockTripRepository) List(ctx context.Context) ([]*domain.Trip, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for id := int64(1); id <= m.seq; id++ {
		if t, ok := m.trips[id]; ok {
			result = append(result, t.Clone())
		}
	}
	return result, nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	return trip.Clone(), nil
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	trip.ID = m.seq
	trip.TripID = domain.FormatTripID(fixedNow.Year(), trip.ID)
	trip.CreatedAt = fixedNow
	trip.UpdatedAt = fixedNow
	trip.Version = 1
	trip.Tracking = domain.Tracking{CurrentLocation: trip.StartPoint, LastUpdate: fixedNow}
	m.trips[trip.ID] = trip.Clone()
	return nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != trip.Version {
		return repository.ErrConflict
	}
	trip.Version++
	trip.UpdatedAt = fixedNow
	m.trips[trip.ID] = trip.Clone()
	return nil
}

func (m *MockTripRepository) Delete(ctx context.Context, id int64) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, id)
	return nil
}

// GetTrip returns trip for test assertions.
func (m *MockTripRepository) GetTrip(id int64) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.trips[id]; ok {
		return t.Clone()
	}
	return nil
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK REFERENCE REPOSITORY
// ──────────────────────────────────────────────

// MockReferenceRepository is a mock implementation of ReferenceRepository.
type MockReferenceRepository struct {
	mu       sync.RWMutex
	drivers  []*domain.Driver
	vehicles []*domain.Vehicle
	routes   []*domain.Route

	// Error injection
	ListError error
}

// NewMockReferenceRepository creates a mock reference repository with a
// small catalog of drivers, vehicles and routes.
func NewMockReferenceRepository() *MockReferenceRepository {
	return &MockReferenceRepository{
		drivers: []*domain.Driver{
			{ID: "DRV-001", Name: "Rajesh Kumar", Phone: "+91 98765 43210", Status: domain.ResourceStatusAvailable},
			{ID: "DRV-002", Name: "Suresh Patel", Phone: "+91 98765 43211", Status: domain.ResourceStatusOnTrip},
			{ID: "DRV-003", Name: "Vikram Sharma", Phone: "+91 98765 43213", Status: domain.ResourceStatusOnLeave},
		},
		vehicles: []*domain.Vehicle{
			{ID: "VEH-001", Number: "MH-12-AB-1234", Type: "Truck", Status: domain.ResourceStatusAvailable},
			{ID: "VEH-003", Number: "DL-04-EF-9012", Type: "Container", Status: domain.ResourceStatusMaintenance},
		},
		routes: []*domain.Route{
			{Name: "Mumbai-Pune", Distance: "148 km", EstimatedTime: "3h 30m"},
			{Name: "Delhi-Jaipur", Distance: "281 km", EstimatedTime: "5h 30m"},
		},
	}
}

// AddRoute adds a route to the catalog.
func (m *MockReferenceRepository) AddRoute(route *domain.Route) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
}

func (m *MockReferenceRepository) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Driver(nil), m.drivers...), nil
}

func (m *MockReferenceRepository) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Vehicle(nil), m.vehicles...), nil
}

func (m *MockReferenceRepository) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Route(nil), m.routes...), nil
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []service.Notification

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, v any) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := v.(service.Notification); ok {
		m.events = append(m.events, n)
	}
	return nil
}

// Types returns the published notification types in order.
func (m *MockPublisher) Types() []service.NotificationType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]service.NotificationType, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

// ──────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────

type testEnv struct {
	tripRepo  *MockTripRepository
	refRepo   *MockReferenceRepository
	publisher *MockPublisher
	service   *service.TripService
}

func newTestEnv(opts service.TripOptions) *testEnv {
	tripRepo := NewMockTripRepository()
	refRepo := NewMockReferenceRepository()
	publisher := NewMockPublisher()
	svc := service.NewTripService(
		tripRepo,
		refRepo,
		service.NewLifecycleController(tripRepo),
		service.NewAssignmentResolver(),
		service.NewNotificationService(publisher),
		opts,
	)
	return &testEnv{tripRepo: tripRepo, refRepo: refRepo, publisher: publisher, service: svc}
}

// validRequest returns a create request that passes validation.
func validRequest() service.CreateTripRequest {
	return service.CreateTripRequest{
		CustomerName:    "ABC Industries",
		CustomerPhone:   "+91 98765 00001",
		Route:           "Mumbai-Pune",
		AssignedDriver:  "Rajesh Kumar",
		AssignedVehicle: "MH-12-AB-1234",
		ScheduledDate:   "2025-03-20",
		ScheduledTime:   "09:00",
		CargoType:       "Electronics",
		CargoWeight:     "5 tons",
		TripStatus:      domain.TripStatusScheduled,
		TripValue:       "85000",
		AdvancePayment:  "25000",
	}
}

// seedTrip stores a trip with the given status and returns it.
func (e *testEnv) seedTrip(id int64, status domain.TripStatus) *domain.Trip {
	trip := &domain.Trip{
		ID:              id,
		CustomerName:    "Seed Customer",
		CustomerPhone:   "+91 90000 00000",
		Route:           "Mumbai-Pune",
		StartPoint:      "Mumbai, Maharashtra",
		EndPoint:        "Pune, Maharashtra",
		AssignedDriver:  domain.NotAssigned,
		AssignedVehicle: domain.NotAssigned,
		ScheduledDate:   "2025-03-20",
		ScheduledTime:   "09:00",
		CargoType:       "Textiles",
		CargoWeight:     "2 tons",
		TripStatus:      status,
		PaymentStatus:   domain.PaymentStatusPending,
		Currency:        "INR",
		CreatedAt:       fixedNow,
		UpdatedAt:       fixedNow,
	}
	e.tripRepo.AddTrip(trip)
	return e.tripRepo.GetTrip(id)
}
