package service

import (
	"context"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// ReferenceService exposes the driver, vehicle and route catalogs.
type ReferenceService struct {
	referenceRepo repository.ReferenceRepository
	resolver      *AssignmentResolver
}

// NewReferenceService creates a new ReferenceService.
func NewReferenceService(referenceRepo repository.ReferenceRepository, resolver *AssignmentResolver) *ReferenceService {
	return &ReferenceService{referenceRepo: referenceRepo, resolver: resolver}
}

// ListDrivers retrieves drivers, optionally only those with the given status.
func (s *ReferenceService) ListDrivers(ctx context.Context, status domain.ResourceStatus) ([]*domain.Driver, error) {
	drivers, err := s.referenceRepo.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return drivers, nil
	}

	filtered := make([]*domain.Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.Status == status {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// ListVehicles retrieves vehicles, optionally only those with the given status.
func (s *ReferenceService) ListVehicles(ctx context.Context, status domain.ResourceStatus) ([]*domain.Vehicle, error) {
	vehicles, err := s.referenceRepo.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return vehicles, nil
	}

	filtered := make([]*domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Status == status {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// RouteInfo is a route with its derived start and end points.
type RouteInfo struct {
	*domain.Route
	StartPoint string `json:"startPoint"`
	EndPoint   string `json:"endPoint"`
}

// ListRoutes retrieves routes with their resolved endpoints.
func (s *ReferenceService) ListRoutes(ctx context.Context) ([]RouteInfo, error) {
	routes, err := s.referenceRepo.ListRoutes(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		points := s.resolver.ResolveRoute(r.Name)
		infos = append(infos, RouteInfo{Route: r, StartPoint: points.StartPoint, EndPoint: points.EndPoint})
	}
	return infos, nil
}
