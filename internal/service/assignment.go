package service

import (
	"strings"

	"fleet/internal/domain"
)

// routeSeparator splits a corridor name such as "Mumbai-Pune".
const routeSeparator = "-"

// cityStates maps known corridor cities to their state.
var cityStates = map[string]string{
	"mumbai":      "Maharashtra",
	"pune":        "Maharashtra",
	"nagpur":      "Maharashtra",
	"delhi":       "Delhi",
	"jaipur":      "Rajasthan",
	"bangalore":   "Karnataka",
	"bengaluru":   "Karnataka",
	"chennai":     "Tamil Nadu",
	"coimbatore":  "Tamil Nadu",
	"ahmedabad":   "Gujarat",
	"surat":       "Gujarat",
	"kolkata":     "West Bengal",
	"bhubaneswar": "Odisha",
	"hyderabad":   "Telangana",
	"vijayawada":  "Andhra Pradesh",
	"lucknow":     "Uttar Pradesh",
	"kochi":       "Kerala",
}

// RoutePoints is the start and end point derived from a route name.
type RoutePoints struct {
	StartPoint string
	EndPoint   string
}

// AssignmentCheck is the advisory result of validating a driver and vehicle.
type AssignmentCheck struct {
	DriverOK  bool     `json:"driverOk"`
	VehicleOK bool     `json:"vehicleOk"`
	Warnings  []string `json:"warnings,omitempty"`
}

// OK reports whether both resources are usable.
func (c AssignmentCheck) OK() bool {
	return c.DriverOK && c.VehicleOK
}

// AssignmentResolver derives route endpoints and checks resource availability.
type AssignmentResolver struct{}

// NewAssignmentResolver creates a new AssignmentResolver.
func NewAssignmentResolver() *AssignmentResolver {
	return &AssignmentResolver{}
}

// ResolveRoute derives start and end points from a route name. A name
// without a separator yields empty points.
func (r *AssignmentResolver) ResolveRoute(name string) RoutePoints {
	origin, destination, found := strings.Cut(name, routeSeparator)
	if !found {
		return RoutePoints{}
	}
	return RoutePoints{
		StartPoint: withState(origin),
		EndPoint:   withState(destination),
	}
}

func withState(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		return ""
	}
	if state, ok := cityStates[strings.ToLower(city)]; ok {
		return city + ", " + state
	}
	return city
}

// ValidateAssignment checks the selected driver and vehicle against the
// catalogs. Empty and NotAssigned selections are always OK. A selection
// that is unknown or not available is flagged but never rejected here.
func (r *AssignmentResolver) ValidateAssignment(driverName, vehicleNumber string, drivers []*domain.Driver, vehicles []*domain.Vehicle) AssignmentCheck {
	check := AssignmentCheck{DriverOK: true, VehicleOK: true}

	if !unassigned(driverName) {
		switch d := findDriver(drivers, driverName); {
		case d == nil:
			check.DriverOK = false
			check.Warnings = append(check.Warnings, "driver "+driverName+" is not in the catalog")
		case d.Status != domain.ResourceStatusAvailable:
			check.DriverOK = false
			check.Warnings = append(check.Warnings, "driver "+driverName+" is "+string(d.Status))
		}
	}

	if !unassigned(vehicleNumber) {
		switch v := findVehicle(vehicles, vehicleNumber); {
		case v == nil:
			check.VehicleOK = false
			check.Warnings = append(check.Warnings, "vehicle "+vehicleNumber+" is not in the catalog")
		case v.Status != domain.ResourceStatusAvailable:
			check.VehicleOK = false
			check.Warnings = append(check.Warnings, "vehicle "+vehicleNumber+" is "+string(v.Status))
		}
	}

	return check
}

func unassigned(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || name == domain.NotAssigned
}

func findDriver(drivers []*domain.Driver, name string) *domain.Driver {
	for _, d := range drivers {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d
		}
	}
	return nil
}

func findVehicle(vehicles []*domain.Vehicle, number string) *domain.Vehicle {
	for _, v := range vehicles {
		if strings.EqualFold(v.Number, strings.TrimSpace(number)) {
			return v
		}
	}
	return nil
}
