package domain

// ResourceStatus represents the availability of a driver or vehicle.
type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "available"
	ResourceStatusOnTrip      ResourceStatus = "on_trip"
	ResourceStatusOnLeave     ResourceStatus = "on_leave"
	ResourceStatusMaintenance ResourceStatus = "maintenance"
)

// Driver represents a driver in the reference catalog.
type Driver struct {
	ID      string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Phone   string         `json:"phone" yaml:"phone"`
	License string         `json:"license" yaml:"license"`
	Status  ResourceStatus `json:"status" yaml:"status"`
}

// Vehicle represents a vehicle in the reference catalog.
type Vehicle struct {
	ID       string         `json:"id" yaml:"id"`
	Number   string         `json:"number" yaml:"number"`
	Type     string         `json:"type" yaml:"type"`
	Capacity string         `json:"capacity" yaml:"capacity"`
	Status   ResourceStatus `json:"status" yaml:"status"`
}
