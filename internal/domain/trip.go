package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NotAssigned is the placeholder stored when no driver or vehicle is selected.
const NotAssigned = "Not Assigned"

// TripStatus represents the current lifecycle status of a trip.
type TripStatus string

const (
	TripStatusPending    TripStatus = "pending"
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// Valid reports whether s is one of the known trip statuses.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPending, TripStatusScheduled, TripStatusInProgress,
		TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed out of s.
func (s TripStatus) Terminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// PaymentStatus represents the settlement state of a trip.
type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusAdvancePaid PaymentStatus = "advance_paid"
	PaymentStatusPaid        PaymentStatus = "paid"
)

// Tracking holds the live progress of a trip.
type Tracking struct {
	CurrentLocation string
	LastUpdate      time.Time
	Progress        int // 0..100, meaningful only while in progress
}

// Trip represents a single scheduled movement of cargo.
type Trip struct {
	ID            int64
	TripID        string
	CustomerName  string
	CustomerPhone string

	Route           string
	StartPoint      string
	EndPoint        string
	AssignedDriver  string
	AssignedVehicle string
	ScheduledDate   string // YYYY-MM-DD
	ScheduledTime   string // HH:MM

	CargoType           string
	CargoWeight         string
	SpecialInstructions string
	Documents           []string

	TripStatus     TripStatus
	PaymentStatus  PaymentStatus
	Currency       string
	TripValue      decimal.Decimal
	AdvancePayment decimal.Decimal
	BalancePayment decimal.Decimal

	Tracking Tracking

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Clone returns a deep copy of the trip.
func (t *Trip) Clone() *Trip {
	c := *t
	if t.Documents != nil {
		c.Documents = append([]string(nil), t.Documents...)
	}
	return &c
}

// FormatTripID builds the display identifier for a trip id created in the given year.
func FormatTripID(year int, id int64) string {
	return fmt.Sprintf("TRIP-%d-%03d", year, id)
}
