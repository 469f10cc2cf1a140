package kvstore

import (
	"time"

	"github.com/shopspring/decimal"

	"fleet/internal/domain"
)

// tripDocument is the whole trip collection as stored under a single key.
// Seq is the highest id ever issued, so ids are never reused after a delete.
type tripDocument struct {
	Seq   int64        `json:"seq"`
	Trips []tripRecord `json:"trips"`
}

type trackingRecord struct {
	CurrentLocation string    `json:"currentLocation"`
	LastUpdate      time.Time `json:"lastUpdate"`
	Progress        int       `json:"progress"`
}

type tripRecord struct {
	ID                  int64           `json:"id"`
	TripID              string          `json:"tripId"`
	CustomerName        string          `json:"customerName"`
	CustomerPhone       string          `json:"customerPhone"`
	Route               string          `json:"route"`
	StartPoint          string          `json:"startPoint"`
	EndPoint            string          `json:"endPoint"`
	AssignedDriver      string          `json:"assignedDriver"`
	AssignedVehicle     string          `json:"assignedVehicle"`
	ScheduledDate       string          `json:"scheduledDate"`
	ScheduledTime       string          `json:"scheduledTime"`
	CargoType           string          `json:"cargoType"`
	CargoWeight         string          `json:"cargoWeight"`
	SpecialInstructions string          `json:"specialInstructions"`
	Documents           []string        `json:"documents"`
	TripStatus          string          `json:"tripStatus"`
	PaymentStatus       string          `json:"paymentStatus"`
	Currency            string          `json:"currency"`
	TripValue           decimal.Decimal `json:"tripValue"`
	AdvancePayment      decimal.Decimal `json:"advancePayment"`
	BalancePayment      decimal.Decimal `json:"balancePayment"`
	Tracking            trackingRecord  `json:"tracking"`
	CreatedBy           string          `json:"createdBy"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Version             int64           `json:"version"`
}

func toRecord(t *domain.Trip) tripRecord {
	return tripRecord{
		ID:                  t.ID,
		TripID:              t.TripID,
		CustomerName:        t.CustomerName,
		CustomerPhone:       t.CustomerPhone,
		Route:               t.Route,
		StartPoint:          t.StartPoint,
		EndPoint:            t.EndPoint,
		AssignedDriver:      t.AssignedDriver,
		AssignedVehicle:     t.AssignedVehicle,
		ScheduledDate:       t.ScheduledDate,
		ScheduledTime:       t.ScheduledTime,
		CargoType:           t.CargoType,
		CargoWeight:         t.CargoWeight,
		SpecialInstructions: t.SpecialInstructions,
		Documents:           append([]string(nil), t.Documents...),
		TripStatus:          string(t.TripStatus),
		PaymentStatus:       string(t.PaymentStatus),
		Currency:            t.Currency,
		TripValue:           t.TripValue,
		AdvancePayment:      t.AdvancePayment,
		BalancePayment:      t.BalancePayment,
		Tracking: trackingRecord{
			CurrentLocation: t.Tracking.CurrentLocation,
			LastUpdate:      t.Tracking.LastUpdate,
			Progress:        t.Tracking.Progress,
		},
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Version:   t.Version,
	}
}

func (r tripRecord) toDomain() *domain.Trip {
	return &domain.Trip{
		ID:                  r.ID,
		TripID:              r.TripID,
		CustomerName:        r.CustomerName,
		CustomerPhone:       r.CustomerPhone,
		Route:               r.Route,
		StartPoint:          r.StartPoint,
		EndPoint:            r.EndPoint,
		AssignedDriver:      r.AssignedDriver,
		AssignedVehicle:     r.AssignedVehicle,
		ScheduledDate:       r.ScheduledDate,
		ScheduledTime:       r.ScheduledTime,
		CargoType:           r.CargoType,
		CargoWeight:         r.CargoWeight,
		SpecialInstructions: r.SpecialInstructions,
		Documents:           append([]string(nil), r.Documents...),
		TripStatus:          domain.TripStatus(r.TripStatus),
		PaymentStatus:       domain.PaymentStatus(r.PaymentStatus),
		Currency:            r.Currency,
		TripValue:           r.TripValue,
		AdvancePayment:      r.AdvancePayment,
		BalancePayment:      r.BalancePayment,
		Tracking: domain.Tracking{
			CurrentLocation: r.Tracking.CurrentLocation,
			LastUpdate:      r.Tracking.LastUpdate,
			Progress:        r.Tracking.Progress,
		},
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}
