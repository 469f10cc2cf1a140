package handler

import "fleet/internal/domain"

// StatusDisplay is the presentation metadata for a status value.
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var tripStatusDisplay = map[domain.TripStatus]StatusDisplay{
	domain.TripStatusPending:    {Label: "Pending", Color: "yellow", Icon: "clock"},
	domain.TripStatusScheduled:  {Label: "Scheduled", Color: "blue", Icon: "calendar"},
	domain.TripStatusInProgress: {Label: "In Progress", Color: "orange", Icon: "truck"},
	domain.TripStatusCompleted:  {Label: "Completed", Color: "green", Icon: "check-circle"},
	domain.TripStatusCancelled:  {Label: "Cancelled", Color: "red", Icon: "x-circle"},
}

var paymentStatusDisplay = map[domain.PaymentStatus]StatusDisplay{
	domain.PaymentStatusPending:     {Label: "Payment Pending", Color: "red", Icon: "alert-circle"},
	domain.PaymentStatusAdvancePaid: {Label: "Advance Paid", Color: "yellow", Icon: "credit-card"},
	domain.PaymentStatusPaid:        {Label: "Fully Paid", Color: "green", Icon: "check-circle"},
}

func tripStatusLabel(s domain.TripStatus) StatusDisplay {
	if d, ok := tripStatusDisplay[s]; ok {
		return d
	}
	return StatusDisplay{Label: string(s), Color: "gray", Icon: "help-circle"}
}

func paymentStatusLabel(s domain.PaymentStatus) StatusDisplay {
	if d, ok := paymentStatusDisplay[s]; ok {
		return d
	}
	return StatusDisplay{Label: string(s), Color: "gray", Icon: "help-circle"}
}
