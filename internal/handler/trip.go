package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// amount accepts a JSON number or a display string such as "₹85,000".
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amount(n.String())
	return nil
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	CustomerName        string   `json:"customerName"`
	CustomerPhone       string   `json:"customerPhone"`
	Route               string   `json:"route"`
	StartPoint          string   `json:"startPoint"`
	EndPoint            string   `json:"endPoint"`
	AssignedDriver      string   `json:"assignedDriver"`
	AssignedVehicle     string   `json:"assignedVehicle"`
	ScheduledDate       string   `json:"scheduledDate"`
	ScheduledTime       string   `json:"scheduledTime"`
	CargoType           string   `json:"cargoType"`
	CargoWeight         string   `json:"cargoWeight"`
	SpecialInstructions string   `json:"specialInstructions"`
	Documents           []string `json:"documents"`
	TripStatus          string   `json:"tripStatus"`
	TripValue           amount   `json:"tripValue"`
	AdvancePayment      amount   `json:"advancePayment"`
	Currency            string   `json:"currency"`
	CreatedBy           string   `json:"createdBy"`
}

// UpdateTripRequest is the HTTP request body for editing a trip. Omitted
// fields are left unchanged.
type UpdateTripRequest struct {
	CustomerName        *string  `json:"customerName"`
	CustomerPhone       *string  `json:"customerPhone"`
	Route               *string  `json:"route"`
	StartPoint          *string  `json:"startPoint"`
	EndPoint            *string  `json:"endPoint"`
	AssignedDriver      *string  `json:"assignedDriver"`
	AssignedVehicle     *string  `json:"assignedVehicle"`
	ScheduledDate       *string  `json:"scheduledDate"`
	ScheduledTime       *string  `json:"scheduledTime"`
	CargoType           *string  `json:"cargoType"`
	CargoWeight         *string  `json:"cargoWeight"`
	SpecialInstructions *string  `json:"specialInstructions"`
	Documents           []string `json:"documents"`
	TripStatus          *string  `json:"tripStatus"`
	TripValue           *amount  `json:"tripValue"`
	AdvancePayment      *amount  `json:"advancePayment"`
	Version             *int64   `json:"version"`
}

// UpdateProgressRequest is the HTTP request body for reporting progress.
type UpdateProgressRequest struct {
	Location string `json:"location"`
	Progress int    `json:"progress"`
}

// TrackingResponse is the tracking part of a trip response.
type TrackingResponse struct {
	CurrentLocation string `json:"currentLocation"`
	LastUpdate      string `json:"lastUpdate"`
	Progress        int    `json:"progress"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID                  int64            `json:"id"`
	TripID              string           `json:"tripId"`
	CustomerName        string           `json:"customerName"`
	CustomerPhone       string           `json:"customerPhone"`
	Route               string           `json:"route"`
	StartPoint          string           `json:"startPoint"`
	EndPoint            string           `json:"endPoint"`
	AssignedDriver      string           `json:"assignedDriver"`
	AssignedVehicle     string           `json:"assignedVehicle"`
	ScheduledDate       string           `json:"scheduledDate"`
	ScheduledTime       string           `json:"scheduledTime"`
	CargoType           string           `json:"cargoType"`
	CargoWeight         string           `json:"cargoWeight"`
	SpecialInstructions string           `json:"specialInstructions"`
	Documents           []string         `json:"documents"`
	TripStatus          string           `json:"tripStatus"`
	TripStatusDisplay   StatusDisplay    `json:"tripStatusDisplay"`
	PaymentStatus       string           `json:"paymentStatus"`
	PaymentDisplay      StatusDisplay    `json:"paymentStatusDisplay"`
	Currency            string           `json:"currency"`
	TripValue           string           `json:"tripValue"`
	AdvancePayment      string           `json:"advancePayment"`
	BalancePayment      string           `json:"balancePayment"`
	Tracking            TrackingResponse `json:"tracking"`
	CreatedBy           string           `json:"createdBy"`
	CreatedAt           string           `json:"createdAt"`
	UpdatedAt           string           `json:"updatedAt"`
	Version             int64            `json:"version"`
}

// TripWithAssignmentResponse is returned from create and update.
type TripWithAssignmentResponse struct {
	Trip       TripResponse            `json:"trip"`
	Assignment service.AssignmentCheck `json:"assignment"`
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		Route:               req.Route,
		StartPoint:          req.StartPoint,
		EndPoint:            req.EndPoint,
		AssignedDriver:      req.AssignedDriver,
		AssignedVehicle:     req.AssignedVehicle,
		ScheduledDate:       req.ScheduledDate,
		ScheduledTime:       req.ScheduledTime,
		CargoType:           req.CargoType,
		CargoWeight:         req.CargoWeight,
		SpecialInstructions: req.SpecialInstructions,
		Documents:           req.Documents,
		TripStatus:          domain.TripStatus(req.TripStatus),
		TripValue:           string(req.TripValue),
		AdvancePayment:      string(req.AdvancePayment),
		Currency:            req.Currency,
		CreatedBy:           req.CreatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, TripWithAssignmentResponse{
		Trip:       toTripResponse(result.Trip),
		Assignment: result.Assignment,
	})
}

// UpdateTrip handles PUT /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	update := service.UpdateTripRequest{
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		Route:               req.Route,
		StartPoint:          req.StartPoint,
		EndPoint:            req.EndPoint,
		AssignedDriver:      req.AssignedDriver,
		AssignedVehicle:     req.AssignedVehicle,
		ScheduledDate:       req.ScheduledDate,
		ScheduledTime:       req.ScheduledTime,
		CargoType:           req.CargoType,
		CargoWeight:         req.CargoWeight,
		SpecialInstructions: req.SpecialInstructions,
		Documents:           req.Documents,
		ExpectedVersion:     req.Version,
	}
	if req.TripStatus != nil {
		status := domain.TripStatus(*req.TripStatus)
		update.TripStatus = &status
	}
	if req.TripValue != nil {
		v := string(*req.TripValue)
		update.TripValue = &v
	}
	if req.AdvancePayment != nil {
		v := string(*req.AdvancePayment)
		update.AdvancePayment = &v
	}

	result, err := h.tripService.UpdateTrip(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, TripWithAssignmentResponse{
		Trip:       toTripResponse(result.Trip),
		Assignment: result.Assignment,
	})
}

// DeleteTrip handles DELETE /v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.tripService.DeleteTrip(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.ListTrips(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// Stats handles GET /v1/trips/stats
func (h *TripHandler) Stats(c *gin.Context) {
	trips, err := h.tripService.ListTrips(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, h.tripService.ComputeStats(trips))
}

// ChangeStatus returns a handler for POST /v1/trips/:id/<action>
func (h *TripHandler) ChangeStatus(action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c)
		if err != nil {
			respondError(c, err)
			return
		}

		trip, err := h.tripService.ChangeStatus(c.Request.Context(), id, action)
		if err != nil {
			respondError(c, err)
			return
		}

		respondJSON(c, http.StatusOK, toTripResponse(trip))
	}
}

// UpdateProgress handles POST /v1/trips/:id/progress
func (h *TripHandler) UpdateProgress(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.UpdateProgress(c.Request.Context(), id, service.UpdateProgressRequest{
		Location: req.Location,
		Progress: req.Progress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// SettlePayment handles POST /v1/trips/:id/settle
func (h *TripHandler) SettlePayment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	trip, err := h.tripService.SettlePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

func filterFromQuery(c *gin.Context) service.TripFilter {
	status := c.Query("status")
	if status == "all" {
		status = ""
	}
	return service.TripFilter{
		Search: c.Query("search"),
		Status: domain.TripStatus(status),
		Date:   c.Query("date"),
	}
}

func toTripResponse(trip *domain.Trip) TripResponse {
	documents := trip.Documents
	if documents == nil {
		documents = []string{}
	}

	return TripResponse{
		ID:                  trip.ID,
		TripID:              trip.TripID,
		CustomerName:        trip.CustomerName,
		CustomerPhone:       trip.CustomerPhone,
		Route:               trip.Route,
		StartPoint:          trip.StartPoint,
		EndPoint:            trip.EndPoint,
		AssignedDriver:      trip.AssignedDriver,
		AssignedVehicle:     trip.AssignedVehicle,
		ScheduledDate:       trip.ScheduledDate,
		ScheduledTime:       trip.ScheduledTime,
		CargoType:           trip.CargoType,
		CargoWeight:         trip.CargoWeight,
		SpecialInstructions: trip.SpecialInstructions,
		Documents:           documents,
		TripStatus:          string(trip.TripStatus),
		TripStatusDisplay:   tripStatusLabel(trip.TripStatus),
		PaymentStatus:       string(trip.PaymentStatus),
		PaymentDisplay:      paymentStatusLabel(trip.PaymentStatus),
		Currency:            trip.Currency,
		TripValue:           trip.TripValue.StringFixed(2),
		AdvancePayment:      trip.AdvancePayment.StringFixed(2),
		BalancePayment:      trip.BalancePayment.StringFixed(2),
		Tracking: TrackingResponse{
			CurrentLocation: trip.Tracking.CurrentLocation,
			LastUpdate:      trip.Tracking.LastUpdate.Format(time.RFC3339),
			Progress:        trip.Tracking.Progress,
		},
		CreatedBy: trip.CreatedBy,
		CreatedAt: trip.CreatedAt.Format(time.RFC3339),
		UpdatedAt: trip.UpdatedAt.Format(time.RFC3339),
		Version:   trip.Version,
	}
}
