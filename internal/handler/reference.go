package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// ReferenceHandler handles HTTP requests for the driver, vehicle and route catalogs.
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// ListDrivers handles GET /v1/drivers
func (h *ReferenceHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.referenceService.ListDrivers(c.Request.Context(), domain.ResourceStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	if drivers == nil {
		drivers = []*domain.Driver{}
	}
	respondJSON(c, http.StatusOK, drivers)
}

// ListVehicles handles GET /v1/vehicles
func (h *ReferenceHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.referenceService.ListVehicles(c.Request.Context(), domain.ResourceStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	if vehicles == nil {
		vehicles = []*domain.Vehicle{}
	}
	respondJSON(c, http.StatusOK, vehicles)
}

// ListRoutes handles GET /v1/routes
func (h *ReferenceHandler) ListRoutes(c *gin.Context) {
	routes, err := h.referenceService.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, routes)
}
