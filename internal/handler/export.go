package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"fleet/internal/domain"
	"fleet/internal/service"
)

const (
	tripSheet     = "Trips"
	xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	headerRow     = 3
)

var tripSheetHeaders = []string{
	"Trip ID", "Customer", "Phone", "Route", "Start", "End", "Driver", "Vehicle",
	"Date", "Time", "Cargo", "Weight", "Status", "Payment", "Currency",
	"Trip Value", "Advance", "Balance", "Progress",
}

// Export handles GET /v1/trips/export
func (h *TripHandler) Export(c *gin.Context) {
	trips, err := h.tripService.ListTrips(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := buildTripSheet(trips, h.tripService.ComputeStats(trips), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate trip sheet"})
		return
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to write trip sheet"})
		return
	}

	filename := fmt.Sprintf("trips_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxMediaType, buffer.Bytes())
}

// buildTripSheet renders trips and their totals into a workbook.
func buildTripSheet(trips []*domain.Trip, stats service.TripStats, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", tripSheet); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(tripSheet, "A1", "Trip Sheet")
	f.SetCellStyle(tripSheet, "A1", "A1", titleStyle)
	f.SetCellValue(tripSheet, "A2", fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04:05")))

	for col, header := range tripSheetHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(tripSheet, cell, header)
		f.SetCellStyle(tripSheet, cell, cell, headerStyle)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(tripSheetHeaders))
	f.SetColWidth(tripSheet, "A", lastCol, 18)

	for i, trip := range trips {
		row := []any{
			trip.TripID,
			trip.CustomerName,
			trip.CustomerPhone,
			trip.Route,
			trip.StartPoint,
			trip.EndPoint,
			trip.AssignedDriver,
			trip.AssignedVehicle,
			trip.ScheduledDate,
			trip.ScheduledTime,
			trip.CargoType,
			trip.CargoWeight,
			tripStatusLabel(trip.TripStatus).Label,
			paymentStatusLabel(trip.PaymentStatus).Label,
			trip.Currency,
			trip.TripValue.InexactFloat64(),
			trip.AdvancePayment.InexactFloat64(),
			trip.BalancePayment.InexactFloat64(),
			trip.Tracking.Progress,
		}
		cell, err := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(tripSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	summaryRow := headerRow + len(trips) + 2
	summary := [][2]any{
		{"Total trips", stats.Total},
		{"Scheduled", stats.Scheduled},
		{"In progress", stats.InProgress},
		{"Completed", stats.Completed},
		{"Pending", stats.Pending},
		{"Cancelled", stats.Cancelled},
		{"Total revenue", stats.TotalRevenue.InexactFloat64()},
	}
	for i, line := range summary {
		r := strconv.Itoa(summaryRow + i)
		f.SetCellValue(tripSheet, "A"+r, line[0])
		f.SetCellValue(tripSheet, "B"+r, line[1])
	}

	return f, nil
}
