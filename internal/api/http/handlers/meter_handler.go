package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aquanet/water-service/internal/api/dto"
	"github.com/aquanet/water-service/internal/auth"
	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/service"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

// MeterHandler manages meter reading endpoints.
type MeterHandler struct {
	service *service.MeterService
}

// NewMeterHandler constructs handler.
func NewMeterHandler(meterService *service.MeterService) *MeterHandler {
	return &MeterHandler{service: meterService}
}

// Create handles POST /meter (staff).
func (h *MeterHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reading, err := h.service.Record(c.UserContext(), principal.User, service.ReadingCreateInput{
		MeterNumber:     req.MeterNumber,
		CustomerName:    req.CustomerName,
		CustomerAccount: req.CustomerAccount,
		Location:        req.Location,
		CurrentReading:  req.CurrentReading,
		ReadingDate:     req.ReadingDate,
		Notes:           req.Notes,
		Unit:            req.Unit,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": readingResponse(reading)})
}

// List handles GET /meter (staff).
func (h *MeterHandler) List(c *fiber.Ctx) error {
	query := service.ReadingListQuery{
		MeterNumber: queryString(c, "meter_number"),
		DateFrom:    queryTime(c, "from"),
		DateTo:      queryTime(c, "to"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "limit", 20),
	}
	if s := queryString(c, "status"); s != nil {
		status := domain.ReadingStatus(*s)
		query.Status = &status
	}

	readings, total, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return err
	}

	items := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		items = append(items, readingResponse(&readings[i]))
	}
	meta := dto.NewPageMeta(total, query.Page, query.PageSize)
	return c.JSON(fiber.Map{
		"data":  items,
		"total": meta.Total,
		"page":  meta.Page,
		"pages": meta.Pages,
	})
}

// Get handles GET /meter/:id (staff).
func (h *MeterHandler) Get(c *fiber.Ctx) error {
	reading, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": readingResponse(reading)})
}

// History handles GET /meter/history/:meterNumber (staff).
func (h *MeterHandler) History(c *fiber.Ctx) error {
	readings, err := h.service.History(c.UserContext(), c.Params("meterNumber"))
	if err != nil {
		return err
	}
	items := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		items = append(items, readingResponse(&readings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus handles PUT /meter/:id/status (supervisor/admin).
func (h *MeterHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateReadingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reading, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": readingResponse(reading)})
}

// ExportCSV handles GET /meter/export/csv (supervisor/admin).
func (h *MeterHandler) ExportCSV(c *fiber.Ctx) error {
	readings, err := h.service.ExportAll(c.UserContext())
	if err != nil {
		return err
	}

	header := []string{"MeterNumber", "CustomerName", "Account", "Location", "PreviousReading", "CurrentReading", "Consumption", "Unit", "ReadingDate", "MeterReader", "Status", "Notes"}
	rows := make([][]string, 0, len(readings))
	for i := range readings {
		r := &readings[i]
		rows = append(rows, []string{
			r.MeterNumber,
			r.CustomerName,
			r.CustomerAccount,
			r.Location,
			formatFloat(r.PreviousReading),
			formatFloat(r.CurrentReading),
			formatFloat(r.Consumption),
			r.Unit,
			r.ReadingDate.UTC().Format("2006-01-02"),
			r.ReaderName,
			string(r.Status),
			r.Notes,
		})
	}
	return sendCSV(c, "meter_readings.csv", header, rows)
}

func readingResponse(reading *domain.MeterReading) dto.ReadingResponse {
	return dto.ReadingResponse{
		ID:              reading.ID,
		MeterNumber:     reading.MeterNumber,
		CustomerName:    reading.CustomerName,
		CustomerAccount: reading.CustomerAccount,
		Location:        reading.Location,
		PreviousReading: reading.PreviousReading,
		CurrentReading:  reading.CurrentReading,
		Consumption:     reading.Consumption,
		ReadingDate:     reading.ReadingDate,
		MeterReader:     reading.MeterReader,
		ReaderName:      reading.ReaderName,
		Notes:           reading.Notes,
		Unit:            reading.Unit,
		Status:          reading.Status,
		CreatedAt:       reading.CreatedAt,
	}
}
