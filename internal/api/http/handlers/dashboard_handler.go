package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquanet/water-service/internal/service"
)

// DashboardHandler serves read-side aggregations.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Summary handles GET /dashboard/summary (supervisor/admin).
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
