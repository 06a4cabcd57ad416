package handler

import (
	"github.com/gofiber/fiber/v2"

	"permit-review/internal/middleware"
	"permit-review/internal/service/dashboard"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats summarises all projects, or the caller's own with ?mine=true.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	ownerID := ""
	if c.QueryBool("mine") {
		ownerID = userID
	}

	stats, err := h.dashboardService.GetStats(c.Context(), userID, ownerID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
