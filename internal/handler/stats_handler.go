package handler

import (
	"fmt"

	"testboard/internal/middleware"
	"testboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler serves creator statistics and exports.
type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Stats handles GET /tests/:id/stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	resp, err := h.statsService.GetTestStats(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Export handles GET /tests/:id/stats/export?format=csv|json|excel.
func (h *StatsHandler) Export(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	format := c.Query("format", "csv")

	result, err := h.statsService.ExportTestStats(c.Context(), userID, c.Params("id"), format)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.Filename))
	return c.Send(result.Body)
}
