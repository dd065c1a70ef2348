package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hvac-service-desk/internal/service"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// StatsHandler serves the reporting snapshot.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// Statistics GET /stats?period_days=30.
func (h *StatsHandler) Statistics(c *fiber.Ctx) error {
	periodDays := 0
	if raw := c.Query("period_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.NewInvalidArgument("invalid period_days", nil)
		}
		periodDays = parsed
	}

	stats, err := h.service.Statistics(c.Context(), periodDays)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
