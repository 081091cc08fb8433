package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/enquiry-service/internal/api/dto"
	"github.com/spec-kit/enquiry-service/internal/service"
)

// AnalyticsHandler exposes admin reporting endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// TopPerformers handles GET /analytics/top-performers.
func (h *AnalyticsHandler) TopPerformers(c *fiber.Ctx) error {
	stats, err := h.service.TopPerformers(c.Context(),
		parseIntQuery(c, "windowDays", 0),
		parseIntQuery(c, "limit", 0))
	if err != nil {
		return err
	}

	data := make([]dto.PerformerResponse, 0, len(stats))
	for _, stat := range stats {
		data = append(data, dto.PerformerResponse{
			Name:        stat.Name,
			Email:       stat.Email,
			Role:        stat.Role,
			ClosedCount: stat.ClosedCount,
		})
	}
	return c.JSON(dto.TopPerformersResponse{Success: true, Data: data})
}
