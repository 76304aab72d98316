package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/salesdash/internal/logging"
	"github.com/yourorg/salesdash/internal/models"
)

// SummaryProvider is implemented by *dashboard.Service.
type SummaryProvider interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type DashboardHandler struct {
	svc SummaryProvider
	log logging.Logger
}

func NewDashboardHandler(svc SummaryProvider, log logging.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, log: log}
}

// Summary handles GET /api/dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.svc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderCacheControl, "private, max-age=0")
	return c.JSON(models.ItemResponse[*models.DashboardSummary]{Data: sum})
}
