package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/visheshsingal/hitech/models"
)

type StatsSource interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type DashboardController struct {
	stats StatsSource
	log   *slog.Logger
}

func NewDashboardController(stats StatsSource, log *slog.Logger) *DashboardController {
	return &DashboardController{stats: stats, log: log}
}

func (dc *DashboardController) GetStats(c echo.Context) error {
	stats, err := dc.stats.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, dc.log, err)
	}
	return c.JSON(http.StatusOK, stats)
}
