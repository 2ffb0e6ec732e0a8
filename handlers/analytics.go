package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/visheshsingal/hitech/analytics"
	"github.com/visheshsingal/hitech/models"
)

type EventTracker interface {
	TrackView(ctx context.Context, propertyID string, v analytics.Visitor) (*models.AnalyticsEvent, error)
	TrackClick(ctx context.Context, propertyID string, v analytics.Visitor) (*models.AnalyticsEvent, error)
	TrackFilter(ctx context.Context, f analytics.FilterCriteria, v analytics.Visitor) (*models.AnalyticsEvent, error)
}

type Reports interface {
	TopProperties(ctx context.Context, eventType string, limit int) ([]models.TopProperty, error)
	TopLocations(ctx context.Context, limit int) ([]models.TopLocation, error)
	PriceDistribution(ctx context.Context) ([]models.PriceBucket, error)
	BHKDistribution(ctx context.Context) ([]models.BHKCount, error)
	Engagement(ctx context.Context, days int) ([]models.EngagementDay, error)
	Summary(ctx context.Context) (*models.AnalyticsSummary, error)
}

type AnalyticsController struct {
	tracker EventTracker
	reports Reports
	log     *slog.Logger
}

func NewAnalyticsController(tracker EventTracker, reports Reports, log *slog.Logger) *AnalyticsController {
	return &AnalyticsController{tracker: tracker, reports: reports, log: log}
}

func visitor(c echo.Context, sessionID string) analytics.Visitor {
	return analytics.Visitor{
		SessionID: sessionID,
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func (ac *AnalyticsController) TrackView(c echo.Context) error {
	return ac.trackProperty(c, ac.tracker.TrackView)
}

func (ac *AnalyticsController) TrackClick(c echo.Context) error {
	return ac.trackProperty(c, ac.tracker.TrackClick)
}

func (ac *AnalyticsController) trackProperty(c echo.Context, track func(context.Context, string, analytics.Visitor) (*models.AnalyticsEvent, error)) error {
	var req models.TrackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	event, err := track(c.Request().Context(), req.PropertyID, visitor(c, req.SessionID))
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusCreated, event)
}

func (ac *AnalyticsController) TrackFilter(c echo.Context) error {
	var req models.TrackFilterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	criteria := analytics.FilterCriteria{City: req.City, BHK: req.BHK}
	if req.PriceRange != nil {
		criteria.MaxPrice = req.PriceRange.Max
	}
	event, err := ac.tracker.TrackFilter(c.Request().Context(), criteria, visitor(c, req.SessionID))
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusCreated, event)
}

func (ac *AnalyticsController) TopProperties(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return respondError(c, ac.log, err)
	}
	rows, err := ac.reports.TopProperties(c.Request().Context(), c.QueryParam("eventType"), limit)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (ac *AnalyticsController) TopLocations(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return respondError(c, ac.log, err)
	}
	rows, err := ac.reports.TopLocations(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (ac *AnalyticsController) PriceDistribution(c echo.Context) error {
	rows, err := ac.reports.PriceDistribution(c.Request().Context())
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (ac *AnalyticsController) BHKDistribution(c echo.Context) error {
	rows, err := ac.reports.BHKDistribution(c.Request().Context())
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (ac *AnalyticsController) Engagement(c echo.Context) error {
	days, err := queryInt(c, "days")
	if err != nil {
		return respondError(c, ac.log, err)
	}
	rows, err := ac.reports.Engagement(c.Request().Context(), days)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (ac *AnalyticsController) Summary(c echo.Context) error {
	summary, err := ac.reports.Summary(c.Request().Context())
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, summary)
}
