package routes

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/visheshsingal/hitech/handlers"
	"github.com/visheshsingal/hitech/middleware"
	"github.com/visheshsingal/hitech/utils"
)

type Controllers struct {
	Health     *handlers.HealthController
	Properties *handlers.PropertyController
	Enquiries  *handlers.EnquiryController
	Analytics  *handlers.AnalyticsController
	Chatbot    *handlers.ChatbotController
	Dashboard  *handlers.DashboardController
	Admin      *handlers.AdminController
}

type RateLimit struct {
	Counter  middleware.Counter
	Requests int
	Window   time.Duration
}

func RegisterRoutes(e *echo.Echo, h Controllers, issuer *utils.TokenIssuer, rl RateLimit, log *slog.Logger) {
	auth := middleware.JWTMiddleware(issuer)
	limited := middleware.RateLimit(rl.Counter, rl.Requests, rl.Window, log)

	api := e.Group("/api")
	api.GET("/health", h.Health.HealthCheck)

	admin := api.Group("/admin")
	admin.POST("/login", h.Admin.Login, limited)
	admin.GET("/profile", h.Admin.GetProfile, auth)

	// Fixed paths go before /:id.
	properties := api.Group("/properties")
	properties.GET("", h.Properties.ListProperties)
	properties.GET("/filter", h.Properties.FilterProperties)
	properties.GET("/cities", h.Properties.GetCities)
	properties.GET("/collections", h.Properties.GetCuratedCollections)
	properties.GET("/collections/:key", h.Properties.GetCollectionProperties)
	properties.GET("/featured-locations", h.Properties.GetFeaturedLocations)
	properties.GET("/curated-titles", h.Properties.GetCuratedTitles)
	properties.GET("/:id", h.Properties.GetProperty)
	properties.POST("", h.Properties.CreateProperty, auth)
	properties.PUT("/:id", h.Properties.UpdateProperty, auth)
	properties.DELETE("/:id", h.Properties.DeleteProperty, auth)
	properties.DELETE("/:id/images/:imageIndex", h.Properties.DeletePropertyImage, auth)
	properties.PATCH("/:id/featured", h.Properties.ToggleFeatured, auth)

	enquiries := api.Group("/enquiries")
	enquiries.POST("", h.Enquiries.CreateEnquiry, limited)
	enquiries.GET("", h.Enquiries.ListEnquiries, auth)
	enquiries.GET("/recent", h.Enquiries.RecentEnquiries, auth)
	enquiries.PATCH("/:id/status", h.Enquiries.UpdateEnquiryStatus, auth)
	enquiries.POST("/:id/notes", h.Enquiries.AddEnquiryNote, auth)
	enquiries.DELETE("/:id", h.Enquiries.DeleteEnquiry, auth)

	analytics := api.Group("/analytics")
	analytics.POST("/view", h.Analytics.TrackView, limited)
	analytics.POST("/click", h.Analytics.TrackClick, limited)
	analytics.POST("/filter", h.Analytics.TrackFilter, limited)
	analytics.GET("/top-properties", h.Analytics.TopProperties, auth)
	analytics.GET("/top-locations", h.Analytics.TopLocations, auth)
	analytics.GET("/top-prices", h.Analytics.PriceDistribution, auth)
	analytics.GET("/top-bhk", h.Analytics.BHKDistribution, auth)
	analytics.GET("/engagement", h.Analytics.Engagement, auth)
	analytics.GET("/summary", h.Analytics.Summary, auth)

	api.POST("/chatbot/message", h.Chatbot.SendMessage, limited)
	api.GET("/dashboard/stats", h.Dashboard.GetStats, auth)
}
