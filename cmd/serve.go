package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/visheshsingal/hitech/analytics"
	"github.com/visheshsingal/hitech/chatbot"
	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/dashboard"
	"github.com/visheshsingal/hitech/enquiries"
	"github.com/visheshsingal/hitech/handlers"
	"github.com/visheshsingal/hitech/llm"
	"github.com/visheshsingal/hitech/media"
	"github.com/visheshsingal/hitech/middleware"
	"github.com/visheshsingal/hitech/properties"
	"github.com/visheshsingal/hitech/routes"
	"github.com/visheshsingal/hitech/store"
	"github.com/visheshsingal/hitech/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.closer()
	cfg, log := rt.cfg, rt.log

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	disconnect, err := rt.connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	cols := cfg.Mongo.Collections
	propertyStore := store.NewPropertyStore(config.GetCollection(cols.Properties))
	enquiryStore := store.NewEnquiryStore(config.GetCollection(cols.Enquiries))
	eventStore := store.NewEventStore(config.GetCollection(cols.Analytics), cols.Properties)
	adminStore := store.NewAdminStore(config.GetCollection(cols.Admins))

	var (
		cache   utils.Cache = utils.NoopCache{}
		counter middleware.Counter
	)
	if cfg.Redis.Enabled {
		client, err := utils.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, caching and rate limiting disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer closeRedis(client, log)
			rc := utils.NewRedisCache(client, cfg.Redis.Prefix)
			cache, counter = rc, rc
		}
	}

	host, err := media.New(cfg.Media, log)
	if err != nil {
		return err
	}

	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("init llm: %w", err)
	}
	if gen == nil {
		log.Warn("no llm api key configured, chatbot replies use templates")
	}
	if c, ok := gen.(io.Closer); ok {
		defer c.Close()
	}

	company := chatbot.Company{
		Name:     cfg.Company.Name,
		Phone:    cfg.Company.Phone,
		Email:    cfg.Company.Email,
		Location: cfg.Company.Location,
	}
	composer := chatbot.NewComposer(gen, chatbot.DefaultComposerConfig(company), log)
	issuer := utils.NewTokenIssuer(cfg.Auth)

	controllers := routes.Controllers{
		Health: handlers.NewHealthController(func(ctx context.Context) error {
			return config.DB.Client().Ping(ctx, nil)
		}),
		Properties: handlers.NewPropertyController(
			properties.NewService(propertyStore, host, cache, cfg.Redis.CacheTTL, log), log),
		Enquiries: handlers.NewEnquiryController(
			enquiries.NewService(enquiryStore, propertyStore, log), log),
		Analytics: handlers.NewAnalyticsController(
			analytics.NewTracker(eventStore, propertyStore), analytics.NewAggregator(eventStore), log),
		Chatbot: handlers.NewChatbotController(
			chatbot.NewService(propertyStore, composer, log), log),
		Dashboard: handlers.NewDashboardController(
			dashboard.NewSummarizer(propertyStore, enquiryStore, cfg.DashboardLocation()), log),
		Admin: handlers.NewAdminController(adminStore, issuer, log),
	}

	e := newEcho(cfg.Server, log)
	routes.RegisterRoutes(e, controllers, issuer, routes.RateLimit{
		Counter:  counter,
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newEcho(cfg config.ServerConfig, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utils.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	return e
}

func closeRedis(client *redis.Client, log *slog.Logger) {
	if err := client.Close(); err != nil {
		log.Error("failed to close redis", "error", err)
	}
}
