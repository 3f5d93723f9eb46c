package container

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/FACorreiaa/jens-bike-weather/app/middleware"
	"github.com/FACorreiaa/jens-bike-weather/config"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/forecast"
	generativeAI "github.com/FACorreiaa/jens-bike-weather/internal/api/generative_ai"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/preferences"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/trails"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/ui"
	"github.com/FACorreiaa/jens-bike-weather/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	Logger             *slog.Logger
	Sessions           *ui.Sessions
	SessionManager     *appMiddleware.SessionManager
	RateLimiter        *appMiddleware.RateLimiter
	ForecastHandler    *forecast.HandlerImpl
	TrailsHandler      *trails.HandlerImpl
	PreferencesHandler *preferences.HandlerImpl
	UIHandler          *ui.HandlerImpl
}

// NewContainer wires services and handlers around ai.
func NewContainer(cfg *config.Config, logger *slog.Logger, ai generativeAI.Generator) (*Container, error) {
	codec, err := preferences.NewCookieCodec(
		cfg.Preferences.CookieSecret,
		cfg.Preferences.MaxCookieBytes,
		cfg.Preferences.CookieMaxAge,
		cfg.Preferences.SecureCookies,
	)
	if err != nil {
		logger.Error("Failed to create preference cookie codec", slog.Any("error", err))
		return nil, err
	}
	sessionManager, err := appMiddleware.NewSessionManager(
		cfg.Preferences.CookieSecret,
		cfg.Preferences.CookieMaxAge,
		cfg.Preferences.SecureCookies,
	)
	if err != nil {
		logger.Error("Failed to create session manager", slog.Any("error", err))
		return nil, err
	}
	images := preferences.DataURIReader{MaxBytes: cfg.Preferences.MaxImageBytes}
	limiter := appMiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.Session.TTL, logger)

	forecastService := forecast.NewForecastService(ai, logger)
	trailsService := trails.NewTrailsService(ai, logger)
	preferencesService := preferences.NewPreferencesService(logger)

	sessions := ui.NewSessions(cfg.Session.TTL, cfg.Session.Cleanup)
	controller := ui.NewController(forecastService, trailsService, preferencesService, images, logger)

	return &Container{
		Config:             cfg,
		Logger:             logger,
		Sessions:           sessions,
		SessionManager:     sessionManager,
		RateLimiter:        limiter,
		ForecastHandler:    forecast.NewHandlerImpl(forecastService, logger),
		TrailsHandler:      trails.NewHandlerImpl(trailsService, logger),
		PreferencesHandler: preferences.NewHandlerImpl(preferencesService, codec, images, cfg.Preferences.MaxImageBytes, logger),
		UIHandler:          ui.NewHandlerImpl(controller, sessions, codec, cfg.Preferences.MaxImageBytes, limiter.Allow, logger),
	}, nil
}

// Router mounts every handler of the container.
func (c *Container) Router() chi.Router {
	return router.SetupRouter(&router.Config{
		ForecastHandler:     c.ForecastHandler,
		TrailsHandler:       c.TrailsHandler,
		PreferencesHandler:  c.PreferencesHandler,
		UIHandler:           c.UIHandler,
		SessionMiddleware:   c.SessionManager.Session,
		RateLimitMiddleware: c.RateLimiter.Limit,
		AllowedOrigins:      c.Config.Cors.AllowedOrigins,
	})
}
