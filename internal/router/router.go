package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/jens-bike-weather/docs"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/forecast"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/preferences"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/trails"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/ui"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ForecastHandler    *forecast.HandlerImpl
	TrailsHandler      *trails.HandlerImpl
	PreferencesHandler *preferences.HandlerImpl
	UIHandler          *ui.HandlerImpl

	SessionMiddleware   func(http.Handler) http.Handler
	RateLimitMiddleware func(http.Handler) http.Handler
	AllowedOrigins      []string
}

// SetupRouter wires the page, the JSON API and the docs. Server-wide
// middleware (request id, logging, recoverer) is applied by the caller.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()
	r.Use(cfg.SessionMiddleware)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Page
	r.Get("/", cfg.UIHandler.Index)
	r.Post("/weather/clear", cfg.UIHandler.ClearSavedLocation)
	r.Post("/weather/dismiss", cfg.UIHandler.DismissWeatherError)
	r.Post("/trails/dismiss", cfg.UIHandler.DismissTrailsError)
	r.Post("/view/{view}", cfg.UIHandler.SwitchView)
	r.Post("/background/reset", cfg.UIHandler.ResetBackground)
	r.Group(func(r chi.Router) {
		r.Use(cfg.RateLimitMiddleware)
		r.Post("/weather/search", cfg.UIHandler.SearchWeather)
		r.Post("/weather/locate", cfg.UIHandler.LocateWeather)
		r.Post("/trails/search", cfg.UIHandler.SearchTrails)
		r.Post("/background", cfg.UIHandler.UploadBackground)
		r.Post("/background/unsaved", cfg.UIHandler.BackgroundNotSaved)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Group(func(r chi.Router) {
			r.Use(cfg.RateLimitMiddleware)
			r.Get("/forecast", cfg.ForecastHandler.GetForecast)
			r.Get("/trails", cfg.TrailsHandler.GetTrails)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/location", cfg.PreferencesHandler.GetSavedLocation)
			r.Put("/location", cfg.PreferencesHandler.SaveLocation)
			r.Delete("/location", cfg.PreferencesHandler.ClearSavedLocation)
			r.With(cfg.RateLimitMiddleware).Put("/background", cfg.PreferencesHandler.UploadBackground)
		})
	})

	return r
}
