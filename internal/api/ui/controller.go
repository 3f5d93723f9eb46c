package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/jens-bike-weather/app/observability/metrics"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/forecast"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/geolocation"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/preferences"
	"github.com/FACorreiaa/jens-bike-weather/internal/api/trails"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

const (
	MsgEmptyWeatherSearch = "Please enter a location to search."
	MsgEmptyTrailSearch   = "Please enter a location."
	CurrentLocationQuery  = "your current location"
)

// Controller applies user actions to a Session. Preference reads and writes go
// through the Store of the current request.
type Controller struct {
	forecastService    forecast.Service
	trailsService      trails.Service
	preferencesService preferences.Service
	images             preferences.ImageReader
	logger             *slog.Logger
}

func NewController(
	forecastService forecast.Service,
	trailsService trails.Service,
	preferencesService preferences.Service,
	images preferences.ImageReader,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		forecastService:    forecastService,
		trailsService:      trailsService,
		preferencesService: preferencesService,
		images:             images,
		logger:             logger,
	}
}

// SearchWeather fetches the forecast for typed text and remembers it as the
// saved location on success.
func (c *Controller) SearchWeather(ctx context.Context, sess *Session, store preferences.Store, location string) {
	if strings.TrimSpace(location) == "" {
		sess.Weather.SetError(MsgEmptyWeatherSearch)
		return
	}
	c.fetchForecast(ctx, sess, store, location, types.NewLocationInput(location), location, false)
}

// LocateWeather fetches the forecast at the reported position. The saved
// location becomes the "City, Country" the model resolved.
func (c *Controller) LocateWeather(ctx context.Context, sess *Session, store preferences.Store, resolver geolocation.Resolver) {
	coords, err := resolver.CurrentPosition(ctx)
	if err != nil {
		c.logger.InfoContext(ctx, "Geolocation failed", slog.String("session", sess.ID), slog.Any("error", err))
		sess.Weather.SetError(geolocation.WeatherMessage(err))
		return
	}
	c.fetchForecast(ctx, sess, store, CurrentLocationQuery, types.NewCoordinatesInput(coords.Lat, coords.Lon), "", false)
}

// ReplayDue reports whether a saved location exists and the weather view is
// idle with nothing to show.
func (c *Controller) ReplayDue(sess *Session, store preferences.Store) bool {
	if _, ok := c.preferencesService.SavedLocation(store); !ok || sess.View() != ViewWeather {
		return false
	}
	st := sess.Weather.Snapshot()
	return !st.Loading && !st.HasResult && st.Error == ""
}

// ReplaySavedLocation loads the saved location when the weather view is idle.
// It reports whether a fetch was made.
func (c *Controller) ReplaySavedLocation(ctx context.Context, sess *Session, store preferences.Store) bool {
	if !c.ReplayDue(sess, store) {
		return false
	}
	saved, _ := c.preferencesService.SavedLocation(store)
	c.fetchForecast(ctx, sess, store, saved, types.NewLocationInput(saved), saved, true)
	return true
}

func (c *Controller) ClearSavedLocation(ctx context.Context, sess *Session, store preferences.Store) {
	c.preferencesService.ClearSavedLocation(ctx, store)
	sess.Weather.Reset()
}

func (c *Controller) fetchForecast(ctx context.Context, sess *Session, store preferences.Store, query string, input types.ForecastInput, saveAs string, replay bool) {
	ctx, span := otel.Tracer("UIController").Start(ctx, "FetchForecast", trace.WithAttributes(
		attribute.String("ui.query", query),
		attribute.Bool("ui.replay", replay),
	))
	defer span.End()

	token := sess.Weather.Begin(query)
	data, err := c.forecastService.FetchWeatherForecast(ctx, input)
	if err != nil {
		msg := forecast.UserMessage(err)
		if replay {
			msg = fmt.Sprintf("Could not find weather for your saved location \"%s\". It has been cleared.", saveAs)
		}
		if !sess.Weather.Fail(token, msg) {
			c.stale(ctx, sess, "weather")
			return
		}
		if replay {
			c.preferencesService.ClearSavedLocation(ctx, store)
		}
		return
	}

	if !sess.Weather.Complete(token, data) {
		c.stale(ctx, sess, "weather")
		return
	}
	if saveAs == "" {
		saveAs = data.DisplayName()
	}
	// The forecast is shown even when the location could not be remembered.
	_ = c.preferencesService.SaveLocation(ctx, store, saveAs)
}

// SearchTrails lists trails for location. Text mentioning "near me" or
// "current location" is biased to the reported position.
func (c *Controller) SearchTrails(ctx context.Context, sess *Session, resolver geolocation.Resolver, location string) {
	if strings.TrimSpace(location) == "" {
		sess.Trails.SetError(MsgEmptyTrailSearch)
		return
	}

	ctx, span := otel.Tracer("UIController").Start(ctx, "SearchTrails", trace.WithAttributes(
		attribute.String("ui.query", location),
	))
	defer span.End()

	sess.SetTrailInput(location)
	token := sess.Trails.Begin(location)

	var coords *types.Coordinates
	if WantsCurrentPosition(location) {
		pos, err := resolver.CurrentPosition(ctx)
		if err != nil {
			if !sess.Trails.Fail(token, geolocation.TrailsMessage(err)) {
				c.stale(ctx, sess, "trails")
			}
			return
		}
		coords = &pos
	}

	found, err := c.trailsService.FetchBikeTrails(ctx, location, coords)
	if err != nil {
		if !sess.Trails.Fail(token, trails.UserMessage(err)) {
			c.stale(ctx, sess, "trails")
		}
		return
	}
	if !sess.Trails.Complete(token, found) {
		c.stale(ctx, sess, "trails")
	}
}

func WantsCurrentPosition(location string) bool {
	l := strings.ToLower(location)
	return strings.Contains(l, "near me") || strings.Contains(l, "current location")
}

// SwitchView changes the active view. Entering trails pre-fills an empty trail
// input with the saved location; leaving trails resets the trail flow.
func (c *Controller) SwitchView(sess *Session, store preferences.Store, view View) {
	switch view {
	case ViewTrails:
		if saved, ok := c.preferencesService.SavedLocation(store); ok && sess.TrailInput() == "" {
			sess.SetTrailInput(saved)
		}
	case ViewWeather:
		sess.Trails.Reset()
		sess.SetTrailInput("")
	}
	sess.SetView(view)
}

func (c *Controller) DismissWeatherError(sess *Session) { sess.Weather.Dismiss() }

func (c *Controller) DismissTrailsError(sess *Session) { sess.Trails.Dismiss() }

// UploadBackground reads the image into a data URI for the page to apply and
// keep in the browser. Problems are reported through the weather error panel.
func (c *Controller) UploadBackground(ctx context.Context, sess *Session, file io.Reader, contentType string) (string, bool) {
	dataURI, err := c.images.ReadDataURI(file, contentType)
	if err != nil {
		c.logger.InfoContext(ctx, "Rejected background upload", slog.String("session", sess.ID), slog.Any("error", err))
		sess.Weather.SetError(preferences.ImageMessage(err))
		return "", false
	}
	return dataURI, true
}

func (c *Controller) ResetBackground(sess *Session) {
	sess.RequestBackgroundClear()
}

// BackgroundNotSaved is reported by the page when the browser refused to
// store an uploaded image.
func (c *Controller) BackgroundNotSaved(ctx context.Context, sess *Session, reason string) {
	c.logger.DebugContext(ctx, "Browser could not store background", slog.String("session", sess.ID))
	c.preferencesService.BackgroundNotSaved(ctx, reason)
}

func (c *Controller) SavedLocation(store preferences.Store) (string, bool) {
	return c.preferencesService.SavedLocation(store)
}

func (c *Controller) stale(ctx context.Context, sess *Session, flow string) {
	c.logger.DebugContext(ctx, "Discarded stale result", slog.String("session", sess.ID), slog.String("flow", flow))
	metrics.Get().StaleResultsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}
