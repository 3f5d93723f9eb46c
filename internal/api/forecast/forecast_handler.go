package forecast

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/jens-bike-weather/internal/api"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

type HandlerImpl struct {
	forecastService Service
	logger          *slog.Logger
}

func NewHandlerImpl(forecastService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		forecastService: forecastService,
		logger:          logger,
	}
}

// GetForecast godoc
// @Summary      Get a 5-day biking forecast
// @Description  Resolves a free-text location or a lat/lon pair into a daytime hourly forecast with a cyclist advisory per day.
// @Tags         Forecast
// @Produce      json
// @Param        location query string false "Free-text location, e.g. 'Ghent, Belgium'"
// @Param        lat      query number false "Latitude in degrees (requires lon)"
// @Param        lon      query number false "Longitude in degrees (requires lat)"
// @Success      200 {object} types.WeatherData
// @Failure      400 {object} api.Response "Missing or invalid input"
// @Failure      404 {object} api.Response "No data for this location"
// @Failure      502 {object} api.Response "Upstream model failure"
// @Router       /forecast [get]
func (h *HandlerImpl) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ForecastHandler").Start(r.Context(), "GetForecast", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/forecast"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetForecast"))

	input, err := forecastInputFromRequest(r)
	if err != nil {
		l.WarnContext(ctx, "Rejected forecast request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.forecastService.FetchWeatherForecast(ctx, input)
	if err != nil {
		span.RecordError(err)
		status := http.StatusBadGateway
		if errors.Is(err, ErrEmptyResponse) {
			status = http.StatusNotFound
		}
		api.ErrorResponse(w, r, status, UserMessage(err))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, data)
}

var errMissingInput = errors.New("location or lat and lon are required")

func forecastInputFromRequest(r *http.Request) (types.ForecastInput, error) {
	coords, err := api.ParseCoordinates(r)
	if err != nil {
		return types.ForecastInput{}, err
	}
	if coords != nil {
		return types.NewCoordinatesInput(coords.Lat, coords.Lon), nil
	}
	location := r.URL.Query().Get("location")
	if strings.TrimSpace(location) == "" {
		return types.ForecastInput{}, errMissingInput
	}
	return types.NewLocationInput(location), nil
}
