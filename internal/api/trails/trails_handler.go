package trails

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/jens-bike-weather/internal/api"
)

type HandlerImpl struct {
	trailsService Service
	logger        *slog.Logger
}

func NewHandlerImpl(trailsService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		trailsService: trailsService,
		logger:        logger,
	}
}

// GetTrails godoc
// @Summary      Find bike trails
// @Description  Lists popular bike trails near a location. Trails whose name matches a Google Maps grounding result carry a mapsUri.
// @Tags         Trails
// @Produce      json
// @Param        location query string true  "Free-text location"
// @Param        lat      query number false "Latitude used to bias the maps search"
// @Param        lon      query number false "Longitude used to bias the maps search"
// @Success      200 {array}  types.BikeTrail
// @Failure      400 {object} api.Response "Missing or invalid input"
// @Failure      404 {object} api.Response "No trails found"
// @Failure      502 {object} api.Response "Upstream model failure"
// @Router       /trails [get]
func (h *HandlerImpl) GetTrails(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TrailsHandler").Start(r.Context(), "GetTrails", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/trails"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTrails"))

	location := r.URL.Query().Get("location")
	if strings.TrimSpace(location) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location is required")
		return
	}
	coords, err := api.ParseCoordinates(r)
	if err != nil {
		l.WarnContext(ctx, "Rejected trails request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trails, err := h.trailsService.FetchBikeTrails(ctx, location, coords)
	if err != nil {
		span.RecordError(err)
		status := http.StatusBadGateway
		if errors.Is(err, ErrNoTrails) || errors.Is(err, ErrEmptyResponse) {
			status = http.StatusNotFound
		}
		api.ErrorResponse(w, r, status, UserMessage(err))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, trails)
}
