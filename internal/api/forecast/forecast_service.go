package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	generativeAI "github.com/FACorreiaa/jens-bike-weather/internal/api/generative_ai"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

var (
	ErrEmptyResponse       = errors.New("forecast: model returned an empty response")
	ErrMalformedForecast   = errors.New("forecast: could not parse weather data")
	ErrForecastUnavailable = errors.New("forecast: request failed")
)

// UserMessage maps any error from FetchWeatherForecast to the single message
// shown to the user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "The model returned an empty response. The location may not be valid."
	case errors.Is(err, ErrMalformedForecast):
		return "Failed to parse weather data. The location might not be recognized."
	default:
		return "Failed to fetch weather forecast. Please check the location and try again."
	}
}

var _ Service = (*ServiceImpl)(nil)

// Service fetches biking forecasts.
type Service interface {
	FetchWeatherForecast(ctx context.Context, input types.ForecastInput) (*types.WeatherData, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	ai     generativeAI.Generator
	now    func() time.Time
}

func NewForecastService(ai generativeAI.Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		ai:     ai,
		now:    time.Now,
	}
}

// FetchWeatherForecast issues one schema-constrained request and decodes the
// reply. Nothing in the payload is range-checked; the schema is trusted.
func (s *ServiceImpl) FetchWeatherForecast(ctx context.Context, input types.ForecastInput) (*types.WeatherData, error) {
	ctx, span := otel.Tracer("ForecastService").Start(ctx, "FetchWeatherForecast")
	defer span.End()

	l := s.logger.With(slog.String("method", "FetchWeatherForecast"))
	if loc, ok := input.Location(); ok {
		span.SetAttributes(attribute.String("forecast.location", loc))
		l = l.With(slog.String("location", loc))
	} else if c, ok := input.Coordinates(); ok {
		span.SetAttributes(attribute.Float64("forecast.lat", c.Lat), attribute.Float64("forecast.lon", c.Lon))
	}

	prompt := BuildForecastPrompt(input, s.now())
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	resp, err := s.ai.GenerateContent(ctx, prompt, forecastConfig())
	if err != nil {
		l.ErrorContext(ctx, "Error fetching weather data from Gemini API", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}

	data, err := ParseWeatherData(generativeAI.ResponseText(resp))
	if err != nil {
		l.WarnContext(ctx, "Unusable forecast response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unusable response")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("forecast.city", data.Location.City),
		attribute.Int("forecast.days", len(data.DailyForecasts)),
	)
	span.SetStatus(codes.Ok, "Forecast fetched")
	l.InfoContext(ctx, "Forecast fetched", slog.String("city", data.Location.City), slog.Int("days", len(data.DailyForecasts)))
	return data, nil
}

// ParseWeatherData decodes the model's JSON text.
func ParseWeatherData(text string) (*types.WeatherData, error) {
	text = cleanJSONResponse(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	var data types.WeatherData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedForecast, err)
	}
	return &data, nil
}

// cleanJSONResponse trims whitespace and a surrounding markdown code fence.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
