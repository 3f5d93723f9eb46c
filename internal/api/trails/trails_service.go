package trails

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	generativeAI "github.com/FACorreiaa/jens-bike-weather/internal/api/generative_ai"
	"github.com/FACorreiaa/jens-bike-weather/internal/types"
)

var (
	ErrEmptyResponse     = errors.New("trails: model returned an empty response")
	ErrMalformedTrails   = errors.New("trails: could not parse trail data")
	ErrNoTrails          = errors.New("trails: no trails found")
	ErrTrailsUnavailable = errors.New("trails: request failed")
)

// UserMessage maps any error from FetchBikeTrails to the message shown to the
// user.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "The model returned an empty response. Could not find trails for this location."
	case errors.Is(err, ErrMalformedTrails):
		return "Failed to parse trail data from the model's response."
	case errors.Is(err, ErrNoTrails):
		return "No bike trails found for the specified location."
	default:
		return "Failed to fetch bike trails. Please check the location and try again."
	}
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	FetchBikeTrails(ctx context.Context, location string, userCoords *types.Coordinates) ([]types.BikeTrail, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	ai     generativeAI.Generator
}

func NewTrailsService(ai generativeAI.Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		ai:     ai,
	}
}

// FetchBikeTrails asks for trails near location, optionally biasing the maps
// tool to userCoords, and links each trail to a grounded map place by name.
func (s *ServiceImpl) FetchBikeTrails(ctx context.Context, location string, userCoords *types.Coordinates) ([]types.BikeTrail, error) {
	ctx, span := otel.Tracer("TrailsService").Start(ctx, "FetchBikeTrails", trace.WithAttributes(
		attribute.String("trails.location", location),
		attribute.Bool("trails.biased", userCoords != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "FetchBikeTrails"), slog.String("location", location))

	resp, err := s.ai.GenerateContent(ctx, BuildTrailsPrompt(location), trailsConfig(userCoords))
	if err != nil {
		l.ErrorContext(ctx, "Error fetching bike trails from Gemini API", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, fmt.Errorf("%w: %w", ErrTrailsUnavailable, err)
	}

	text := strings.TrimSpace(generativeAI.ResponseText(resp))
	if text == "" {
		span.SetStatus(codes.Error, "Empty response")
		return nil, ErrEmptyResponse
	}

	trails, err := ExtractTrailArray(text)
	if err != nil {
		l.WarnContext(ctx, "Could not extract trails", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unparseable response")
		return nil, err
	}
	if len(trails) == 0 {
		span.SetStatus(codes.Error, "No trails")
		return nil, ErrNoTrails
	}

	refs := MapReferences(resp)
	trails = AttachMapLinks(trails, refs)

	span.SetAttributes(attribute.Int("trails.count", len(trails)), attribute.Int("trails.map_refs", len(refs)))
	span.SetStatus(codes.Ok, "Trails fetched")
	l.InfoContext(ctx, "Trails fetched", slog.Int("count", len(trails)), slog.Int("map_refs", len(refs)))
	return trails, nil
}
