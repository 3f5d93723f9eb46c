package preferences

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/jens-bike-weather/app/observability/metrics"
)

// BackgroundNotPersistedWarning is shown when an uploaded image is applied for
// the session only.
const BackgroundNotPersistedWarning = "Your image is too large to be saved for next time, but it will be used for this session."

// maxReasonLength bounds the client-reported storage error kept in logs.
const maxReasonLength = 64

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	SavedLocation(store Store) (string, bool)
	SaveLocation(ctx context.Context, store Store, location string) error
	ClearSavedLocation(ctx context.Context, store Store)
	BackgroundNotSaved(ctx context.Context, reason string) string
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewPreferencesService(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

func (s *ServiceImpl) SavedLocation(store Store) (string, bool) {
	v, ok := store.Get(SavedLocationKey)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// SaveLocation stores the last successfully searched location.
func (s *ServiceImpl) SaveLocation(ctx context.Context, store Store, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}
	if err := store.Set(SavedLocationKey, location); err != nil {
		s.logger.WarnContext(ctx, "Could not save location", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *ServiceImpl) ClearSavedLocation(ctx context.Context, store Store) {
	store.Remove(SavedLocationKey)
	s.logger.DebugContext(ctx, "Saved location cleared")
}

// BackgroundNotSaved records that the browser could not keep an uploaded
// image and returns the warning to show. The image stays applied for the
// current session.
func (s *ServiceImpl) BackgroundNotSaved(ctx context.Context, reason string) string {
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength]
	}
	_, span := otel.Tracer("PreferencesService").Start(ctx, "BackgroundNotSaved", trace.WithAttributes(
		attribute.String("background.reason", reason),
	))
	defer span.End()

	s.logger.InfoContext(ctx, "Background image kept for session only", slog.String("reason", reason))
	metrics.Get().PreferenceFallbackTotal.Add(ctx, 1)
	return BackgroundNotPersistedWarning
}
