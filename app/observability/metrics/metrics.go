package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AIRequestsTotal         metric.Int64Counter
	AIRequestErrorsTotal    metric.Int64Counter
	AIRequestDuration       metric.Float64Histogram
	PreferenceFallbackTotal metric.Int64Counter
	StaleResultsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider, so call it
// after the provider is installed.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("JensBikeWeather")
		var err error
		m := &AppMetrics{}

		m.AIRequestsTotal, err = meter.Int64Counter(
			"ai_requests_total",
			metric.WithDescription("Total number of generative AI requests issued"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_requests_total: %v", err)
		}

		m.AIRequestErrorsTotal, err = meter.Int64Counter(
			"ai_request_errors_total",
			metric.WithDescription("Total number of generative AI requests that failed"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_request_errors_total: %v", err)
		}

		m.AIRequestDuration, err = meter.Float64Histogram(
			"ai_request_duration_seconds",
			metric.WithDescription("Duration of generative AI requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_request_duration_seconds: %v", err)
		}

		m.PreferenceFallbackTotal, err = meter.Int64Counter(
			"preference_session_fallback_total",
			metric.WithDescription("Preference writes that exceeded cookie capacity and stayed session-only"),
			metric.WithUnit("{write}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create preference_session_fallback_total: %v", err)
		}

		m.StaleResultsTotal, err = meter.Int64Counter(
			"stale_results_discarded_total",
			metric.WithDescription("Results discarded because a newer request was issued in the same flow"),
			metric.WithUnit("{result}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create stale_results_discarded_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it against the current
// MeterProvider (a no-op provider in tests) on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
