package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/jens-bike-weather/app/observability/metrics"
)

const DefaultModel = "gemini-2.5-flash"

var ErrMissingAPIKey = errors.New("generative AI API key is not set")

var _ Generator = (*AIClient)(nil)

// Generator issues a single content generation request. The forecast and
// trail services depend on this rather than on the SDK client so they can be
// tested with canned responses.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if apiKey == "" {
		span.RecordError(ErrMissingAPIKey)
		span.SetStatus(codes.Error, "API key not set")
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Model reports the model name requests are sent to.
func (ai *AIClient) Model() string {
	return ai.model
}

func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("model", ai.model))
	m.AIRequestsTotal.Add(ctx, 1, attrs)
	start := time.Now()

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	m.AIRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.AIRequestErrorsTotal.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		ai.logger.ErrorContext(ctx, "Gemini request failed", slog.String("model", ai.model), slog.Any("error", err))
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	span.SetAttributes(attribute.Int("response.length", len(ResponseText(result))))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return result, nil
}

// ResponseText returns the text of the first candidate, or "" for a nil or
// candidate-less response.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	return resp.Text()
}
