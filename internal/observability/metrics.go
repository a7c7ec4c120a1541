package observability

import (
	"context"
	"fmt"
	"time"

	"hirescope/internal/ai"
	"hirescope/internal/extract"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service's own instruments.
type Metrics struct {
	AIDuration    metric.Float64Histogram
	AIRequests    metric.Int64Counter
	AIErrors      metric.Int64Counter
	AITokens      metric.Int64Histogram
	Extractions   metric.Int64Counter
	ResumesScored metric.Int64Counter
	MatchScore    metric.Float64Histogram
	RateLimitHits metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIDuration, err = meter.Float64Histogram("hirescope_ai_request_duration_seconds",
		metric.WithDescription("Time spent in AI provider requests"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI duration metric: %w", err)
	}
	if m.AIRequests, err = meter.Int64Counter("hirescope_ai_requests_total",
		metric.WithDescription("Total number of AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI request metric: %w", err)
	}
	if m.AIErrors, err = meter.Int64Counter("hirescope_ai_errors_total",
		metric.WithDescription("Total number of failed AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI error metric: %w", err)
	}
	if m.AITokens, err = meter.Int64Histogram("hirescope_ai_tokens",
		metric.WithDescription("Tokens used per AI request by token type"),
		metric.WithUnit("{token}")); err != nil {
		return nil, fmt.Errorf("failed to create AI token metric: %w", err)
	}
	if m.Extractions, err = meter.Int64Counter("hirescope_extractions_total",
		metric.WithDescription("Structured extractions by outcome and strategy")); err != nil {
		return nil, fmt.Errorf("failed to create extraction metric: %w", err)
	}
	if m.ResumesScored, err = meter.Int64Counter("hirescope_resumes_scored_total",
		metric.WithDescription("Resumes scored by status")); err != nil {
		return nil, fmt.Errorf("failed to create resume metric: %w", err)
	}
	if m.MatchScore, err = meter.Float64Histogram("hirescope_match_score",
		metric.WithDescription("Distribution of resume match scores"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 85, 90, 100)); err != nil {
		return nil, fmt.Errorf("failed to create match score metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("hirescope_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}
	return m, nil
}

// TrackAIOperation records one provider call.
func (om *Manager) TrackAIOperation(ctx context.Context, operation string, duration time.Duration, success bool, usage *ai.TokenUsage) {
	if om == nil || om.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	)
	om.metrics.AIDuration.Record(ctx, duration.Seconds(), attrs)
	om.metrics.AIRequests.Add(ctx, 1, attrs)
	if !success {
		om.metrics.AIErrors.Add(ctx, 1, attrs)
	}
	if usage == nil {
		return
	}
	for _, tokens := range []struct {
		kind  string
		value int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		om.metrics.AITokens.Record(ctx, tokens.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tokens.kind),
		))
	}
}

// RecordExtraction counts how an extraction ended.
func (om *Manager) RecordExtraction(ctx context.Context, operation string, result extract.Result) {
	if om == nil || om.metrics == nil {
		return
	}
	om.metrics.Extractions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", result.Outcome.String()),
		attribute.String("strategy", result.Strategy),
	))
}

// RecordMatch counts a scored resume and its score.
func (om *Manager) RecordMatch(ctx context.Context, status string, score float64) {
	if om == nil || om.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	om.metrics.ResumesScored.Add(ctx, 1, attrs)
	om.metrics.MatchScore.Record(ctx, score, attrs)
}

// RecordRateLimitHit counts a rejected request. by is "ip" or "api_key".
func (om *Manager) RecordRateLimitHit(ctx context.Context, by string) {
	if om == nil || om.metrics == nil {
		return
	}
	om.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("by", by)))
}
