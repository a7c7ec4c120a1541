package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hirescope/internal/ai"
	"hirescope/internal/config"
	"hirescope/internal/errors"
	"hirescope/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledManagerRecordsNothing(t *testing.T) {
	om, err := NewManager(context.Background(), config.ObservabilityConfig{Enabled: false}, "test", errors.Discard())
	require.NoError(t, err)

	ctx := context.Background()
	om.TrackAIOperation(ctx, "questions", time.Second, true, &ai.TokenUsage{TotalTokens: 3})
	om.RecordExtraction(ctx, "questions", extract.Result{Outcome: extract.Parsed})
	om.RecordMatch(ctx, "Matched", 72)
	om.RecordRateLimitHit(ctx, "ip")

	assert.Nil(t, om.MetricsHandler())
	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(ctx))

	h := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestNilManagerIsSafe(t *testing.T) {
	var om *Manager
	om.RecordExtraction(context.Background(), "tone", extract.Result{})
	om.RecordMatch(context.Background(), "Matched", 70)
}

func TestPrometheusExposition(t *testing.T) {
	cfg := config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "hirescope-test",
		SampleRate:  1,
		Metrics:     config.MetricsConfig{Enabled: true, CollectionInterval: time.Minute},
		Prometheus:  config.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	}
	ctx := context.Background()
	om, err := NewManager(ctx, cfg, "1.2.3", errors.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	om.RecordExtraction(ctx, "questions", extract.Result{Outcome: extract.Parsed, Strategy: extract.StrategyGreedyPattern})
	om.RecordExtraction(ctx, "tone", extract.Result{Outcome: extract.Fallback, Strategy: extract.StrategyDefault})
	om.RecordMatch(ctx, "Matched", 72.5)
	om.TrackAIOperation(ctx, "questions", 150*time.Millisecond, false, nil)

	handler := om.MetricsHandler()
	require.NotNil(t, handler)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "hirescope_extractions_total")
	assert.Contains(t, text, `outcome="parsed"`)
	assert.Contains(t, text, `strategy="default"`)
	assert.Contains(t, text, "hirescope_resumes_scored_total")
	assert.Contains(t, text, "hirescope_ai_errors_total")
	assert.Contains(t, text, "go_goroutines")
}
