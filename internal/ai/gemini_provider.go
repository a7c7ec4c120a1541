package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"hirescope/internal/config"
	"hirescope/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

var tracer = otel.Tracer("hirescope.ai.gemini")

const modelCheckTimeout = 10 * time.Second

// GeminiProvider generates text with Gemini using one operation's settings.
type GeminiProvider struct {
	client       *genai.Client
	operation    string
	cfg          config.OperationAIConfig
	breaker      *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker *CircuitBreaker[*genai.Model]
	retry        retryPolicy
	logger       *errors.Logger
}

var _ TextProvider = (*GeminiProvider)(nil)

func newGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.CodeAIServiceFailed, "failed to create Gemini client", err)
	}
	return client, nil
}

// NewGeminiProvider binds a shared client to one operation. cfg must be the
// resolved result of config.ForOperation.
func NewGeminiProvider(client *genai.Client, operation string, cfg config.OperationAIConfig, logger *errors.Logger) *GeminiProvider {
	modelBreakerCfg := cfg.CircuitBreaker
	modelBreakerCfg.MinRequests = max(modelBreakerCfg.MinRequests, 5)
	modelBreakerCfg.FailureThreshold = max(modelBreakerCfg.FailureThreshold, 0.8)

	return &GeminiProvider{
		client:       client,
		operation:    operation,
		cfg:          cfg,
		breaker:      NewCircuitBreaker[*genai.GenerateContentResponse]("ai-"+operation, cfg.CircuitBreaker, logger),
		modelBreaker: NewCircuitBreaker[*genai.Model]("ai-model-"+operation, modelBreakerCfg, logger),
		retry:        newRetryPolicy(*cfg.MaxRetries),
		logger:       logger,
	}
}

// Generate sends req.Prompt to the model and returns its text unparsed.
func (g *GeminiProvider) Generate(ctx context.Context, req Request) (Completion, error) {
	ctx, span := tracer.Start(ctx, "gemini."+g.operation)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, *g.cfg.Timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{Temperature: g.cfg.Temperature}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = *g.cfg.MaxTokens
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = maxTokens
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = g.cfg.SystemPrompt
	}
	if *g.cfg.UseSystemPrompts && systemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.cfg.Model),
		attribute.String("ai.operation", g.operation),
		attribute.Float64("ai.temperature", float64(*g.cfg.Temperature)),
		attribute.Int("ai.max_tokens", int(maxTokens)),
		attribute.Int("input.prompt_length", len(req.Prompt)),
	)

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return withRetry(ctx, g.retry, g.logger, g.operation, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(req.Prompt), genCfg)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if stderrors.Is(err, context.DeadlineExceeded) {
			return Completion{}, errors.NewAIError(errors.CodeAITimeout, "AI request timed out for "+g.operation, err)
		}
		return Completion{}, errors.NewAIError(errors.CodeAIServiceFailed, "failed to generate content for "+g.operation, err)
	}

	completion := Completion{Text: result.Text(), Model: g.cfg.Model, Usage: extractTokenUsage(result)}
	if completion.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", completion.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", completion.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", completion.Usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("output.length", len(completion.Text)))
	return completion, nil
}

// ModelInfo checks that the configured model is reachable.
func (g *GeminiProvider) ModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.cfg.Model}

	ctx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(ctx, g.cfg.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed", "model", g.cfg.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

func (g *GeminiProvider) Stats() map[string]any {
	return map[string]any{
		"operation":       g.operation,
		"model":           g.cfg.Model,
		"generate":        g.breaker.Stats(),
		"model_check":     g.modelBreaker.Stats(),
		"overall_healthy": g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close is a no-op; the genai client holds no resources in unary mode.
func (g *GeminiProvider) Close() error {
	return nil
}

// GeminiEmbedder produces embeddings with a Gemini embedding model.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	breaker *CircuitBreaker[*genai.EmbedContentResponse]
	retry   retryPolicy
	logger  *errors.Logger
}

var _ EmbeddingProvider = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(client *genai.Client, model string, timeout time.Duration, retries int, cb config.CircuitBreakerConfig, logger *errors.Logger) *GeminiEmbedder {
	return &GeminiEmbedder{
		client:  client,
		model:   model,
		timeout: timeout,
		breaker: NewCircuitBreaker[*genai.EmbedContentResponse]("ai-embeddings", cb, logger),
		retry:   newRetryPolicy(retries),
		logger:  logger,
	}
}

// Embed returns one vector per text, in input order.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := tracer.Start(ctx, "gemini.embed")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", e.model), attribute.Int("input.count", len(texts)))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := e.breaker.Execute(func() (*genai.EmbedContentResponse, error) {
		return withRetry(ctx, e.retry, e.logger, "embed", func(ctx context.Context) (*genai.EmbedContentResponse, error) {
			return e.client.Models.EmbedContent(ctx, e.model, contents, nil)
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewAIError(errors.CodeAIServiceFailed, "failed to embed content", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.NewAIError(errors.CodeAIServiceFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings)), nil)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func (e *GeminiEmbedder) Stats() map[string]any {
	return map[string]any{"model": e.model, "breaker": e.breaker.Stats()}
}

func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

func newRetryPolicy(maxRetries int) retryPolicy {
	return retryPolicy{maxRetries: maxRetries, baseDelay: time.Second, maxDelay: 30 * time.Second}
}

// backoff returns the delay before retry number attempt (1-based): the base
// delay doubled per attempt plus up to 10% jitter, capped at maxDelay.
func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := p.baseDelay << (attempt - 1)
	if delay <= 0 || delay > p.maxDelay {
		delay = p.maxDelay
	}
	if jitterMax := int64(delay) / 10; jitterMax > 0 {
		if jitter, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			delay += time.Duration(jitter.Int64())
		}
	}
	return min(delay, p.maxDelay)
}

// withRetry runs fn until it succeeds, returns a non-retryable error, or the
// retry budget or ctx runs out.
func withRetry[T any](ctx context.Context, p retryPolicy, logger *errors.Logger, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", p.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(p.backoff(attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("AI operation succeeded after retry", "operation", operation, "attempts", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	return zero, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// isRetryableError reports whether err is a network failure or a transient
// Google API status.
func isRetryableError(err error) bool {
	if err == nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		switch genaiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable:
			return true
		}
	}
	return false
}
