package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hirescope/internal/config"
	"hirescope/internal/errors"
)

// Service routes each operation to its own provider so that per-operation
// model, temperature and token settings apply.
type Service struct {
	providers map[string]TextProvider
	embedder  EmbeddingProvider
	recorder  UsageRecorder
	logger    *errors.Logger
}

// NewService creates a Gemini-backed provider for every configured operation
// sharing one client. recorder may be nil.
func NewService(ctx context.Context, cfg *config.Config, logger *errors.Logger, recorder UsageRecorder) (*Service, error) {
	if cfg.AI.Provider != "gemini" {
		return nil, errors.NewConfigError(errors.CodeInvalidConfig,
			fmt.Sprintf("unsupported AI provider: %s", cfg.AI.Provider), nil)
	}

	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		return nil, errors.NewConfigError(errors.CodeMissingAPIKey,
			"AI API key is required (set HIRESCOPE_AI_APIKEY or GEMINI_API_KEY)", nil)
	}

	client, err := newGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	providers := make(map[string]TextProvider, len(config.Operations()))
	for _, op := range config.Operations() {
		opCfg := cfg.ForOperation(op)
		if opCfg.Provider != "gemini" {
			return nil, errors.NewConfigError(errors.CodeInvalidConfig,
				fmt.Sprintf("unsupported AI provider %q for operation %s", opCfg.Provider, op), nil)
		}
		opClient := client
		if opCfg.APIKey != apiKey {
			if opClient, err = newGeminiClient(ctx, opCfg.APIKey); err != nil {
				return nil, err
			}
		}

		logger.Debug("Initializing AI provider",
			"operation", op,
			"model", opCfg.Model,
			"temperature", *opCfg.Temperature,
			"max_tokens", *opCfg.MaxTokens,
			"timeout", *opCfg.Timeout,
			"max_retries", *opCfg.MaxRetries)
		providers[op] = NewGeminiProvider(opClient, op, opCfg, logger)
	}

	var embedder EmbeddingProvider
	if cfg.Matcher.UseEmbeddings && cfg.AI.EmbeddingModel != "" {
		embedder = NewGeminiEmbedder(client, cfg.AI.EmbeddingModel, cfg.AI.Timeout,
			cfg.AI.MaxRetries, cfg.AI.CircuitBreaker, logger)
	}

	return NewServiceWithProviders(providers, embedder, logger, recorder), nil
}

// NewServiceWithProviders assembles a Service from ready-made providers.
func NewServiceWithProviders(providers map[string]TextProvider, embedder EmbeddingProvider, logger *errors.Logger, recorder UsageRecorder) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Service{
		providers: providers,
		embedder:  embedder,
		recorder:  recorder,
		logger:    logger,
	}
}

// Generate runs req against the provider of req.Operation.
func (s *Service) Generate(ctx context.Context, req Request) (Completion, error) {
	provider, ok := s.providers[strings.ToLower(req.Operation)]
	if !ok {
		return Completion{}, errors.NewInternalError(errors.CodeInternal, fmt.Sprintf("no AI provider for operation %q", req.Operation), nil)
	}

	start := time.Now()
	completion, err := provider.Generate(ctx, req)
	duration := time.Since(start)

	if s.recorder != nil {
		s.recorder.TrackAIOperation(ctx, req.Operation, duration, err == nil, completion.Usage)
	}
	if err != nil {
		s.logger.LogError(err, "AI generation failed", "operation", req.Operation, "duration", duration)
		return Completion{}, err
	}

	s.logger.Debug("AI generation completed",
		"operation", req.Operation,
		"duration", duration,
		"output_length", len(completion.Text))
	return completion, nil
}

// Embed uses the embedding provider, or fails when none is configured.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.embedder == nil {
		return nil, errors.NewConfigError(errors.CodeInvalidConfig, "no embedding model configured", nil)
	}
	return s.embedder.Embed(ctx, texts)
}

// HasEmbedder reports whether Embed can succeed.
func (s *Service) HasEmbedder() bool {
	return s.embedder != nil
}

// ModelInfo checks the model of one operation.
func (s *Service) ModelInfo(ctx context.Context, op string) *ModelInfo {
	provider, ok := s.providers[strings.ToLower(op)]
	if !ok {
		return &ModelInfo{Name: op, Error: "unknown operation"}
	}
	return provider.ModelInfo(ctx)
}

// Stats returns breaker statistics keyed by operation.
func (s *Service) Stats() map[string]any {
	stats := make(map[string]any, len(s.providers)+1)
	for op, provider := range s.providers {
		stats[op] = provider.Stats()
	}
	if embedder, ok := s.embedder.(interface{ Stats() map[string]any }); ok {
		stats["embeddings"] = embedder.Stats()
	}
	return stats
}

func (s *Service) Close() error {
	for op, provider := range s.providers {
		if err := provider.Close(); err != nil {
			return fmt.Errorf("failed to close provider %s: %w", op, err)
		}
	}
	return nil
}
