package ai

import (
	"context"
	"time"
)

// Request is one text generation call for a named operation.
type Request struct {
	Operation string
	Prompt    string
	// SystemPrompt replaces the operation's configured system prompt when set.
	SystemPrompt string
	// MaxTokens caps the output; zero uses the operation's configured limit.
	MaxTokens int32
}

// Completion is the raw model answer plus usage, when the provider reports it.
type Completion struct {
	Text  string
	Model string
	Usage *TokenUsage
}

// TokenUsage represents token usage information from AI responses.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo describes the availability of the configured model.
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// TextProvider generates free text for a single operation's settings.
type TextProvider interface {
	Generate(ctx context.Context, req Request) (Completion, error)
	ModelInfo(ctx context.Context) *ModelInfo
	Stats() map[string]any
	Close() error
}

// EmbeddingProvider turns texts into dense vectors, one per input.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// UsageRecorder receives one call per finished provider request.
type UsageRecorder interface {
	TrackAIOperation(ctx context.Context, operation string, duration time.Duration, success bool, usage *TokenUsage)
}
