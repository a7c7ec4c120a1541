package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Operation names key ai.operations.*, ai.prompts.* and ai.promptFiles.*.
// They are lower case because viper folds map keys.
const (
	OpQuestions      = "questions"
	OpFollowUps      = "followups"
	OpSuggestions    = "suggestions"
	OpEvaluation     = "evaluation"
	OpTone           = "tone"
	OpComparison     = "comparison"
	OpResumeFeedback = "resumefeedback"
	OpResumeFollowUp = "resumefollowup"
)

// Operations lists every operation with its own AI settings.
func Operations() []string {
	return []string{
		OpQuestions, OpFollowUps, OpSuggestions, OpEvaluation,
		OpTone, OpComparison, OpResumeFeedback, OpResumeFollowUp,
	}
}

// ForOperation returns the settings for op with every unset field filled from
// the global AI configuration.
func (c *Config) ForOperation(op string) OperationAIConfig {
	opCfg := c.AI.Operations[strings.ToLower(op)]

	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.MaxRetries == nil {
		retries := c.AI.MaxRetries
		opCfg.MaxRetries = &retries
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.MaxTokens == nil {
		maxTokens := c.AI.MaxTokens
		opCfg.MaxTokens = &maxTokens
	}
	if opCfg.UseSystemPrompts == nil {
		use := c.AI.UseSystemPrompts
		opCfg.UseSystemPrompts = &use
	}
	if opCfg.SystemPrompt == "" {
		opCfg.SystemPrompt = c.AI.SystemPrompt
	}
	opCfg.CircuitBreaker = c.AI.CircuitBreaker
	return opCfg
}

// Prompt returns the configured user prompt override for op, or "".
func (c *Config) Prompt(op string) string {
	return c.AI.Prompts[strings.ToLower(op)]
}

// loadPromptFiles reads ai.promptFiles into ai.prompts so that a file
// replaces any inline override for the same operation.
func (c *Config) loadPromptFiles() error {
	if len(c.AI.PromptFiles) == 0 {
		return nil
	}
	if c.AI.Prompts == nil {
		c.AI.Prompts = make(map[string]string, len(c.AI.PromptFiles))
	}

	for op, path := range c.AI.PromptFiles {
		if path == "" {
			continue
		}
		content, err := readPromptFile(path)
		if err != nil {
			return fmt.Errorf("prompt for %s: %w", op, err)
		}
		c.AI.Prompts[strings.ToLower(op)] = content
	}
	return nil
}

func readPromptFile(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve prompt file %q: %w", path, err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %q: %w", absPath, err)
	}
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("prompt file %q is empty", absPath)
	}
	return trimmed, nil
}
