package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadDefaults(t)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Feedback.Driver)
	assert.Equal(t, 500, cfg.Extraction.QuestionExcerpt)
	assert.Equal(t, 1000, cfg.Extraction.ReportExcerpt)
	assert.False(t, cfg.Extraction.RepairJSON)
	assert.InDelta(t, 0.4, cfg.Matcher.SkillWeight, 1e-9)
	assert.InDelta(t, 0.6, cfg.Matcher.SemanticWeight, 1e-9)
	assert.Equal(t, "Frontend Developer", cfg.Matcher.DefaultTitle)
	assert.Equal(t, "TechCorp", cfg.Matcher.DefaultCompany)
	assert.Empty(t, cfg.ConfigFile)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigOperationDefaults(t *testing.T) {
	cfg := loadDefaults(t)

	tests := []struct {
		op          string
		maxTokens   int32
		temperature float32
	}{
		{OpQuestions, 2000, 0.7},
		{OpEvaluation, 2500, 0.7},
		{OpComparison, 3000, 0.7},
		{OpResumeFeedback, 200, 0.7},
		{OpResumeFollowUp, 600, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			opCfg := cfg.ForOperation(tt.op)
			require.NotNil(t, opCfg.MaxTokens)
			require.NotNil(t, opCfg.Temperature)
			assert.Equal(t, tt.maxTokens, *opCfg.MaxTokens)
			assert.InDelta(t, tt.temperature, *opCfg.Temperature, 1e-6)
			assert.Equal(t, "gemini-2.0-flash", opCfg.Model)
		})
	}

	assert.Equal(t, "You are a helpful career advisor.", cfg.ForOperation(OpResumeFeedback).SystemPrompt)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("HIRESCOPE_SERVER_PORT", "9999")
	t.Setenv("HIRESCOPE_EXTRACTION_REPAIRJSON", "true")
	t.Setenv("HIRESCOPE_AI_OPERATIONS_TONE_MODEL", "gemini-1.5-pro")
	t.Setenv("HIRESCOPE_MATCHER_CONCURRENCY", "8")

	cfg := loadDefaults(t)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.True(t, cfg.Extraction.RepairJSON)
	assert.Equal(t, 8, cfg.Matcher.Concurrency)
	assert.Equal(t, "gemini-1.5-pro", cfg.ForOperation(OpTone).Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.ForOperation(OpQuestions).Model)
}

func TestLoadConfigGeminiKeyFallback(t *testing.T) {
	t.Setenv("HIRESCOPE_AI_APIKEY", "")
	t.Setenv("GEMINI_API_KEY", "legacy-key")

	cfg := loadDefaults(t)
	assert.Equal(t, "legacy-key", cfg.AI.APIKey)
	assert.Equal(t, "legacy-key", cfg.ForOperation(OpQuestions).APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	promptPath := writeFile(t, "tone.txt", "  Rate the tone of: %s  \n")
	configPath := writeFile(t, "config.yaml", `
ai:
  model: gemini-1.5-pro
  prompts:
    questions: "Questions for %s"
  promptFiles:
    tone: `+promptPath+`
server:
  apiKeys: [" key-one ", "", "key-two"]
feedback:
  driver: redis
  redis:
    addr: localhost:6379
`)

	cfg, err := LoadConfig(viper.New(), configPath)
	require.NoError(t, err)

	assert.Equal(t, configPath, cfg.ConfigFile)
	assert.Equal(t, "gemini-1.5-pro", cfg.ForOperation(OpEvaluation).Model)
	assert.Equal(t, "Questions for %s", cfg.Prompt(OpQuestions))
	assert.Equal(t, "Rate the tone of: %s", cfg.Prompt(OpTone))
	assert.Empty(t, cfg.Prompt(OpComparison))
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Server.APIKeys)
	assert.Equal(t, "redis", cfg.Feedback.Driver)
}

func TestLoadConfigMissingPromptFile(t *testing.T) {
	configPath := writeFile(t, "config.yaml", `
ai:
  promptFiles:
    tone: /nonexistent/prompt.txt
`)
	_, err := LoadConfig(viper.New(), configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt for tone")
}

func TestLoadConfigExplicitFileMustExist(t *testing.T) {
	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestForOperationKeepsOverrides(t *testing.T) {
	timeout := 5 * time.Second
	retries := 7
	cfg := &Config{AI: AIConfig{
		Provider:       "gemini",
		Model:          "global-model",
		APIKey:         "global-key",
		Timeout:        time.Minute,
		MaxRetries:     3,
		Temperature:    0.5,
		MaxTokens:      1000,
		CircuitBreaker: CircuitBreakerConfig{Enabled: true, FailureThreshold: 0.5},
		Operations: map[string]OperationAIConfig{
			OpTone: {Model: "tone-model", Timeout: &timeout, MaxRetries: &retries},
		},
	}}

	tone := cfg.ForOperation("Tone")
	assert.Equal(t, "tone-model", tone.Model)
	assert.Equal(t, "global-key", tone.APIKey)
	assert.Equal(t, timeout, *tone.Timeout)
	assert.Equal(t, retries, *tone.MaxRetries)
	assert.InDelta(t, 0.5, *tone.Temperature, 1e-6)
	assert.Equal(t, int32(1000), *tone.MaxTokens)
	assert.True(t, tone.CircuitBreaker.Enabled)

	other := cfg.ForOperation(OpComparison)
	assert.Equal(t, "global-model", other.Model)
	assert.Equal(t, time.Minute, *other.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"unknown format", func(c *Config) { c.App.DefaultFormat = "xml" }, "invalid default format"},
		{"zero excerpt", func(c *Config) { c.Extraction.ReportExcerpt = 0 }, "excerpt limits"},
		{"zero concurrency", func(c *Config) { c.Matcher.Concurrency = 0 }, "matcher.concurrency"},
		{"negative weight", func(c *Config) { c.Matcher.SkillWeight = -1 }, "must not be negative"},
		{"zero weights", func(c *Config) { c.Matcher.SkillWeight, c.Matcher.SemanticWeight = 0, 0 }, "both be zero"},
		{"unknown driver", func(c *Config) { c.Feedback.Driver = "mongo" }, "invalid feedback driver"},
		{"redis without addr", func(c *Config) { c.Feedback.Driver = "redis" }, "feedback.redis.addr"},
		{"postgres without dsn", func(c *Config) { c.Feedback.Driver = "postgres" }, "feedback.postgres.dsn"},
		{"postgres dsn from vault", func(c *Config) {
			c.Feedback.Driver = "postgres"
			c.Vault.Secrets.FeedbackDSN = "secret/data/hirescope/db"
		}, ""},
		{"rate limit without budget", func(c *Config) {
			c.Server.RateLimit.Enabled = true
			c.Server.RateLimit.RequestsPerMin = 0
		}, "requestsPerMin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{"disabled", TLSConfig{Mode: "disabled"}, ""},
		{"server", TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem"}, ""},
		{"server without key", TLSConfig{Mode: "server", CertFile: "cert.pem"}, "certificate and key files are required"},
		{"mutual", TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca"}, ""},
		{"mutual without CA", TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k"}, "CA certificate is required"},
		{"mutual bad policy", TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "maybe"}, "invalid clientAuthPolicy"},
		{"bad version", TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k", MinVersion: "1.1"}, "invalid TLS minVersion"},
		{"bad mode", TLSConfig{Mode: "strict"}, "invalid TLS mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
