package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the config reads,
// e.g. HIRESCOPE_AI_APIKEY or HIRESCOPE_SERVER_PORT.
const EnvPrefix = "HIRESCOPE"

// Config holds all application configuration.
//
// API key precedence, highest first:
//  1. Vault (when enabled)
//  2. Config file
//  3. HIRESCOPE_* environment variables
//  4. GEMINI_API_KEY
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Extraction    ExtractionConfig    `mapstructure:"extraction"`
	Matcher       MatcherConfig       `mapstructure:"matcher"`
	Feedback      FeedbackConfig      `mapstructure:"feedback"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	// ConfigFile is the file viper read, empty when running on defaults and env.
	ConfigFile string `mapstructure:"-"`
}

// AIConfig holds provider settings shared by every operation plus
// per-operation overrides keyed by operation name.
type AIConfig struct {
	Provider         string                       `mapstructure:"provider"`
	Model            string                       `mapstructure:"model"`
	EmbeddingModel   string                       `mapstructure:"embeddingModel"`
	APIKey           string                       `mapstructure:"apiKey"`
	Timeout          time.Duration                `mapstructure:"timeout"`
	MaxRetries       int                          `mapstructure:"maxRetries"`
	Temperature      float32                      `mapstructure:"temperature"`
	MaxTokens        int32                        `mapstructure:"maxTokens"`
	UseSystemPrompts bool                         `mapstructure:"useSystemPrompts"`
	SystemPrompt     string                       `mapstructure:"systemPrompt"`
	CircuitBreaker   CircuitBreakerConfig         `mapstructure:"circuitBreaker"`
	Operations       map[string]OperationAIConfig `mapstructure:"operations"`

	// Prompts overrides the built-in user prompt of an operation. PromptFiles
	// does the same from disk and wins over Prompts.
	Prompts     map[string]string `mapstructure:"prompts"`
	PromptFiles map[string]string `mapstructure:"promptFiles"`
}

// CircuitBreakerConfig configures the breaker around provider calls.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // allowed while half-open
	Interval         time.Duration `mapstructure:"interval"`         // count reset interval while closed
	Timeout          time.Duration `mapstructure:"timeout"`          // open -> half-open delay
	MinRequests      uint32        `mapstructure:"minRequests"`      // requests before the ratio applies
	FailureThreshold float64       `mapstructure:"failureThreshold"` // 0.0-1.0
}

// OperationAIConfig overrides AIConfig for one operation. Nil pointers and
// empty strings inherit the global value; ForOperation resolves them.
type OperationAIConfig struct {
	Provider         string         `mapstructure:"provider"`
	Model            string         `mapstructure:"model"`
	APIKey           string         `mapstructure:"apiKey"`
	Timeout          *time.Duration `mapstructure:"timeout"`
	MaxRetries       *int           `mapstructure:"maxRetries"`
	Temperature      *float32       `mapstructure:"temperature"`
	MaxTokens        *int32         `mapstructure:"maxTokens"`
	UseSystemPrompts *bool          `mapstructure:"useSystemPrompts"`
	SystemPrompt     string         `mapstructure:"systemPrompt"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"-"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string          `mapstructure:"host"`
	Port         string          `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	APIKeys      []string        `mapstructure:"apiKeys"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	CORS         CORSConfig      `mapstructure:"cors"`
	TLS          TLSConfig       `mapstructure:"tls"`
}

// RateLimitConfig configures the per-client token buckets.
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// CORSConfig lists origins allowed to call the API from a browser. "*" allows any.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// AppConfig holds general application configuration.
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
	MaxUploadSize    int64    `mapstructure:"maxUploadSize"`
}

// ExtractionConfig tunes how model output is turned into JSON.
type ExtractionConfig struct {
	RepairJSON      bool `mapstructure:"repairJSON"`
	QuestionExcerpt int  `mapstructure:"questionExcerpt"`
	ReportExcerpt   int  `mapstructure:"reportExcerpt"`
}

// MatcherConfig configures resume matching.
type MatcherConfig struct {
	SkillsFile     string  `mapstructure:"skillsFile"`
	WatchSkills    bool    `mapstructure:"watchSkills"`
	Concurrency    int     `mapstructure:"concurrency"`
	SkillWeight    float64 `mapstructure:"skillWeight"`
	SemanticWeight float64 `mapstructure:"semanticWeight"`
	UseEmbeddings  bool    `mapstructure:"useEmbeddings"`
	DefaultTitle   string  `mapstructure:"defaultTitle"`
	DefaultCompany string  `mapstructure:"defaultCompany"`
}

// FeedbackConfig selects where submitted interview feedback is stored.
type FeedbackConfig struct {
	Driver   string         `mapstructure:"driver"` // memory, redis, postgres
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
	EnsureSchema bool   `mapstructure:"ensureSchema"`
}

// ObservabilityConfig holds tracing and metrics configuration.
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Tracing         TracingConfig    `mapstructure:"tracing"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig reads defaults, an optional config file and the environment into
// a validated Config. v may already carry bound command-line flags; nil
// starts from a fresh instance. configFile, when set, replaces the search path.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/hirescope/")
		v.AddConfigPath("$HOME/.hirescope")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	cfg.applyFallbacks()

	if err := cfg.loadPromptFiles(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	validFormats := make(map[string]bool, len(c.App.SupportedFormats))
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.Extraction.QuestionExcerpt <= 0 || c.Extraction.ReportExcerpt <= 0 {
		return fmt.Errorf("extraction excerpt limits must be positive")
	}

	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateFeedback(); err != nil {
		return err
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMin <= 0 {
		return fmt.Errorf("server.rateLimit.requestsPerMin must be positive when rate limiting is enabled")
	}
	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}
	return nil
}

func (c *Config) validateMatcher() error {
	m := c.Matcher
	if m.Concurrency < 1 {
		return fmt.Errorf("matcher.concurrency must be at least 1")
	}
	if m.SkillWeight < 0 || m.SemanticWeight < 0 {
		return fmt.Errorf("matcher weights must not be negative")
	}
	if m.SkillWeight+m.SemanticWeight == 0 {
		return fmt.Errorf("matcher weights must not both be zero")
	}
	return nil
}

func (c *Config) validateFeedback() error {
	switch c.Feedback.Driver {
	case "memory":
	case "redis":
		if c.Feedback.Redis.Addr == "" {
			return fmt.Errorf("feedback.redis.addr is required for the redis driver")
		}
	case "postgres":
		if c.Feedback.Postgres.DSN == "" && c.Vault.Secrets.FeedbackDSN == "" {
			return fmt.Errorf("feedback.postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid feedback driver: %s (must be 'memory', 'redis', or 'postgres')", c.Feedback.Driver)
	}
	return nil
}

func (c *Config) applyFallbacks() {
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	keys := c.Server.APIKeys[:0]
	for _, key := range c.Server.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	c.Server.APIKeys = keys

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = c.Observability.ServiceName + "-" + hostname
		} else {
			c.Observability.ServiceInstance = c.Observability.ServiceName + "-1"
		}
	}
}
