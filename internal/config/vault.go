package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"hirescope/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration.
type VaultConfig struct {
	Enabled   bool         `mapstructure:"enabled"`
	Address   string       `mapstructure:"address"`
	Token     string       `mapstructure:"token"`
	TokenFile string       `mapstructure:"tokenFile"`
	Namespace string       `mapstructure:"namespace"`
	Secrets   VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets holds KVv2 paths. Each secret is read from a fixed key:
// apiKeys from "keys" (comma separated), geminiKey from "api_key" and
// feedbackDSN from "dsn".
type VaultSecrets struct {
	APIKeys     string `mapstructure:"apiKeys"`
	GeminiKey   string `mapstructure:"geminiKey"`
	FeedbackDSN string `mapstructure:"feedbackDSN"`
}

// secretReader is the part of *api.Logical the loader needs.
type secretReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultClient reads KVv2 secrets.
type VaultClient struct {
	logical secretReader
	logger  *errors.Logger
}

// VaultSecret is a KVv2 secret payload with its version.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault and checks its health.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	logger.Info("Connected to Vault",
		"address", apiCfg.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{logical: client.Logical(), logger: logger}, nil
}

func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// Secret reads a KVv2 secret at path.
func (vc *VaultClient) Secret(path string) (*VaultSecret, error) {
	secret, err := vc.logical.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	var version int64
	if metadata, ok := secret.Data["metadata"].(map[string]any); ok {
		if version, err = parseVersion(metadata["version"]); err != nil {
			return nil, fmt.Errorf("secret at %s: %w", path, err)
		}
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

func parseVersion(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse version %q: %w", v, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected version type %T", raw)
	}
}

// String reads one string value from the secret at path.
func (vc *VaultClient) String(path, key string) (string, error) {
	secret, err := vc.Secret(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key].(string)
	if !ok {
		return "", fmt.Errorf("key '%s' not found or not a string in secret %s", key, path)
	}
	vc.logger.Debug("Secret read from Vault", "path", path, "key", key, "version", secret.Version)
	return value, nil
}

// Strings reads a comma separated value and splits it.
func (vc *VaultClient) Strings(path, key string) ([]string, error) {
	value, err := vc.String(path, key)
	if err != nil {
		return nil, err
	}
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// ApplyVaultSecrets overlays secrets from Vault onto cfg. It is a no-op when
// Vault is disabled.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}
	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return errors.NewConfigError(errors.CodeInvalidConfig, "failed to initialize vault client", err)
	}
	return client.apply(cfg)
}

func (vc *VaultClient) apply(cfg *Config) error {
	secrets := cfg.Vault.Secrets

	if secrets.APIKeys != "" {
		keys, err := vc.Strings(secrets.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(keys) > 0 {
			cfg.Server.APIKeys = keys
		}
		vc.logger.Info("API keys loaded from Vault", "count", len(keys))
	}

	if secrets.GeminiKey != "" {
		key, err := vc.String(secrets.GeminiKey, "api_key")
		if err != nil {
			return fmt.Errorf("failed to load Gemini API key from vault: %w", err)
		}
		if key != "" {
			applyGeminiKey(cfg, key)
			vc.logger.Info("Gemini API key loaded from Vault")
		}
	}

	if secrets.FeedbackDSN != "" {
		dsn, err := vc.String(secrets.FeedbackDSN, "dsn")
		if err != nil {
			return fmt.Errorf("failed to load feedback DSN from vault: %w", err)
		}
		if dsn != "" {
			cfg.Feedback.Postgres.DSN = dsn
		}
	}
	return nil
}

// applyGeminiKey sets the global key and every operation override that was
// not given its own key.
func applyGeminiKey(cfg *Config, key string) {
	cfg.AI.APIKey = key
	for op, opCfg := range cfg.AI.Operations {
		if opCfg.APIKey == "" {
			opCfg.APIKey = key
			cfg.AI.Operations[op] = opCfg
		}
	}
}
