package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"hirescope/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogical map[string]*api.Secret

func (f fakeLogical) Read(path string) (*api.Secret, error) {
	if path == "secret/data/broken" {
		return nil, fmt.Errorf("permission denied")
	}
	return f[path], nil
}

func kv2(data map[string]any, version any) *api.Secret {
	return &api.Secret{Data: map[string]any{
		"data":     data,
		"metadata": map[string]any{"version": version},
	}}
}

func newTestVaultClient(secrets fakeLogical) *VaultClient {
	return &VaultClient{logical: secrets, logger: errors.Discard()}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64", input: int64(42), expected: 42},
		{name: "float64", input: float64(7), expected: 7},
		{name: "string", input: "3", expected: 3},
		{name: "missing", input: nil, expected: 0},
		{name: "bad string", input: "three", expectError: true},
		{name: "bad type", input: []string{"1"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersion(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestVaultClientSecret(t *testing.T) {
	client := newTestVaultClient(fakeLogical{
		"secret/data/ok":    kv2(map[string]any{"api_key": "abc"}, "4"),
		"secret/data/kv1":   {Data: map[string]any{"api_key": "abc"}},
		"secret/data/empty": nil,
	})

	secret, err := client.Secret("secret/data/ok")
	require.NoError(t, err)
	assert.Equal(t, int64(4), secret.Version)
	assert.Equal(t, "abc", secret.Data["api_key"])

	_, err = client.Secret("secret/data/kv1")
	assert.ErrorContains(t, err, "not in KVv2 format")

	_, err = client.Secret("secret/data/empty")
	assert.ErrorContains(t, err, "secret not found")

	_, err = client.Secret("secret/data/broken")
	assert.ErrorContains(t, err, "permission denied")
}

func TestVaultClientStrings(t *testing.T) {
	client := newTestVaultClient(fakeLogical{
		"secret/data/keys": kv2(map[string]any{"keys": " a, b ,,c "}, 1),
		"secret/data/num":  kv2(map[string]any{"keys": 12}, 1),
	})

	keys, err := client.Strings("secret/data/keys", "keys")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	_, err = client.Strings("secret/data/num", "keys")
	assert.Error(t, err)
}

func TestVaultClientApply(t *testing.T) {
	ownKey := OperationAIConfig{APIKey: "tone-only"}
	cfg := &Config{
		AI: AIConfig{Operations: map[string]OperationAIConfig{
			OpQuestions: {},
			OpTone:      ownKey,
		}},
		Vault: VaultConfig{Secrets: VaultSecrets{
			APIKeys:     "secret/data/hirescope/api",
			GeminiKey:   "secret/data/hirescope/gemini",
			FeedbackDSN: "secret/data/hirescope/db",
		}},
	}
	client := newTestVaultClient(fakeLogical{
		"secret/data/hirescope/api":    kv2(map[string]any{"keys": "k1,k2"}, 2),
		"secret/data/hirescope/gemini": kv2(map[string]any{"api_key": "vault-gemini"}, 1),
		"secret/data/hirescope/db":     kv2(map[string]any{"dsn": "postgres://db/hirescope"}, 1),
	})

	require.NoError(t, client.apply(cfg))

	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
	assert.Equal(t, "vault-gemini", cfg.AI.APIKey)
	assert.Equal(t, "vault-gemini", cfg.AI.Operations[OpQuestions].APIKey)
	assert.Equal(t, "tone-only", cfg.AI.Operations[OpTone].APIKey)
	assert.Equal(t, "postgres://db/hirescope", cfg.Feedback.Postgres.DSN)
}

func TestVaultClientApplyMissingKey(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Secrets: VaultSecrets{GeminiKey: "secret/data/gemini"}}}
	client := newTestVaultClient(fakeLogical{
		"secret/data/gemini": kv2(map[string]any{"token": "x"}, 1),
	})

	err := client.apply(cfg)
	assert.ErrorContains(t, err, "failed to load Gemini API key")
}

func TestResolveVaultToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  s.file-token\n"), 0o600))

	token, err := resolveVaultToken(VaultConfig{Token: "s.direct", TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "s.direct", token)

	token, err = resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "s.file-token", token)

	_, err = resolveVaultToken(VaultConfig{TokenFile: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	_, err = resolveVaultToken(VaultConfig{})
	assert.ErrorContains(t, err, "vault token is required")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{"keep"}}}
	require.NoError(t, ApplyVaultSecrets(cfg, errors.Discard()))
	assert.Equal(t, []string{"keep"}, cfg.Server.APIKeys)
}
